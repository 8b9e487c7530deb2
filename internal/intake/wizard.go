package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/orbit-landing/internal/analytics"
	"github.com/wolfman30/orbit-landing/internal/observability/metrics"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

var tracer = otel.Tracer("orbit.internal.intake")

// DefaultSubmitTimeout bounds a single store insert.
const DefaultSubmitTimeout = 10 * time.Second

// Store persists waitlist records. Insert must be a single atomic write and
// must report a repeated email with an error matching ErrDuplicateEmail.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
}

// Notifier is told about accepted records, e.g. to send a confirmation email.
type Notifier interface {
	WaitlistConfirmed(ctx context.Context, rec *Record) error
}

// SubmitLock guards against concurrent submissions for the same key across
// processes. release is non-nil whenever acquired is true.
type SubmitLock interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// Option configures a Wizard.
type Option func(*Wizard)

func WithSink(s analytics.Sink) Option { return func(w *Wizard) { w.sink = analytics.OrNop(s) } }

func WithMetrics(m *metrics.IntakeMetrics) Option { return func(w *Wizard) { w.metrics = m } }

func WithNotifier(n Notifier) Option { return func(w *Wizard) { w.notifier = n } }

func WithSubmitLock(l SubmitLock) Option { return func(w *Wizard) { w.lock = l } }

func WithLogger(l *logging.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTimeout sets the insert timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(w *Wizard) { w.now = now } }

// Wizard walks one respondent through the three intake steps and submits
// the result once.
type Wizard struct {
	mu     sync.Mutex
	state  State
	draft  Draft
	record *Record

	store    Store
	sink     analytics.Sink
	metrics  *metrics.IntakeMetrics
	notifier Notifier
	lock     SubmitLock
	timeout  time.Duration
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

// NewWizard returns a wizard at step 0 with an empty draft.
func NewWizard(store Store, opts ...Option) *Wizard {
	if store == nil {
		panic("intake: store required")
	}
	w := &Wizard{
		state:   Initial(),
		store:   store,
		sink:    analytics.NopSink{},
		timeout: DefaultSubmitTimeout,
		logger:  logging.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Record returns the created record after success, nil before.
func (w *Wizard) Record() *Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

func (w *Wizard) checkEditableLocked() error {
	switch w.state.Kind {
	case KindSuccess:
		return ErrWizardClosed
	case KindSubmitting:
		return ErrSubmissionInFlight
	}
	return nil
}

// Update applies field edits. Only fields shown on the current step may change.
func (w *Wizard) Update(patch FieldPatch) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return w.viewLocked(), err
	}
	step, mixed := patch.stepOwning()
	if mixed || (step >= 0 && (w.state.Kind != KindStep || step != w.state.Step)) {
		return w.viewLocked(), ErrFieldNotOnStep
	}
	if patch.CompanySize != nil && !patch.CompanySize.Valid() {
		return w.viewLocked(), ErrUnknownCompanySize
	}
	patch.apply(&w.draft)
	return w.viewLocked(), nil
}

// TogglePainPoint flips membership of p. It never changes the wizard state.
func (w *Wizard) TogglePainPoint(ctx context.Context, p PainPoint) (View, error) {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		defer w.mu.Unlock()
		return w.viewLocked(), err
	}
	if !w.state.onLastStep() {
		defer w.mu.Unlock()
		return w.viewLocked(), ErrFieldNotOnStep
	}
	if err := w.draft.PainPoints.Toggle(p); err != nil {
		defer w.mu.Unlock()
		return w.viewLocked(), err
	}
	selected := w.draft.PainPoints.Has(p)
	view := w.viewLocked()
	w.mu.Unlock()

	w.sink.Record(ctx, "waitlist_pain_point_toggled", analytics.Properties{
		"pain_point": string(p),
		"selected":   selected,
	})
	return view, nil
}

// Next advances when the current step's gate holds; otherwise the state is kept.
func (w *Wizard) Next(ctx context.Context) View {
	return w.navigate(ctx, EventNext)
}

// Back returns to the previous step. It is a no-op on step 0.
func (w *Wizard) Back(ctx context.Context) View {
	return w.navigate(ctx, EventBack)
}

func (w *Wizard) navigate(ctx context.Context, ev Event) View {
	w.mu.Lock()
	prev := w.state
	w.state = Transition(w.state, ev, w.draft)
	moved := w.state != prev
	view := w.viewLocked()
	w.mu.Unlock()

	w.metrics.ObserveTransition(string(ev), moved)
	if moved {
		name := "waitlist_step_viewed"
		if ev == EventBack {
			name = "waitlist_step_back"
		}
		w.sink.Record(ctx, name, analytics.Properties{"step": view.Step})
	}
	return view
}

// Submit makes exactly one insert attempt with the current draft. Store
// outcomes are reported through the returned view's state; the error is
// non-nil only when the command itself is refused (wrong step, a submission
// already in flight, or the wizard already closed).
func (w *Wizard) Submit(ctx context.Context) (View, error) {
	w.mu.Lock()
	switch {
	case w.state.Kind == KindSuccess:
		defer w.mu.Unlock()
		return w.viewLocked(), ErrWizardClosed
	case w.state.Kind == KindSubmitting:
		defer w.mu.Unlock()
		return w.viewLocked(), ErrSubmissionInFlight
	case !CanSubmit(w.state):
		defer w.mu.Unlock()
		return w.viewLocked(), ErrNotSubmittable
	}
	resume := w.state
	w.state = Transition(w.state, EventSubmit, w.draft)
	draft := w.draft.Clone()
	w.mu.Unlock()

	ctx, span := tracer.Start(ctx, "intake.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("intake.email_domain", logging.EmailDomain(draft.Email)),
		attribute.Int("intake.pain_points", draft.PainPoints.Len()),
	)

	if w.lock != nil {
		release, acquired, err := w.lock.Acquire(ctx, draft.Email)
		switch {
		case err != nil:
			// The store's unique constraint still protects us; carry on unlocked.
			w.logger.Warn("intake: submit lock unavailable", "error", err)
		case !acquired:
			w.mu.Lock()
			w.state = resume
			view := w.viewLocked()
			w.mu.Unlock()
			span.SetStatus(codes.Error, "submission in flight elsewhere")
			return view, ErrSubmissionInFlight
		default:
			defer release()
		}
	}

	w.sink.Record(ctx, "waitlist_submit_started", analytics.Properties{
		"company_size":     string(draft.CompanySize),
		"pain_point_count": draft.PainPoints.Len(),
	})

	rec := NewRecord(w.newID(), draft, w.now().UTC())
	start := w.now()
	insertCtx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.store.Insert(insertCtx, rec)
	cancel()
	elapsed := w.now().Sub(start).Seconds()

	ev := classify(err)

	w.mu.Lock()
	w.state = Transition(w.state, ev, draft)
	if ev == EventAccepted {
		w.record = rec
		w.draft = Draft{}
	}
	view := w.viewLocked()
	w.mu.Unlock()

	outcome := "success"
	if view.Kind == KindFailed {
		outcome = string(view.Failure)
	}
	w.metrics.ObserveSubmission(outcome, elapsed)
	span.SetAttributes(attribute.String("intake.outcome", outcome))

	logArgs := []any{"email_domain", logging.EmailDomain(draft.Email), "outcome", outcome}
	switch ev {
	case EventAccepted:
		w.logger.Info("waitlist entry created", append(logArgs, "id", rec.ID)...)
		w.sink.Record(ctx, "waitlist_submitted", analytics.Properties{
			"company_size":     string(rec.CompanySize),
			"pain_point_count": rec.PainPoints.Len(),
		})
		if w.notifier != nil {
			if nerr := w.notifier.WaitlistConfirmed(ctx, rec); nerr != nil {
				w.logger.Warn("intake: confirmation not sent", "id", rec.ID, "error", nerr)
			}
		}
	case EventRejectedDuplicate:
		w.logger.Info("waitlist duplicate rejected", logArgs...)
		w.sink.Record(ctx, "waitlist_submit_failed", analytics.Properties{"reason": outcome})
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		w.logger.Error("waitlist insert failed", append(logArgs, "error", err)...)
		w.sink.Record(ctx, "waitlist_submit_failed", analytics.Properties{"reason": outcome})
	}
	return view, nil
}

func classify(err error) Event {
	switch {
	case err == nil:
		return EventAccepted
	case errors.Is(err, ErrDuplicateEmail):
		return EventRejectedDuplicate
	default:
		return EventRejectedGeneric
	}
}

// Snapshot returns the current view.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// Options lists the selectable values shown on steps 1 and 2.
type Options struct {
	CompanySizes []CompanySize `json:"company_sizes"`
	PainPoints   []PainPoint   `json:"pain_points"`
}

// View is the render model of a wizard.
type View struct {
	SessionID string `json:"session_id,omitempty"`
	State
	Message    string  `json:"message,omitempty"`
	Draft      Draft   `json:"draft"`
	Record     *Record `json:"record,omitempty"`
	CanAdvance bool    `json:"can_advance"`
	CanGoBack  bool    `json:"can_go_back"`
	CanSubmit  bool    `json:"can_submit"`
	Options    Options `json:"options"`
}

func (w *Wizard) viewLocked() View {
	return View{
		State:      w.state,
		Message:    w.state.Message(),
		Draft:      w.draft.Clone(),
		Record:     w.record,
		CanAdvance: CanAdvance(w.state, w.draft),
		CanGoBack:  CanGoBack(w.state),
		CanSubmit:  CanSubmit(w.state),
		Options: Options{
			CompanySizes: CompanySizes(),
			PainPoints:   PainPoints(),
		},
	}
}
