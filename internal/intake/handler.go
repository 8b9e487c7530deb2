package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler serves the wizard over HTTP.
type Handler struct {
	sessions  *SessionManager
	newWizard WizardFactory
	logger    *logging.Logger
}

// NewHandler creates a new intake handler
func NewHandler(sessions *SessionManager, factory WizardFactory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{sessions: sessions, newWizard: factory, logger: logger}
}

// Routes mounts the session endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method "+r.Method+" is not allowed here.")
	})
	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Patch("/draft", h.UpdateDraft)
		r.Post("/next", h.Next)
		r.Post("/back", h.Back)
		r.Post("/pain-points", h.TogglePainPoint)
		r.Post("/submit", h.Submit)
	})
	return r
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeCommandError maps wizard command errors to HTTP responses.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "This signup session has expired. Please start again.")
	case errors.Is(err, ErrUnknownCompanySize), errors.Is(err, ErrUnknownPainPoint):
		writeError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error())
	case errors.Is(err, ErrFieldNotOnStep):
		writeError(w, http.StatusConflict, "field_not_on_step", err.Error())
	case errors.Is(err, ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission_in_flight", "Your details are already being submitted.")
	case errors.Is(err, ErrNotSubmittable):
		writeError(w, http.StatusConflict, "not_submittable", err.Error())
	case errors.Is(err, ErrWizardClosed):
		writeError(w, http.StatusConflict, "already_submitted", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}

// submitStatus picks the response code for a finished submission.
func submitStatus(v View) int {
	switch {
	case v.Kind == KindSuccess:
		return http.StatusCreated
	case v.Failure == FailureDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) wizard(w http.ResponseWriter, r *http.Request) (string, *Wizard, bool) {
	id := chi.URLParam(r, "sessionID")
	wiz, err := h.sessions.Get(id)
	if err != nil {
		writeCommandError(w, err)
		return "", nil, false
	}
	return id, wiz, true
}

func withSession(id string, v View) View {
	v.SessionID = id
	return v
}

// CreateSession handles POST /api/intake/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, wiz := h.sessions.Create()
	h.logger.Debug("intake session created", "session_id", id)
	writeJSON(w, http.StatusCreated, withSession(id, wiz.Snapshot()))
}

// GetSession handles GET /api/intake/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, withSession(id, wiz.Snapshot()))
}

// UpdateDraft handles PATCH /api/intake/sessions/{sessionID}/draft
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var patch FieldPatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	view, err := wiz.Update(patch)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withSession(id, view))
}

// Next handles POST /api/intake/sessions/{sessionID}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, withSession(id, wiz.Next(r.Context())))
}

// Back handles POST /api/intake/sessions/{sessionID}/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, withSession(id, wiz.Back(r.Context())))
}

type toggleRequest struct {
	Label PainPoint `json:"label"`
}

// TogglePainPoint handles POST /api/intake/sessions/{sessionID}/pain-points
func (h *Handler) TogglePainPoint(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	view, err := wiz.TogglePainPoint(r.Context(), req.Label)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withSession(id, view))
}

// Submit handles POST /api/intake/sessions/{sessionID}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	view, err := wiz.Submit(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, submitStatus(view), withSession(id, view))
}

// SubmitWaitlist handles POST /api/waitlist: the whole draft in one request,
// walked through the same steps and gates as the session flow.
func (h *Handler) SubmitWaitlist(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&draft); err != nil {
		if errors.Is(err, ErrUnknownPainPoint) {
			writeCommandError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	ctx := r.Context()
	wiz := h.newWizard()

	if _, err := wiz.Update(FieldPatch{FullName: &draft.FullName, Email: &draft.Email}); err != nil {
		writeCommandError(w, err)
		return
	}
	if view := wiz.Next(ctx); view.Step != 1 {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "full_name and email are required")
		return
	}
	if _, err := wiz.Update(FieldPatch{
		CompanyName: &draft.CompanyName,
		Website:     &draft.Website,
		CompanySize: &draft.CompanySize,
		Role:        &draft.Role,
	}); err != nil {
		writeCommandError(w, err)
		return
	}
	wiz.Next(ctx)
	for _, p := range draft.PainPoints.Slice() {
		if _, err := wiz.TogglePainPoint(ctx, p); err != nil {
			writeCommandError(w, err)
			return
		}
	}

	view, err := wiz.Submit(ctx)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, submitStatus(view), view)
}
