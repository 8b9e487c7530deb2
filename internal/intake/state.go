package intake

// Kind names the wizard's phase.
type Kind string

const (
	KindStep       Kind = "step"
	KindSubmitting Kind = "submitting"
	KindSuccess    Kind = "success"
	KindFailed     Kind = "failed"
)

// Failure classifies a rejected submission.
type Failure string

const (
	FailureNone           Failure = ""
	FailureDuplicateEmail Failure = "duplicate_email"
	FailureGeneric        Failure = "generic"
)

// LastStep is the index of the final form step.
const LastStep = 2

// State is the wizard position. Step is meaningful for KindStep; a failed
// submission sits on LastStep with Failure set.
type State struct {
	Kind    Kind    `json:"status"`
	Step    int     `json:"step"`
	Failure Failure `json:"failure,omitempty"`
}

// Initial is the state of a fresh wizard.
func Initial() State {
	return State{Kind: KindStep, Step: 0}
}

// AtStep returns the plain form state for step n.
func AtStep(n int) State {
	return State{Kind: KindStep, Step: n}
}

// Submitting is the in-flight state.
func Submitting() State {
	return State{Kind: KindSubmitting, Step: LastStep}
}

// Succeeded is the terminal state.
func Succeeded() State {
	return State{Kind: KindSuccess, Step: LastStep}
}

// Failed returns control to the last step with a classified reason.
func Failed(reason Failure) State {
	return State{Kind: KindFailed, Step: LastStep, Failure: reason}
}

// onLastStep is true for states where the final form is shown.
func (s State) onLastStep() bool {
	return (s.Kind == KindStep && s.Step == LastStep) || s.Kind == KindFailed
}

// Editable reports whether draft edits are accepted.
func (s State) Editable() bool {
	return s.Kind == KindStep || s.Kind == KindFailed
}

// Event drives Transition.
type Event string

const (
	EventNext              Event = "next"
	EventBack              Event = "back"
	EventSubmit            Event = "submit"
	EventAccepted          Event = "accepted"
	EventRejectedDuplicate Event = "rejected_duplicate"
	EventRejectedGeneric   Event = "rejected_generic"
)

// StepGate reports whether the draft may advance past step. Only step 0 has
// required fields; lengths are checked as entered.
func StepGate(step int, d Draft) bool {
	if step == 0 {
		return len(d.FullName) > 0 && len(d.Email) > 0
	}
	return true
}

// CanAdvance reports whether Next would move the wizard forward.
func CanAdvance(s State, d Draft) bool {
	return s.Kind == KindStep && s.Step < LastStep && StepGate(s.Step, d)
}

// CanGoBack reports whether Back would move the wizard backward.
func CanGoBack(s State) bool {
	return (s.Kind == KindStep && s.Step > 0) || s.Kind == KindFailed
}

// CanSubmit reports whether Submit would start a submission.
func CanSubmit(s State) bool {
	return s.onLastStep()
}

// Transition is the pure state function. Pairs it does not recognise leave
// the state unchanged, which covers Back at step 0, Next on the last step,
// navigation while submitting, and anything after success.
func Transition(s State, ev Event, d Draft) State {
	switch s.Kind {
	case KindStep, KindFailed:
		switch ev {
		case EventNext:
			if CanAdvance(s, d) {
				return AtStep(s.Step + 1)
			}
		case EventBack:
			if CanGoBack(s) {
				return AtStep(s.Step - 1)
			}
		case EventSubmit:
			if CanSubmit(s) {
				return Submitting()
			}
		}
	case KindSubmitting:
		switch ev {
		case EventAccepted:
			return Succeeded()
		case EventRejectedDuplicate:
			return Failed(FailureDuplicateEmail)
		case EventRejectedGeneric:
			return Failed(FailureGeneric)
		}
	}
	return s
}

const (
	duplicateMessage = "This email is already on the waitlist. Check your inbox for an earlier confirmation email."
	genericMessage   = "Something went wrong submitting your details. Please try again."
)

// Message is the single user-visible error line for a state, empty when none.
func (s State) Message() string {
	if s.Kind != KindFailed {
		return ""
	}
	if s.Failure == FailureDuplicateEmail {
		return duplicateMessage
	}
	return genericMessage
}
