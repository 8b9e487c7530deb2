package intake

import "errors"

var (
	// ErrDuplicateEmail is returned by stores when the email is already registered.
	ErrDuplicateEmail = errors.New("intake: email already registered")

	// ErrSubmissionInFlight is returned when a submit is attempted while another is pending.
	ErrSubmissionInFlight = errors.New("intake: submission already in flight")

	// ErrNotSubmittable is returned when submit is attempted before the last step.
	ErrNotSubmittable = errors.New("intake: wizard is not on the final step")

	// ErrWizardClosed is returned for any mutation after a successful submission.
	ErrWizardClosed = errors.New("intake: wizard already submitted")

	// ErrFieldNotOnStep is returned when a patch touches a field owned by another step.
	ErrFieldNotOnStep = errors.New("intake: field is not editable on the current step")

	// ErrUnknownCompanySize is returned for company sizes outside the bucket list.
	ErrUnknownCompanySize = errors.New("intake: unknown company size")

	// ErrUnknownPainPoint is returned for labels outside the pain point catalog.
	ErrUnknownPainPoint = errors.New("intake: unknown pain point")

	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("intake: session not found")
)
