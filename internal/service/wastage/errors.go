package wastage

import "errors"

var (
	// ErrInputsLocked is returned when an event arrives while the form inputs
	// are disabled (submitting, editing a custom item, or confirming a reset).
	ErrInputsLocked = errors.New("form inputs are locked")

	// ErrSubmissionInFlight is returned by Submit while a request is outstanding.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrUnknownItem indicates the referenced item is neither standard nor custom.
	ErrUnknownItem = errors.New("unknown item")

	// ErrNotEditing is returned when saving or cancelling without an active edit.
	ErrNotEditing = errors.New("no custom item is being edited")

	// ErrNoResetPending is returned when confirming or cancelling a reset that was never started.
	ErrNoResetPending = errors.New("no reset is awaiting confirmation")
)

// ValidationError carries the user-facing message of a rejected form event.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation helps callers distinguish rejected input from infrastructure failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
