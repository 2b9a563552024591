package models

// StatusKind enumerates the status indicator variants.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// DefaultStatusMessage is shown whenever the form is idle.
const DefaultStatusMessage = "Select Store and Employee, then enter quantity (0-20)."

// Status is the transient message shown above the form.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// DefaultStatus returns the idle informational status.
func DefaultStatus() Status {
	return Status{Kind: StatusInfo, Message: DefaultStatusMessage}
}

// InfoStatus builds an informational status.
func InfoStatus(message string) Status {
	return Status{Kind: StatusInfo, Message: message}
}

// ErrorStatus builds an error status.
func ErrorStatus(message string) Status {
	return Status{Kind: StatusError, Message: message}
}
