package serial

// OpenErrorReason classifies why opening a transport context failed.
type OpenErrorReason int

const (
	// BadSettings means the requested parameters fall outside the closed
	// enumerations.
	BadSettings OpenErrorReason = iota
	// FailedToOpen means the platform refused to open or configure the
	// device.
	FailedToOpen
	// FailedToFlush means the port opened but its buffers could not be
	// drained and discarded.
	FailedToFlush
)

// OpenError is the typed failure returned by OpenContext.
type OpenError struct {
	Reason   OpenErrorReason
	causedBy error
}

func (e *OpenError) Error() string {
	var message string
	switch e.Reason {
	case BadSettings:
		message = "settings not supported"
	case FailedToOpen:
		message = "failed to open port"
	case FailedToFlush:
		message = "failed to flush port"
	default:
		message = "unknown error"
	}
	if e.causedBy != nil {
		message += ": " + e.causedBy.Error()
	}
	return message
}

// Unwrap returns the underlying cause, if any.
func (e *OpenError) Unwrap() error {
	return e.causedBy
}

func newOpenError(reason OpenErrorReason, cause error) *OpenError {
	return &OpenError{Reason: reason, causedBy: cause}
}
