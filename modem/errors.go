package modem

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrInvalidConfig is returned by ConfigBuilder.Build for out of range
	// settings.
	ErrInvalidConfig = errors.New("invalid modem config")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// without a transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Modem
	// was not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when an operation is attempted on a Modem
	// that has been closed, including a second call to Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrListenerRunning is returned when Listen is called while another
	// Listen is active.
	ErrListenerRunning = errors.New("listener already running")

	// ErrInvalidEndpoint is returned by OpenTransport for an unknown protocol
	// or a port outside 1-65535.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrPayloadSize is returned by SendRaw for an empty payload or one larger
	// than the module accepts in a single send.
	ErrPayloadSize = errors.New("invalid payload size")

	// ErrTimeout matches a StepError of kind Timeout.
	ErrTimeout = errors.New("timeout")

	// ErrRejected matches a StepError of kind Rejected.
	ErrRejected = errors.New("rejected")

	// ErrPreconditionNotMet matches a StepError of kind PreconditionNotMet.
	ErrPreconditionNotMet = errors.New("precondition not met")
)

// StepErrorKind classifies the failure of an operation.
type StepErrorKind int

const (
	// Timeout means no terminal token was observed within the budget.
	Timeout StepErrorKind = iota + 1
	// Rejected means the module answered with a failure token.
	Rejected
	// PreconditionNotMet means the operation requires a milestone the
	// module has not reached.
	PreconditionNotMet
)

func (k StepErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Rejected:
		return "rejected"
	case PreconditionNotMet:
		return "precondition not met"
	default:
		return "unknown"
	}
}

// StepError describes why an operation failed. Callers are expected to
// inspect it with errors.Is against ErrTimeout, ErrRejected or
// ErrPreconditionNotMet and decide whether to start over from Initialize.
type StepError struct {
	Kind StepErrorKind
	// Op is the operation that failed, e.g. "join network".
	Op string
	// Command is the AT command being executed, with secrets redacted.
	Command string
	// Token is the failure token seen (Rejected) or the token that was
	// being awaited (Timeout).
	Token string
	// Response is the module output observed for the command.
	Response string
	// Required and Actual are set for PreconditionNotMet.
	Required State
	Actual   State
}

func (e *StepError) Error() string {
	switch e.Kind {
	case PreconditionNotMet:
		return fmt.Sprintf("%s: %s: requires %s, module is %s", e.Op, e.Kind, e.Required, e.Actual)
	case Rejected:
		return fmt.Sprintf("%s: %s: %s answered %q", e.Op, e.Kind, e.Command, e.Token)
	default:
		return fmt.Sprintf("%s: %s: %s waiting for %q", e.Op, e.Kind, e.Command, e.Token)
	}
}

// Is reports whether target is the sentinel matching the error kind.
func (e *StepError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == Timeout
	case ErrRejected:
		return e.Kind == Rejected
	case ErrPreconditionNotMet:
		return e.Kind == PreconditionNotMet
	}
	return false
}
