// Package bterr defines the error kinds the engine can raise and how each
// propagates: synchronously to the caller or captured and rebroadcast on
// the event bus as an ("error", ...) message.
package bterr

import "fmt"

// Kind identifies one of the engine's fixed error categories.
type Kind int

const (
	// MalformedProgram means the program XML itself could not be parsed
	// or is missing a structurally required element.
	MalformedProgram Kind = iota
	// UnknownBlock means a block node referenced a type not present in
	// the registry.
	UnknownBlock
	// MalformedDefinition means a block's visual definition cannot be
	// exported: its title template has more placeholders than the block
	// declares arguments.
	MalformedDefinition
	// ExecutionError wraps a failure raised by a block executor function
	// during a call.
	ExecutionError
	// IterationLimitExceeded means the scheduler's safety bound on total
	// steps was reached without the program reaching an idle state.
	IterationLimitExceeded
	// InvalidYield means a block executor returned a value the call site
	// did not expect (e.g. a non-eager call that produced a value instead
	// of enqueuing a continuation).
	InvalidYield
)

func (k Kind) String() string {
	switch k {
	case MalformedProgram:
		return "malformed_program"
	case UnknownBlock:
		return "unknown_block"
	case MalformedDefinition:
		return "malformed_definition"
	case ExecutionError:
		return "execution_error"
	case IterationLimitExceeded:
		return "iteration_limit_exceeded"
	case InvalidYield:
		return "invalid_yield"
	default:
		return "unknown"
	}
}

// Error is the engine's single error type. BlockID, when non-empty,
// identifies the block node the error occurred at.
type Error struct {
	Kind    Kind
	BlockID string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.BlockID != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s [%s]: %s: %v", e.Kind, e.BlockID, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.BlockID, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// At attaches a block id to an Error, returning a new value.
func (e *Error) At(blockID string) *Error {
	cp := *e
	cp.BlockID = blockID
	return &cp
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	be, ok := err.(*Error)
	return ok && be.Kind == kind
}
