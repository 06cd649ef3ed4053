package corotask

import "fmt"

// Kind enumerates the error taxonomy the core can report. Kind values
// describe what went wrong structurally, not which user type triggered it.
type Kind int

const (
	// NotAnError is the zero value and means "no error occurred". A
	// zero-value Error therefore carries Kind NotAnError.
	NotAnError Kind = iota
	// RunnerUnavailable means a simple task could not acquire a strong
	// reference to its runner because the runner has already been dropped.
	RunnerUnavailable
	// BadRunnerCast means an internal downcast from the abstract runner
	// handle to a user runner subtype failed.
	BadRunnerCast
	// NoTaskContext means the scheduler found an empty or detached stack.
	NoTaskContext
	// WrongState means an operation was attempted on an object not in a
	// valid state for it (e.g. running an empty task handle).
	WrongState
	// IllegalArgument means a value was outside its accepted range or
	// mis-shaped.
	IllegalArgument
	// BadConversion means a typed Cell read found a type mismatch.
	BadConversion
	// ResourceBusy means a backing resource could not be acquired.
	ResourceBusy
	// ConcurrencyProblem means an unexpected atomic state was observed.
	ConcurrencyProblem
	// EmptyObject means an operation was attempted on a default-constructed
	// or already-consumed handle.
	EmptyObject
	// TypingError means construction-time factory validation failed.
	TypingError
	// CreateFailure means the underlying pool or queue could not be created.
	CreateFailure
)

func (k Kind) String() string {
	switch k {
	case NotAnError:
		return "not_an_error"
	case RunnerUnavailable:
		return "runner_unavailable"
	case BadRunnerCast:
		return "bad_runner_cast"
	case NoTaskContext:
		return "no_task_context"
	case WrongState:
		return "wrong_state"
	case IllegalArgument:
		return "illegal_argument"
	case BadConversion:
		return "bad_conversion"
	case ResourceBusy:
		return "resource_busy"
	case ConcurrencyProblem:
		return "concurrency_problem"
	case EmptyObject:
		return "empty_object"
	case TypingError:
		return "typing_error"
	case CreateFailure:
		return "create_failure"
	default:
		return "unknown"
	}
}

// Error is the error type the core returns. It carries a structural Kind
// plus an optional wrapped cause, so callers can use errors.Is/errors.As
// against either the Kind's sentinel or the original cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corotask: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("corotask: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, corotask.ErrRunnerUnavailable) style checks by
// comparing Kind rather than identity, since call sites construct distinct
// *Error values with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given Kind wrapping cause, preserving cause
// for errors.Is/errors.As/errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewError constructs an *Error of the given Kind with no wrapped cause.
func NewError(kind Kind, format string, args ...any) *Error {
	return newError(kind, format, args...)
}

// Sentinel errors for the common Kind values, for errors.Is comparisons.
var (
	ErrRunnerUnavailable  = &Error{Kind: RunnerUnavailable, Message: "runner unavailable"}
	ErrBadRunnerCast      = &Error{Kind: BadRunnerCast, Message: "bad runner cast"}
	ErrNoTaskContext      = &Error{Kind: NoTaskContext, Message: "no task context"}
	ErrWrongState         = &Error{Kind: WrongState, Message: "wrong state"}
	ErrIllegalArgument    = &Error{Kind: IllegalArgument, Message: "illegal argument"}
	ErrBadConversion      = &Error{Kind: BadConversion, Message: "bad conversion"}
	ErrResourceBusy       = &Error{Kind: ResourceBusy, Message: "resource busy"}
	ErrConcurrencyProblem = &Error{Kind: ConcurrencyProblem, Message: "concurrency problem"}
	ErrEmptyObject        = &Error{Kind: EmptyObject, Message: "empty object"}
	ErrTypingError        = &Error{Kind: TypingError, Message: "typing error"}
	ErrCreateFailure      = &Error{Kind: CreateFailure, Message: "create failure"}
)
