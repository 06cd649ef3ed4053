package corotask

import (
	"errors"
	"testing"
)

func TestErrorIsComparesKind(t *testing.T) {
	a := NewError(WrongState, "state a")
	b := NewError(WrongState, "state b")
	if !errors.Is(a, b) {
		t.Fatalf("two Errors with the same Kind should satisfy errors.Is")
	}
	if errors.Is(a, ErrIllegalArgument) {
		t.Fatalf("Errors with different Kinds should not satisfy errors.Is")
	}
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(BadConversion, cause, "reading field")
	if !errors.Is(wrapped, cause) {
		t.Fatalf("errors.Is should reach the wrapped cause")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Fatalf("Unwrap did not return the original cause")
	}
}

func TestKindStringCoversAllValues(t *testing.T) {
	kinds := []Kind{
		NotAnError, RunnerUnavailable, BadRunnerCast, NoTaskContext, WrongState,
		IllegalArgument, BadConversion, ResourceBusy, ConcurrencyProblem,
		EmptyObject, TypingError, CreateFailure,
	}
	for _, k := range kinds {
		if k.String() == "unknown" {
			t.Fatalf("Kind %d has no String() case", k)
		}
	}
}
