package task

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"corotask"
	"corotask/runner"
)

func newTestRunner(t *testing.T, policy runner.RunPolicy) *runner.Runner {
	t.Helper()
	r, err := runner.New(policy)
	if err != nil {
		t.Fatalf("runner.New: %v", err)
	}
	r.Start()
	t.Cleanup(func() {
		r.Release()
		r.Close()
	})
	return r
}

func wait[O any](t *testing.T, fut *Future[O]) (O, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return fut.Wait(ctx)
}

func waitAny(t *testing.T, fut *AnyFuture) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return fut.Wait(ctx)
}

func TestSimpleRunsOnBoundRunner(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	double, err := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x * 2, nil })
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}

	v, err := wait(t, double.Run(21))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestSimpleRejectsNilRunner(t *testing.T) {
	var r *runner.Runner
	_, err := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x, nil })
	if err == nil {
		t.Fatalf("expected error constructing a Simple task with a nil runner")
	}
}

func TestSimplePropagatesCallableError(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	boom := errors.New("boom")
	fails, err := Simple(r, func(_ *runner.Runner, _ int) (int, error) { return 0, boom })
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}

	_, err = wait(t, fails.Run(1))
	if err == nil {
		t.Fatalf("expected the callable's error to surface")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want it to wrap %v", err, boom)
	}
}

func TestSimpleRecoversPanic(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	panics, err := Simple(r, func(_ *runner.Runner, _ int) (int, error) { panic("nope") })
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}

	_, err = wait(t, panics.Run(1))
	if err == nil {
		t.Fatalf("expected a captured error from the panicking callable")
	}
}

func TestRunnerUnavailableAfterGC(t *testing.T) {
	r, err := runner.New(runner.Sequential)
	if err != nil {
		t.Fatalf("runner.New: %v", err)
	}
	r.Start()

	leaf, err := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x, nil })
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}

	r.Release()
	r.Close()
	r = nil // drop the only strong reference; GC may now collect it

	// A full collection clears the task's weak reference to the runner, so
	// the run must report RunnerUnavailable instead of invoking the callable.
	runtime.GC()
	_, err = wait(t, leaf.Run(1))
	if !errors.Is(err, corotask.ErrRunnerUnavailable) {
		t.Fatalf("got %v, want RunnerUnavailable", err)
	}
}
