//go:build corotask_debug

package task

import (
	"testing"

	"corotask"
	"corotask/runner"
)

// TestResourceSafetyAcrossCompositions is spec property 8: for every task
// run to completion, the number of value-cell constructions equals
// destructions, and context allocations equal deallocations. Run with
// -tags corotask_debug, which compiles in the atomic counters this test
// reads; without the tag they are stubbed out at 0 and this file is not
// part of the build at all.
func TestResourceSafetyAcrossCompositions(t *testing.T) {
	checkBalanced := func(t *testing.T, label string) {
		t.Helper()
		if got, want := corotask.CellAllocCount(), corotask.CellFreeCount(); got != want {
			t.Fatalf("%s: cell allocs=%d frees=%d, want equal", label, got, want)
		}
		if got, want := ContextAllocCount(), ContextFreeCount(); got != want {
			t.Fatalf("%s: context allocs=%d frees=%d, want equal", label, got, want)
		}
	}

	t.Run("sequence", func(t *testing.T) {
		corotask.ResetCellCounters()
		ResetContextCounters()
		r := newTestRunner(t, runner.Sequential)
		add1, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 1, nil })
		add2, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 2, nil })
		store, _ := Mutator(r, func(_ *runner.Runner, _ int) error { return nil })
		seq := Sequence3(add1, add2, store)
		if _, err := wait(t, seq.Run(5)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		checkBalanced(t, "sequence")
	})

	t.Run("repeat", func(t *testing.T) {
		corotask.ResetCellCounters()
		ResetContextCounters()
		r := newTestRunner(t, runner.Sequential)
		sub, _ := Mutator(r, func(_ *runner.Runner, _ int) error { return nil })
		rep := Repeat(sub)
		if _, err := wait(t, rep.Run(10)); err != nil {
			t.Fatalf("Run(10): %v", err)
		}
		checkBalanced(t, "repeat n=10")

		corotask.ResetCellCounters()
		ResetContextCounters()
		if _, err := wait(t, rep.Run(0)); err != nil {
			t.Fatalf("Run(0): %v", err)
		}
		checkBalanced(t, "repeat n=0")
	})

	t.Run("loop", func(t *testing.T) {
		corotask.ResetCellCounters()
		ResetContextCounters()
		r := newTestRunner(t, runner.Sequential)
		pred, _ := Simple(r, func(_ *runner.Runner, x int) (bool, error) { return x < 20, nil })
		body, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 1, nil })
		loop := Loop(pred, body)
		if _, err := wait(t, loop.Run(0)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		checkBalanced(t, "loop")
	})

	t.Run("intercept with matched exception", func(t *testing.T) {
		corotask.ResetCellCounters()
		ResetContextCounters()
		r := newTestRunner(t, runner.Sequential)
		try, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) {
			return 0, &testRuntimeError{msg: "boom"}
		})
		handler, _ := Simple(r, func(_ *runner.Runner, err *testRuntimeError) (int, error) { return -1, nil })
		guarded := Intercept(try, handler)
		if _, err := wait(t, guarded.Run(1)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		checkBalanced(t, "intercept matched")
	})

	t.Run("conditional then-only, predicate false", func(t *testing.T) {
		corotask.ResetCellCounters()
		ResetContextCounters()
		r := newTestRunner(t, runner.Sequential)
		pred, _ := Simple(r, func(_ *runner.Runner, x int) (bool, error) { return x > 0, nil })
		then, _ := Mutator(r, func(_ *runner.Runner, _ int) error { return nil })
		cond := Conditional1(pred, then)
		if _, err := wait(t, cond.Run(-1)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		checkBalanced(t, "conditional1 false")
	})
}
