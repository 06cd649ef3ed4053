package task

import (
	"testing"

	"corotask/runner"
)

func TestRepeatOfRejectsNonIntInput(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	sub, _ := Simple(r, func(_ *runner.Runner, s string) (string, error) { return s, nil })
	if _, err := RepeatOf(sub.Descriptor()); err == nil {
		t.Fatalf("expected an error: repeat's subtask must take an int iteration index")
	}
}

func TestRepeatFeedsIterationIndex(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	var seen []int
	sub, _ := Simple(r, func(_ *runner.Runner, i int) (int, error) {
		seen = append(seen, i)
		return i, nil
	})
	rep := Repeat(sub)

	v, err := wait(t, rep.Run(4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != 3 {
		t.Fatalf("last result=%d, want 3 (the final iteration's index)", v)
	}
	want := []int{0, 1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("seen=%v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen=%v, want %v", seen, want)
		}
	}
}
