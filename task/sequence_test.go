package task

import (
	"testing"

	"corotask/runner"
)

func TestSequenceOfRejectsTypeMismatch(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	toInt, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x, nil })
	toString, _ := Simple(r, func(_ *runner.Runner, s string) (string, error) { return s, nil })

	if _, err := SequenceOf(toInt.Descriptor(), toString.Descriptor()); err == nil {
		t.Fatalf("expected a type mismatch between an int result and a string input")
	}
}

func TestSequenceOfRejectsSingleChild(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	solo, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x, nil })
	if _, err := SequenceOf(solo.Descriptor()); err == nil {
		t.Fatalf("expected an error building a sequence of fewer than 2 children")
	}
}

func TestSequenceOfRunsThroughRunAny(t *testing.T) {
	r := newTestRunner(t, runner.Sequential)
	add1, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 1, nil })
	add2, _ := Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 2, nil })

	d, err := SequenceOf(add1.Descriptor(), add2.Descriptor())
	if err != nil {
		t.Fatalf("SequenceOf: %v", err)
	}
	fut, err := RunAny(d, 10)
	if err != nil {
		t.Fatalf("RunAny: %v", err)
	}
	v, err := waitAny(t, fut)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v.(int) != 13 {
		t.Fatalf("got %v, want 13", v)
	}
}
