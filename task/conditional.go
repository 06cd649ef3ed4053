package task

import (
	"reflect"

	"corotask"
)

var boolType = reflect.TypeOf(false)

// conditionalDescriptor evaluates predicate against the shared input, then
// runs thenBranch with that same input if it returns true. elseBranch is
// optional (the then-only form, cool.ng's conditional(PredicateT, IfT)): if
// nil, a false predicate runs no branch at all and the conditional reports
// a void result directly.
type conditionalDescriptor struct {
	base
	predicate          Descriptor
	thenBranch, elseBranch Descriptor
}

// ConditionalOf builds a conditional from type-erased children, checked at
// construction: predicate must return bool, and its input type plus both
// branches' input and result types must all agree.
func ConditionalOf(predicate, thenBranch, elseBranch Descriptor) (Descriptor, error) {
	if !sameType(predicate.ResultType(), boolType) {
		return nil, typeMismatch("conditional: predicate result", boolType, predicate.ResultType())
	}
	if !sameType(predicate.InputType(), thenBranch.InputType()) {
		return nil, typeMismatch("conditional: then-branch input", predicate.InputType(), thenBranch.InputType())
	}
	if !sameType(predicate.InputType(), elseBranch.InputType()) {
		return nil, typeMismatch("conditional: else-branch input", predicate.InputType(), elseBranch.InputType())
	}
	if !sameType(thenBranch.ResultType(), elseBranch.ResultType()) {
		return nil, typeMismatch("conditional: else-branch result", thenBranch.ResultType(), elseBranch.ResultType())
	}
	return &conditionalDescriptor{
		base:       newBase(TagConditional, predicate.InputType(), thenBranch.ResultType()),
		predicate:  predicate,
		thenBranch: thenBranch,
		elseBranch: elseBranch,
	}, nil
}

// ConditionalThenOf builds the then-only form: thenBranch runs when
// predicate is true; when it is false, nothing runs and the conditional
// reports a void result. thenBranch must itself be void-typed, mirroring
// the original's static_assert that IfT "must not return a value" in this
// overload (async/task.h's conditional(PredicateT, IfT)).
func ConditionalThenOf(predicate, thenBranch Descriptor) (Descriptor, error) {
	if !sameType(predicate.ResultType(), boolType) {
		return nil, typeMismatch("conditional: predicate result", boolType, predicate.ResultType())
	}
	if !sameType(predicate.InputType(), thenBranch.InputType()) {
		return nil, typeMismatch("conditional: then-branch input", predicate.InputType(), thenBranch.InputType())
	}
	if thenBranch.ResultType() != nil {
		return nil, typeMismatch("conditional: then-only branch result", nil, thenBranch.ResultType())
	}
	return &conditionalDescriptor{
		base:       newBase(TagConditional, predicate.InputType(), nil),
		predicate:  predicate,
		thenBranch: thenBranch,
		elseBranch: nil,
	}, nil
}

// Conditional builds a conditional from statically typed children: the Go
// type system already guarantees the chain validates, so this cannot fail.
func Conditional[I, O any](predicate Task[I, bool], thenBranch, elseBranch Task[I, O]) Task[I, O] {
	d, err := ConditionalOf(predicate.d, thenBranch.d, elseBranch.d)
	if err != nil {
		panic(err)
	}
	return Task[I, O]{d: d}
}

// Conditional1 builds the then-only form from statically typed children:
// predicate.InputType() is shared with thenBranch, and thenBranch must be
// void-result (Task[I, Void]); the Go type system already guarantees this
// validates.
func Conditional1[I any](predicate Task[I, bool], thenBranch Task[I, Void]) Task[I, Void] {
	d, err := ConditionalThenOf(predicate.d, thenBranch.d)
	if err != nil {
		panic(err)
	}
	return Task[I, Void]{d: d}
}

func (d *conditionalDescriptor) probeScheduler() (Scheduler, bool) {
	return d.predicate.probeScheduler()
}

func (d *conditionalDescriptor) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	var raw any
	if input != nil {
		raw, _ = corotask.Take[any](input)
	}
	return &conditionalContext{d: d, stack: stack, input: raw, onResult: onResult, onException: onException}
}

type conditionalContext struct {
	d           *conditionalDescriptor
	stack       *Stack
	input       any
	branch      Descriptor // set once the predicate has resolved
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *conditionalContext) runner() (Scheduler, bool) {
	if c.branch != nil {
		return c.branch.probeScheduler()
	}
	return c.d.predicate.probeScheduler()
}

func (c *conditionalContext) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *conditionalContext) name() string { return c.d.Name() }

func (c *conditionalContext) entry(active Scheduler) {
	var cell *corotask.Cell
	if c.d.predicate.InputType() != nil {
		cell = corotask.NewCell(c.input)
	}
	ctx := c.d.predicate.newContext(c.stack, cell, c.onPredicateResult, c.onChildException)
	c.stack.Push(ctx)
}

func (c *conditionalContext) onPredicateResult(cell *corotask.Cell) {
	taken, err := corotask.Take[bool](cell)
	if err != nil {
		c.stack.Pop()
		c.onException(&CapturedError{Err: err})
		return
	}
	if taken {
		c.branch = c.d.thenBranch
	} else if c.d.elseBranch != nil {
		c.branch = c.d.elseBranch
	} else {
		// Then-only form, predicate false: no branch runs at all, matching
		// spec property 4 and the loop's own zero-iteration void result.
		c.stack.Pop()
		c.onResult(corotask.NewCell(Void{}))
		return
	}

	var branchCell *corotask.Cell
	if c.branch.InputType() != nil {
		branchCell = corotask.NewCell(c.input)
	}
	ctx := c.branch.newContext(c.stack, branchCell, c.onBranchResult, c.onChildException)
	c.stack.Push(ctx)
}

func (c *conditionalContext) onBranchResult(cell *corotask.Cell) {
	c.stack.Pop() // this conditionalContext itself
	c.onResult(cell)
}

func (c *conditionalContext) onChildException(ce *CapturedError) {
	c.stack.Pop() // this conditionalContext itself
	c.onException(ce)
}
