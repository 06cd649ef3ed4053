package task

import (
	"reflect"

	"corotask"
)

// sequenceDescriptor chains n >= 2 children end to end: child i's result
// becomes child i+1's input. Validated once at construction: child i's
// ResultType must equal child i+1's InputType for every adjacent pair.
type sequenceDescriptor struct {
	base
	children []Descriptor
}

// SequenceOf builds an n-ary sequence from a runtime-determined slice of
// children, validating the chain with reflect since Go generics cannot
// express an arbitrary-arity type chain. Prefer Sequence2/Sequence3 when
// the arity is known at the call site; they give back a statically typed
// Task instead of a bare Descriptor.
func SequenceOf(children ...Descriptor) (Descriptor, error) {
	if len(children) < 2 {
		return nil, corotask.NewError(corotask.TypingError, "task.SequenceOf: needs at least 2 children, got %d", len(children))
	}
	for i := 0; i < len(children)-1; i++ {
		out := children[i].ResultType()
		in := children[i+1].InputType()
		if !sameType(out, in) {
			return nil, typeMismatch("sequence: result of child", in, out)
		}
	}
	return &sequenceDescriptor{
		base:     newBase(TagSequence, children[0].InputType(), children[len(children)-1].ResultType()),
		children: children,
	}, nil
}

func sameType(a, b reflect.Type) bool {
	return a == b
}

// Sequence2 chains two tasks with statically compatible types. It cannot
// fail: the Go type system already guarantees t1's result type equals t2's
// input type.
func Sequence2[A, B, C any](t1 Task[A, B], t2 Task[B, C]) Task[A, C] {
	d, err := SequenceOf(t1.d, t2.d)
	if err != nil {
		panic(err) // unreachable: static types already guarantee the chain validates
	}
	return Task[A, C]{d: d}
}

// Sequence3 chains three tasks with statically compatible types.
func Sequence3[A, B, C, D any](t1 Task[A, B], t2 Task[B, C], t3 Task[C, D]) Task[A, D] {
	d, err := SequenceOf(t1.d, t2.d, t3.d)
	if err != nil {
		panic(err)
	}
	return Task[A, D]{d: d}
}

func (d *sequenceDescriptor) probeScheduler() (Scheduler, bool) {
	return d.children[0].probeScheduler()
}

func (d *sequenceDescriptor) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	return &sequenceContext{d: d, stack: stack, next: input, onResult: onResult, onException: onException}
}

// sequenceContext remains on the stack for the whole run: it pushes child
// i's context, lets the driver advance through it, and (via the callbacks
// it hands that child) either advances to child i+1 or reports its own
// completion once child n-1 reports.
type sequenceContext struct {
	d           *sequenceDescriptor
	stack       *Stack
	idx         int
	next        *corotask.Cell
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *sequenceContext) runner() (Scheduler, bool) {
	return c.d.children[c.idx].probeScheduler()
}

func (c *sequenceContext) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *sequenceContext) name() string { return c.d.Name() }

// entry pushes the current child's context. The child's own entry (run on
// the next driver hop) pops itself and calls back into onChildResult or
// onChildException, which advance to the next child (pushed by entry on the
// driver's next redrive) or finish the sequence.
func (c *sequenceContext) entry(active Scheduler) {
	child := c.d.children[c.idx]
	ctx := child.newContext(c.stack, c.next, c.onChildResult, c.onChildException)
	c.stack.Push(ctx)
}

func (c *sequenceContext) onChildResult(cell *corotask.Cell) {
	c.idx++
	if c.idx >= len(c.d.children) {
		c.stack.Pop() // this sequenceContext itself
		c.onResult(cell)
		return
	}
	c.next = cell
}

func (c *sequenceContext) onChildException(ce *CapturedError) {
	c.stack.Pop() // this sequenceContext itself
	c.onException(ce)
}
