package task

import "corotask"

// repeatDescriptor schedules subtask N times, where N arrives as the run
// input, handing subtask its 0-based iteration index as its own input each
// time. Functionally the async analogue of a counted for loop.
type repeatDescriptor struct {
	base
	subtask Descriptor
}

// RepeatOf builds a repeat from a type-erased subtask, checked at
// construction: subtask's input type must be int (the iteration index).
func RepeatOf(subtask Descriptor) (Descriptor, error) {
	if !sameType(subtask.InputType(), intType) {
		return nil, typeMismatch("repeat: subtask input", intType, subtask.InputType())
	}
	return &repeatDescriptor{
		base:    newBase(TagRepeat, intType, subtask.ResultType()),
		subtask: subtask,
	}, nil
}

// Repeat builds a repeat from a statically typed subtask taking an int
// iteration index; the Go type system already guarantees this validates.
func Repeat[O any](subtask Task[int, O]) Task[int, O] {
	d, err := RepeatOf(subtask.d)
	if err != nil {
		panic(err)
	}
	return Task[int, O]{d: d}
}

func (d *repeatDescriptor) probeScheduler() (Scheduler, bool) {
	return d.subtask.probeScheduler()
}

func (d *repeatDescriptor) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	n, _ := corotask.Take[int](input)
	return &repeatContext{d: d, stack: stack, n: n, onResult: onResult, onException: onException}
}

// repeatContext tracks how many of the n iterations have completed. It
// stays on the stack across every iteration; each iteration's subtask
// context is pushed and popped on top of it in turn.
type repeatContext struct {
	d           *repeatDescriptor
	stack       *Stack
	n           int
	i           int
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *repeatContext) runner() (Scheduler, bool) {
	if c.i < c.n {
		return c.d.subtask.probeScheduler()
	}
	return inlineScheduler{}, true
}

func (c *repeatContext) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *repeatContext) name() string { return c.d.Name() }

func (c *repeatContext) entry(active Scheduler) {
	if c.i >= c.n {
		c.stack.Pop()
		c.onResult(zeroCellFor(c.d.subtask.ResultType()))
		return
	}

	var cell *corotask.Cell
	if c.d.subtask.InputType() != nil {
		cell = corotask.NewCell(c.i)
	}
	ctx := c.d.subtask.newContext(c.stack, cell, c.onChildResult, c.onChildException)
	c.stack.Push(ctx)
}

func (c *repeatContext) onChildResult(cell *corotask.Cell) {
	c.i++
	if c.i >= c.n {
		c.stack.Pop()
		c.onResult(cell)
		return
	}
	// Still more iterations: only the final iteration's result is reported
	// upward, so every earlier one is consumed here and discarded.
	corotask.Take[any](cell)
	// Leave this context on the stack. The driver's unconditional redrive
	// after this child's entry returns finds it still on top and calls
	// entry again for the next iteration.
}

func (c *repeatContext) onChildException(ce *CapturedError) {
	c.stack.Pop()
	c.onException(ce)
}
