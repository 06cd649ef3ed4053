package task

import "corotask"

// loopDescriptor runs predicate repeatedly, running body (if present)
// after every predicate result of true and feeding body's result back as
// predicate's next input, until predicate returns false. With no body,
// input and result are both void and the loop simply re-runs predicate
// until it returns false. Grounded on cool.ng's factory::loop, which
// offers the same two overloads (predicate-only, predicate-with-body).
type loopDescriptor struct {
	base
	predicate Descriptor
	body      Descriptor // nil for the predicate-only form
}

// LoopOf builds the predicate-only form: predicate must take no input and
// return bool.
func LoopOf(predicate Descriptor) (Descriptor, error) {
	if !sameType(predicate.ResultType(), boolType) {
		return nil, typeMismatch("loop: predicate result", boolType, predicate.ResultType())
	}
	if predicate.InputType() != nil {
		return nil, typeMismatch("loop: predicate-only input", nil, predicate.InputType())
	}
	return &loopDescriptor{
		base:      newBase(TagLoop, nil, nil),
		predicate: predicate,
	}, nil
}

// LoopWithBodyOf builds the predicate-plus-body form: predicate's input
// type must equal body's input type, which must equal body's result type
// (the value threaded from iteration to iteration).
func LoopWithBodyOf(predicate, body Descriptor) (Descriptor, error) {
	if !sameType(predicate.ResultType(), boolType) {
		return nil, typeMismatch("loop: predicate result", boolType, predicate.ResultType())
	}
	if !sameType(predicate.InputType(), body.InputType()) {
		return nil, typeMismatch("loop: body input", predicate.InputType(), body.InputType())
	}
	if !sameType(predicate.InputType(), body.ResultType()) {
		return nil, typeMismatch("loop: body result", predicate.InputType(), body.ResultType())
	}
	return &loopDescriptor{
		base:      newBase(TagLoop, predicate.InputType(), body.ResultType()),
		predicate: predicate,
		body:      body,
	}, nil
}

// LoopVoid builds a predicate-only loop from a statically typed predicate.
func LoopVoid(predicate Task[Void, bool]) Task[Void, Void] {
	d, err := LoopOf(predicate.d)
	if err != nil {
		panic(err)
	}
	return Task[Void, Void]{d: d}
}

// Loop builds a predicate-plus-body loop from statically typed children;
// the Go type system already guarantees this validates.
func Loop[I any](predicate Task[I, bool], body Task[I, I]) Task[I, I] {
	d, err := LoopWithBodyOf(predicate.d, body.d)
	if err != nil {
		panic(err)
	}
	return Task[I, I]{d: d}
}

func (d *loopDescriptor) probeScheduler() (Scheduler, bool) {
	return d.predicate.probeScheduler()
}

func (d *loopDescriptor) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	var cur any
	if input != nil {
		cur, _ = corotask.Take[any](input)
	}
	return &loopContext{d: d, stack: stack, cur: cur, onResult: onResult, onException: onException}
}

// loopContext stays on the stack for the whole run. Its entry pushes
// whichever child (predicate or body) is next; the predicate's own
// callback decides whether to keep looping, switch to the body, or finish.
type loopContext struct {
	d           *loopDescriptor
	stack       *Stack
	cur         any
	needBody    bool
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *loopContext) runner() (Scheduler, bool) {
	if c.needBody {
		return c.d.body.probeScheduler()
	}
	return c.d.predicate.probeScheduler()
}

func (c *loopContext) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *loopContext) name() string { return c.d.Name() }

func (c *loopContext) entry(active Scheduler) {
	if c.needBody {
		var cell *corotask.Cell
		if c.d.body.InputType() != nil {
			cell = corotask.NewCell(c.cur)
		}
		ctx := c.d.body.newContext(c.stack, cell, c.onBodyResult, c.onChildException)
		c.stack.Push(ctx)
		return
	}

	var cell *corotask.Cell
	if c.d.predicate.InputType() != nil {
		cell = corotask.NewCell(c.cur)
	}
	ctx := c.d.predicate.newContext(c.stack, cell, c.onPredicateResult, c.onChildException)
	c.stack.Push(ctx)
}

func (c *loopContext) onPredicateResult(cell *corotask.Cell) {
	cont, err := corotask.Take[bool](cell)
	if err != nil {
		c.stack.Pop()
		c.onException(&CapturedError{Err: err})
		return
	}
	if !cont {
		c.stack.Pop()
		if c.d.body == nil {
			c.onResult(corotask.NewCell(Void{}))
		} else {
			// c.cur already holds the original input if body never ran, or
			// the last body result otherwise -- exactly the documented
			// return value.
			c.onResult(corotask.NewCell(c.cur))
		}
		return
	}
	if c.d.body != nil {
		c.needBody = true
	}
	// no body: leave needBody false, next redrive re-runs the predicate
}

func (c *loopContext) onBodyResult(cell *corotask.Cell) {
	v, _ := corotask.Take[any](cell)
	c.cur = v
	c.needBody = false
}

func (c *loopContext) onChildException(ce *CapturedError) {
	c.stack.Pop()
	c.onException(ce)
}
