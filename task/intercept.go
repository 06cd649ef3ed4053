package task

import (
	"reflect"

	"corotask"
	"corotask/trace"
)

var errorIfaceType = reflect.TypeOf((*error)(nil)).Elem()

// interceptDescriptor runs try and, if it reports a captured exception
// instead of a result, searches handlers in order for the first whose
// declared input type matches the exception's dynamic type (or is the bare
// error interface, a catch-all), and runs that handler instead. If no
// handler matches, the exception propagates as intercept's own exception,
// same as if interceptDescriptor were not there at all.
type interceptDescriptor struct {
	base
	try      Descriptor
	handlers []Descriptor
}

// InterceptOf builds an intercept from type-erased children, checked at
// construction: every handler's result type must equal try's result type,
// every handler's input type must be error or a type implementing error,
// and at most one handler may declare the bare error interface (a
// catch-all; it matches any exception that reaches it).
func InterceptOf(try Descriptor, handlers ...Descriptor) (Descriptor, error) {
	if len(handlers) == 0 {
		return nil, corotask.NewError(corotask.TypingError, "task.InterceptOf: needs at least one handler")
	}
	catchAll := 0
	for _, h := range handlers {
		if !sameType(h.ResultType(), try.ResultType()) {
			return nil, typeMismatch("intercept: handler result", try.ResultType(), h.ResultType())
		}
		in := h.InputType()
		if in == nil {
			return nil, corotask.NewError(corotask.TypingError, "task.InterceptOf: handler %s takes no input; it must accept error or an error-implementing type", h.Name())
		}
		if in == errorIfaceType {
			catchAll++
			continue
		}
		if !in.Implements(errorIfaceType) {
			return nil, corotask.NewError(corotask.TypingError, "task.InterceptOf: handler %s input type %s does not implement error", h.Name(), in)
		}
	}
	if catchAll > 1 {
		return nil, corotask.NewError(corotask.TypingError, "task.InterceptOf: at most one handler may be a catch-all (input type error), got %d", catchAll)
	}
	return &interceptDescriptor{
		base:     newBase(TagIntercept, try.InputType(), try.ResultType()),
		try:      try,
		handlers: handlers,
	}, nil
}

// Intercept builds an intercept from a statically typed try task and one
// statically typed handler, the common single-handler case.
func Intercept[I, O, E any](try Task[I, O], handler Task[E, O]) Task[I, O] {
	d, err := InterceptOf(try.d, handler.d)
	if err != nil {
		panic(err)
	}
	return Task[I, O]{d: d}
}

func (d *interceptDescriptor) probeScheduler() (Scheduler, bool) {
	return d.try.probeScheduler()
}

func (d *interceptDescriptor) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	return &interceptContext{d: d, stack: stack, input: input, onResult: onResult, onException: onException}
}

// interceptContext stays on the stack until either try reports a result or
// one of the handlers does (or propagates its own exception).
type interceptContext struct {
	d           *interceptDescriptor
	stack       *Stack
	input       *corotask.Cell
	handler     Descriptor // set once a matching handler has been found
	handlerErr  error
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *interceptContext) runner() (Scheduler, bool) {
	if c.handler != nil {
		return c.handler.probeScheduler()
	}
	return c.d.try.probeScheduler()
}

func (c *interceptContext) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *interceptContext) name() string { return c.d.Name() }

func (c *interceptContext) entry(active Scheduler) {
	if c.handler != nil {
		var cell *corotask.Cell
		if c.handler.InputType() != nil {
			cell = corotask.NewCell(c.handlerErr)
		}
		ctx := c.handler.newContext(c.stack, cell, c.onHandlerResult, c.onHandlerException)
		c.stack.Push(ctx)
		return
	}
	ctx := c.d.try.newContext(c.stack, c.input, c.onTryResult, c.onTryException)
	c.stack.Push(ctx)
}

func (c *interceptContext) onTryResult(cell *corotask.Cell) {
	c.stack.Pop()
	c.onResult(cell)
}

func (c *interceptContext) onTryException(ce *CapturedError) {
	errType := reflect.TypeOf(ce.Err)
	for _, h := range c.d.handlers {
		in := h.InputType()
		if in == errorIfaceType || (errType != nil && errType.AssignableTo(in)) {
			c.handler = h
			c.handlerErr = ce.Err
			trace.Intercepted(c.d.try.Name(), h.Name(), ce.Err)
			return
		}
	}
	// No handler matched: propagate untouched, same as if this intercept
	// were not here at all.
	c.stack.Pop()
	c.onException(ce)
}

func (c *interceptContext) onHandlerResult(cell *corotask.Cell) {
	c.stack.Pop()
	c.onResult(cell)
}

func (c *interceptContext) onHandlerException(ce *CapturedError) {
	c.stack.Pop()
	c.onException(ce)
}
