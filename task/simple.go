package task

import (
	"fmt"
	"weak"

	"corotask"
	"corotask/trace"
)

// simpleDescriptor is a leaf task: a single callable bound to a weakly
// referenced runner subtype. All compound descriptors are ultimately built
// out of these.
type simpleDescriptor[R, I, O any] struct {
	base
	wp weak.Pointer[R]
	fn func(*R, I) (O, error)
}

// Simple builds a leaf task from a callable and the runner subtype it runs
// on. r is held weakly, mirroring the original's weak_ptr<RunnerT>
// reference to a simple task's bound runner: the task never keeps its
// runner alive by itself. *R must implement Scheduler; runner.Runner does
// directly, and any user type that embeds runner.Runner inherits it. fn
// runs to completion on a pool worker goroutine and must not block.
func Simple[R, I, O any](r *R, fn func(*R, I) (O, error)) (Task[I, O], error) {
	if r == nil {
		return Task[I, O]{}, corotask.NewError(corotask.IllegalArgument, "task.Simple: nil runner")
	}
	if _, ok := any(r).(Scheduler); !ok {
		return Task[I, O]{}, corotask.NewError(corotask.TypingError,
			"task.Simple: runner type %T does not implement Scheduler", r)
	}
	d := &simpleDescriptor[R, I, O]{
		base: newBase(TagSimple, typeOf[I](), typeOf[O]()),
		wp:   weak.Make(r),
		fn:   fn,
	}
	return Task[I, O]{d: d}, nil
}

// Getter is a simple task whose callable ignores its input, the generic
// convenience for a task that only reads from its bound runner.
func Getter[R, O any](r *R, fn func(*R) (O, error)) (Task[Void, O], error) {
	return Simple[R, Void, O](r, func(rr *R, _ Void) (O, error) { return fn(rr) })
}

// Mutator is a simple task whose callable has no result, the generic
// convenience for a task that only writes to its bound runner.
func Mutator[R, I any](r *R, fn func(*R, I) error) (Task[I, Void], error) {
	return Simple[R, I, Void](r, func(rr *R, in I) (Void, error) {
		return Void{}, fn(rr, in)
	})
}

func (d *simpleDescriptor[R, I, O]) resolve() (*R, Scheduler, bool) {
	p := d.wp.Value()
	if p == nil {
		return nil, nil, false
	}
	sched, ok := any(p).(Scheduler)
	if !ok {
		return nil, nil, false
	}
	return p, sched, true
}

func (d *simpleDescriptor[R, I, O]) probeScheduler() (Scheduler, bool) {
	_, sched, ok := d.resolve()
	return sched, ok
}

func (d *simpleDescriptor[R, I, O]) newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext {
	return &simpleContext[R, I, O]{d: d, stack: stack, input: input, onResult: onResult, onException: onException}
}

type simpleContext[R, I, O any] struct {
	d           *simpleDescriptor[R, I, O]
	stack       *Stack
	input       *corotask.Cell
	onResult    func(*corotask.Cell)
	onException func(*CapturedError)
}

func (c *simpleContext[R, I, O]) runner() (Scheduler, bool) {
	_, sched, ok := c.d.resolve()
	return sched, ok
}

func (c *simpleContext[R, I, O]) deliverUnavailable() {
	c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
}

func (c *simpleContext[R, I, O]) name() string { return c.d.Name() }

// entry runs the bound callable on the current goroutine, inside a recover
// so a panicking callable becomes a captured exception rather than taking
// down a pool worker, mirroring the teacher scheduler's runTask recovery.
//
// It pops itself off the stack before calling onResult/onException, not
// after: those callbacks may belong to a parent compound that immediately
// inspects or mutates the stack (to push the next sibling, say), and that
// is only safe once this context is no longer the one sitting on top of it.
func (c *simpleContext[R, I, O]) entry(active Scheduler) {
	name := c.d.Name()
	runnerName := "(unknown)"
	if n, ok := active.(interface{ Name() string }); ok {
		runnerName = n.Name()
	}
	trace.Dispatch(name, runnerName)

	rr, _, ok := c.d.resolve()
	if !ok {
		c.stack.Pop()
		trace.Exception(name, corotask.ErrRunnerUnavailable)
		c.onException(&CapturedError{Err: corotask.ErrRunnerUnavailable})
		return
	}

	var in I
	if c.input != nil {
		v, err := corotask.Take[I](c.input)
		if err != nil {
			c.stack.Pop()
			trace.Exception(name, err)
			c.onException(&CapturedError{Err: err})
			return
		}
		in = v
	}

	result, callErr := c.invoke(rr, in)
	c.stack.Pop()
	if callErr != nil {
		trace.Exception(name, callErr)
		c.onException(&CapturedError{Err: callErr})
		return
	}
	trace.Complete(name, result)
	c.onResult(corotask.NewCell(result))
}

func (c *simpleContext[R, I, O]) invoke(rr *R, in I) (out O, callErr error) {
	defer func() {
		if p := recover(); p != nil {
			callErr = fmt.Errorf("task: panic in simple callable: %v", p)
		}
	}()
	return c.d.fn(rr, in)
}
