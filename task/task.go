// Package task implements asynchronous task composition: a small set of
// composable node kinds (simple, sequence, conditional, loop, repeat,
// intercept) that describe work ahead of time, plus a scheduler driver that
// walks a running composition one runner hop at a time, the way the
// teacher's task.Manager hands descriptions of work to its Scheduler rather
// than running them inline.
package task

import (
	"context"
	"fmt"
	"reflect"

	"corotask"
)

var intType = reflect.TypeOf(0)

// Tag names a Descriptor's composition kind.
type Tag int

const (
	TagSimple Tag = iota
	TagSequence
	TagConditional
	TagLoop
	TagRepeat
	TagIntercept
)

func (t Tag) String() string {
	switch t {
	case TagSimple:
		return "simple"
	case TagSequence:
		return "sequence"
	case TagConditional:
		return "conditional"
	case TagLoop:
		return "loop"
	case TagRepeat:
		return "repeat"
	case TagIntercept:
		return "intercept"
	default:
		return "unknown"
	}
}

// Void stands in for "no value" where a task carries no input or produces
// no result. Task[Void, O] takes no input; Task[I, Void] produces nothing.
type Void struct{}

var voidType = reflect.TypeOf(Void{})

// typeOf reports T's reflect.Type, or nil for Void. Dereferencing a
// pointer-to-T rather than calling reflect.TypeOf on a zero value keeps
// this correct even when T is an interface type such as error: boxing a nil
// interface value into any loses the static type, but (*T)(nil) does not.
func typeOf[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t == voidType {
		return nil
	}
	return t
}

// Scheduler is the capability a bound runner subtype must provide. A plain
// *runner.Runner satisfies it directly; a user subtype embedding
// runner.Runner inherits Submit through method promotion and satisfies it
// for free.
type Scheduler interface {
	Submit(func())
}

// Descriptor is the type-erased, immutable description every factory
// function (SequenceOf, ConditionalOf, ...) returns and every Task wraps. A Descriptor
// describes work; it runs nothing itself until handed to Run or RunAny.
type Descriptor interface {
	Tag() Tag
	InputType() reflect.Type
	ResultType() reflect.Type
	ID() int64
	Name() string

	// probeScheduler resolves the Scheduler that the next simple subtask to
	// actually run is bound to, without creating any execContext. Simple
	// descriptors resolve their own weak runner reference; compounds
	// recurse into whichever child runs first (a Repeat always probes its
	// subtask; the inline scheduler for a zero-iteration Repeat comes from
	// its context's runner(), not from here). Used both as a pre-submission scheduling hint and, via
	// firstRunnerName, for diagnostics.
	probeScheduler() (Scheduler, bool)

	// newContext creates one run's worth of mutable state for this
	// Descriptor, wired to report its eventual result or captured exception
	// through onResult/onException and to push/pop itself on stack.
	newContext(stack *Stack, input *corotask.Cell, onResult func(*corotask.Cell), onException func(*CapturedError)) execContext
}

// execContext is one in-flight activation of a Descriptor. The driver calls
// runner() to find where to submit next, then entry() once a live
// Scheduler has accepted that submission. entry either reports upward and
// pops itself off the stack, or pushes a child context and returns, leaving
// the driver to resume.
type execContext interface {
	runner() (Scheduler, bool)
	entry(active Scheduler)
}

// base holds the fields every concrete Descriptor shares.
type base struct {
	corotask.Identity
	tag        Tag
	inputType  reflect.Type
	resultType reflect.Type
}

func newBase(tag Tag, in, out reflect.Type) base {
	return base{Identity: corotask.NewIdentity(tag.String()), tag: tag, inputType: in, resultType: out}
}

func (b *base) Tag() Tag                 { return b.tag }
func (b *base) InputType() reflect.Type  { return b.inputType }
func (b *base) ResultType() reflect.Type { return b.resultType }

// CapturedError is an exception in flight inside a running composition,
// analogous to a std::exception_ptr crossing a task boundary.
type CapturedError struct {
	Err error
}

func (c *CapturedError) Error() string { return c.Err.Error() }
func (c *CapturedError) Unwrap() error { return c.Err }

func capture(err error) *CapturedError {
	if ce, ok := err.(*CapturedError); ok {
		return ce
	}
	return &CapturedError{Err: err}
}

// Task is a statically typed handle onto a Descriptor. Most constructors
// (Simple, Sequence2, Conditional, ...) hand back a Task so Run is
// compile-time checked; dynamically assembled trees (SequenceOf over a
// runtime-determined arity) hand back a bare Descriptor and run through
// RunAny instead.
type Task[I, O any] struct {
	d Descriptor
}

// Of wraps an already-validated Descriptor as a statically typed Task. It
// is the caller's responsibility that I/O actually match d's reflect
// types; every exported factory that uses it has already checked this.
func Of[I, O any](d Descriptor) Task[I, O] { return Task[I, O]{d: d} }

// Descriptor returns the underlying type-erased node.
func (t Task[I, O]) Descriptor() Descriptor { return t.d }

// Future delivers the one-shot result or captured exception of a Run.
type Future[O any] struct {
	resultCh chan O
	errCh    chan *CapturedError
}

func newFuture[O any]() *Future[O] {
	return &Future[O]{resultCh: make(chan O, 1), errCh: make(chan *CapturedError, 1)}
}

// Wait blocks until the task completes or ctx is done.
func (f *Future[O]) Wait(ctx context.Context) (O, error) {
	var zero O
	select {
	case v := <-f.resultCh:
		return v, nil
	case e := <-f.errCh:
		return zero, e
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Run schedules t for execution with input and returns immediately with a
// Future that eventually delivers its result or captured exception.
// Scheduling is non-blocking: Run returns as soon as the root context has
// been pushed and handed to the driver, not once the task has actually run.
func (t Task[I, O]) Run(input I) *Future[O] {
	fut := newFuture[O]()
	stack := NewStack()

	var inputCell *corotask.Cell
	if t.d.InputType() != nil {
		inputCell = corotask.NewCell(input)
	}

	onResult := func(c *corotask.Cell) {
		if t.d.ResultType() == nil {
			corotask.Take[Void](c)
			var zero O
			fut.resultCh <- zero
			return
		}
		v, err := corotask.Take[O](c)
		if err != nil {
			fut.errCh <- capture(err)
			return
		}
		fut.resultCh <- v
	}
	onException := func(ce *CapturedError) {
		fut.errCh <- ce
	}

	ctx := t.d.newContext(stack, inputCell, onResult, onException)
	stack.Push(ctx)
	drive(stack)
	return fut
}

// AnyFuture is the type-erased counterpart of Future, used with RunAny for
// dynamically assembled compositions whose result type the Go compiler
// never sees (an n-ary SequenceOf built over a runtime slice, say).
type AnyFuture struct {
	resultCh chan any
	errCh    chan *CapturedError
}

// Wait blocks until the task completes or ctx is done.
func (f *AnyFuture) Wait(ctx context.Context) (any, error) {
	select {
	case v := <-f.resultCh:
		return v, nil
	case e := <-f.errCh:
		return nil, e
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RunAny schedules a type-erased Descriptor with a type-erased input. It
// fails immediately, before scheduling anything, with an IllegalArgument
// error if input's dynamic type does not match d.InputType().
func RunAny(d Descriptor, input any) (*AnyFuture, error) {
	if d.InputType() != nil {
		if input == nil || reflect.TypeOf(input) != d.InputType() {
			return nil, corotask.NewError(corotask.IllegalArgument,
				"task: input type %T does not match descriptor input type %s", input, d.InputType())
		}
	}

	fut := &AnyFuture{resultCh: make(chan any, 1), errCh: make(chan *CapturedError, 1)}
	stack := NewStack()

	var inputCell *corotask.Cell
	if d.InputType() != nil {
		inputCell = corotask.NewCell(input)
	}

	onResult := func(c *corotask.Cell) {
		if d.ResultType() == nil {
			corotask.Take[Void](c)
			fut.resultCh <- Void{}
			return
		}
		v, err := corotask.Take[any](c)
		if err != nil {
			fut.errCh <- capture(err)
			return
		}
		fut.resultCh <- v
	}
	onException := func(ce *CapturedError) {
		fut.errCh <- ce
	}

	ctx := d.newContext(stack, inputCell, onResult, onException)
	stack.Push(ctx)
	drive(stack)
	return fut, nil
}

func typeMismatch(what string, want, got reflect.Type) error {
	return corotask.NewError(corotask.TypingError, "task: %s: expected %s, got %s", what, displayType(want), displayType(got))
}

func displayType(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	return fmt.Sprint(t)
}

// firstRunnerName names the runner d's next-to-run simple subtask is bound
// to, for diagnostics. Reports
// "(unavailable)" once that runner has been dropped.
func firstRunnerName(d Descriptor) string {
	sched, ok := d.probeScheduler()
	if !ok {
		return "(unavailable)"
	}
	if n, ok := sched.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "(anonymous)"
}

// inlineScheduler runs submitted work synchronously on the calling
// goroutine instead of handing it to a pool. It backs compound transitions
// that need a scheduling hop to keep the driver's model uniform but have no
// actual runner-bound work to dispatch, such as a zero-iteration Repeat.
type inlineScheduler struct{}

func (inlineScheduler) Submit(fn func()) { fn() }

// zeroCellFor builds a Cell holding the zero value of t, for compounds that
// must report a default-constructed result when their body never ran (a
// zero-iteration Repeat). t == nil means void, reported as Void{}.
func zeroCellFor(t reflect.Type) *corotask.Cell {
	if t == nil {
		return corotask.NewCell(Void{})
	}
	return corotask.NewCell(reflect.New(t).Elem().Interface())
}
