// Package trace provides execution tracing for the task scheduler:
// opt-in, filterable logging of every submit/dispatch/complete/intercept
// transition a running composition goes through. Grounded directly on the
// teacher's trace.Tracer (mutex-guarded io.Writer, filepath.Match filters,
// a package-level singleton with global convenience functions), retargeted
// from verb calls to task transitions.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer logs task scheduler transitions to an io.Writer, optionally
// restricted to names matching one of a set of filepath.Match patterns.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

var globalTracer *Tracer

// Init installs the global tracer. writer defaults to os.Stderr if nil.
// filters, if non-empty, restrict logging to transitions whose task name
// matches at least one filepath.Match pattern (runner names are not
// matched); an empty filter set traces everything.
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalTracer = &Tracer{enabled: enabled, filters: filters, writer: writer}
}

// IsEnabled reports whether the global tracer is installed and enabled.
func IsEnabled() bool {
	return globalTracer != nil && globalTracer.enabled
}

func (t *Tracer) matches(name string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Submit logs taskName being handed to runnerName's queue.
func (t *Tracer) Submit(taskName, runnerName string) {
	if !t.enabled || !t.matches(taskName) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] SUBMIT %s -> %s\n", taskName, runnerName)
}

// Dispatch logs taskName's callable actually starting to run on runnerName.
func (t *Tracer) Dispatch(taskName, runnerName string) {
	if !t.enabled || !t.matches(taskName) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] DISPATCH %s on %s\n", taskName, runnerName)
}

// Complete logs taskName finishing with result.
func (t *Tracer) Complete(taskName string, result any) {
	if !t.enabled || !t.matches(taskName) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] COMPLETE %s => %v\n", taskName, result)
}

// Exception logs taskName reporting a captured exception.
func (t *Tracer) Exception(taskName string, err error) {
	if !t.enabled || !t.matches(taskName) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] EXCEPTION %s: %v\n", taskName, err)
}

// Intercepted logs an exception raised by taskName being routed to
// handlerName instead of propagating further.
func (t *Tracer) Intercepted(taskName, handlerName string, err error) {
	if !t.enabled || !t.matches(taskName) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE]   INTERCEPTED %s by %s: %v\n", taskName, handlerName, err)
}

// Global convenience functions, each a no-op until Init has been called.

func Submit(taskName, runnerName string) {
	if globalTracer != nil {
		globalTracer.Submit(taskName, runnerName)
	}
}

func Dispatch(taskName, runnerName string) {
	if globalTracer != nil {
		globalTracer.Dispatch(taskName, runnerName)
	}
}

func Complete(taskName string, result any) {
	if globalTracer != nil {
		globalTracer.Complete(taskName, result)
	}
}

func Exception(taskName string, err error) {
	if globalTracer != nil {
		globalTracer.Exception(taskName, err)
	}
}

func Intercepted(taskName, handlerName string, err error) {
	if globalTracer != nil {
		globalTracer.Intercepted(taskName, handlerName, err)
	}
}
