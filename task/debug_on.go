//go:build corotask_debug

package task

import "sync/atomic"

// execContext push/pop counters for spec property 8 (resource safety):
// compiled in only under the corotask_debug build tag. Every execContext is
// pushed exactly once and popped exactly once by construction (see Stack),
// so a completed run's alloc/free counts must match.
var (
	contextAllocCount atomic.Int64
	contextFreeCount  atomic.Int64
)

func debugContextAlloc() { contextAllocCount.Add(1) }
func debugContextFree()  { contextFreeCount.Add(1) }

// ContextAllocCount reports how many execContexts have been pushed onto a
// Stack since the process started or the counters were last reset. Only
// meaningful when built with -tags corotask_debug; the non-debug build
// reports 0.
func ContextAllocCount() int64 { return contextAllocCount.Load() }

// ContextFreeCount reports how many execContexts have been popped off a
// Stack.
func ContextFreeCount() int64 { return contextFreeCount.Load() }

// ResetContextCounters zeroes both counters, for test isolation between
// runs.
func ResetContextCounters() {
	contextAllocCount.Store(0)
	contextFreeCount.Store(0)
}
