//go:build !corotask_debug

package task

// Stub build of the property-8 resource-safety counters: no-ops, so
// stack.go can call the debug hooks unconditionally without paying for
// atomics in ordinary builds.

func debugContextAlloc() {}
func debugContextFree()  {}

// ContextAllocCount always reports 0 outside a corotask_debug build.
func ContextAllocCount() int64 { return 0 }

// ContextFreeCount always reports 0 outside a corotask_debug build.
func ContextFreeCount() int64 { return 0 }

// ResetContextCounters is a no-op outside a corotask_debug build.
func ResetContextCounters() {}
