//go:build !corotask_debug

package corotask

// Stub build of the property-8 resource-safety counters: no-ops, so cell.go
// can call the debug hooks unconditionally without paying for atomics in
// ordinary builds.

func debugCellAlloc() {}
func debugCellFree()  {}

// CellAllocCount always reports 0 outside a corotask_debug build.
func CellAllocCount() int64 { return 0 }

// CellFreeCount always reports 0 outside a corotask_debug build.
func CellFreeCount() int64 { return 0 }

// ResetCellCounters is a no-op outside a corotask_debug build.
func ResetCellCounters() {}
