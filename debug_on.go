//go:build corotask_debug

package corotask

import "sync/atomic"

// Cell construction/destruction counters for spec property 8 (resource
// safety): compiled in only under the corotask_debug build tag, mirroring
// how the teacher gates trace.IsEnabled() behind an explicit switch rather
// than paying for diagnostics unconditionally.
var (
	cellAllocCount atomic.Int64
	cellFreeCount  atomic.Int64
)

func debugCellAlloc() { cellAllocCount.Add(1) }
func debugCellFree()  { cellFreeCount.Add(1) }

// CellAllocCount reports how many Cells have been constructed since the
// process started or the counters were last reset. Only meaningful when
// built with -tags corotask_debug; the non-debug build reports 0.
func CellAllocCount() int64 { return cellAllocCount.Load() }

// CellFreeCount reports how many Cells have had their stored value consumed
// via Take or explicitly emptied via Clear.
func CellFreeCount() int64 { return cellFreeCount.Load() }

// ResetCellCounters zeroes both counters, for test isolation between runs.
func ResetCellCounters() {
	cellAllocCount.Store(0)
	cellFreeCount.Store(0)
}
