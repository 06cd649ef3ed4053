package runner

import (
	"sync"
	"sync/atomic"
)

// status bits, matching spec.md's EMPTY|ACTIVE|BUSY|RELEASED work-queue
// status word exactly. ACTIVE here means "permitted to dispatch" (the
// runner is started); it has nothing to do with goroutine scheduling.
const (
	statusEmpty    uint32 = 1 << iota // no items currently queued
	statusActive                      // runner is started; dispatch permitted
	statusBusy                        // one item is currently in flight to the pool
	statusReleased                    // queue has been released; draining to completion
)

// Queue backs a Runner. For RunPolicy.Sequential it guarantees at most one
// item executes at a time, in enqueue order. For RunPolicy.Concurrent it
// forwards each item directly to the pool with no serialization gate, so
// items start in enqueue order but may overlap; items submitted while the
// queue is stopped (or while earlier held items are still pending) are held
// in the queue and dispatched in enqueue order once it is started.
type Queue struct {
	policy RunPolicy
	pool   *Pool

	mu    sync.Mutex
	items []func()

	status atomic.Uint32
}

func newQueue(policy RunPolicy, pool *Pool) *Queue {
	q := &Queue{policy: policy, pool: pool}
	q.status.Store(statusEmpty | statusActive)
	return q
}

// Enqueue appends item to the queue and attempts to submit the next
// runnable item to the pool. A started concurrent queue with nothing held
// forwards item to the pool directly instead.
func (q *Queue) Enqueue(item func()) {
	if q.policy == Concurrent {
		if cur := q.status.Load(); cur&statusActive != 0 && cur&statusEmpty != 0 {
			q.pool.Go(func() { q.runItem(item) })
			return
		}
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.clearBit(statusEmpty)
	q.checkSubmitNext()
}

// checkSubmitNext is the edge-trigger described in spec.md §4.3: it
// atomically transitions {not empty, active, not busy} -> {not empty,
// active, busy}, and on success dequeues and dispatches the next item. A
// failed compare-and-swap means either nothing is queued, the runner is
// stopped, or another dispatch is already in flight -- in all three cases
// there is nothing to do here.
func (q *Queue) checkSubmitNext() {
	for {
		cur := q.status.Load()
		if cur&statusEmpty != 0 || cur&statusActive == 0 || cur&statusBusy != 0 {
			return
		}
		next := cur | statusBusy
		if q.status.CompareAndSwap(cur, next) {
			break
		}
	}

	q.mu.Lock()
	var item func()
	if len(q.items) > 0 {
		item = q.items[0]
		q.items = q.items[1:]
		if len(q.items) == 0 {
			q.setBit(statusEmpty)
		}
	}
	q.mu.Unlock()

	if item == nil {
		// Lost race with a concurrent drain; release the busy bit we just
		// took and let the next enqueue re-trigger.
		q.clearBit(statusBusy)
		return
	}

	q.pool.Go(func() { q.runItem(item) })
}

// runItem is the worker callback: it runs the item inside a catch-all so a
// panic escaping a work item (it was already delivered to the task runtime
// as a captured exception before reaching here) cannot take down a pool
// worker goroutine, then clears the busy bit and re-triggers dispatch.
func (q *Queue) runItem(item func()) {
	defer func() {
		recover()
		q.clearBit(statusBusy)
		q.checkSubmitNext()
	}()
	item()
}

// Start transitions the queue from stopped to started and, if work is
// pending, arranges for it to run.
func (q *Queue) Start() {
	q.setBit(statusActive)
	q.checkSubmitNext()
}

// Stop transitions the queue from started to stopped. Already-dispatched
// work runs to completion; queued items wait for the next Start.
func (q *Queue) Stop() {
	q.clearBit(statusActive)
}

// release marks the queue as released. Remaining submissions still drain
// normally; checkSubmitNext's compare-and-swap only inspects the
// empty/active/busy bits, so setting this bit never blocks draining.
func (q *Queue) release() {
	q.setBit(statusReleased)
}

func (q *Queue) setBit(bit uint32) {
	for {
		cur := q.status.Load()
		if cur&bit != 0 {
			return
		}
		if q.status.CompareAndSwap(cur, cur|bit) {
			return
		}
	}
}

func (q *Queue) clearBit(bit uint32) {
	for {
		cur := q.status.Load()
		if cur&bit == 0 {
			return
		}
		if q.status.CompareAndSwap(cur, cur&^bit) {
			return
		}
	}
}
