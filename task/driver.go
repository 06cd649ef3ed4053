package task

import "corotask/trace"

// drive advances stack until it has either emptied (the whole composition
// has finished) or control has been handed off to a Scheduler and must wait
// for that submitted work to actually run. This is the scheduler's driver
// loop: it never blocks and never runs task work itself, only decides
// where the next hop goes.
func drive(stack *Stack) {
	for {
		if stack.Empty() {
			return
		}

		top := stack.Top()
		sched, ok := top.runner()
		if !ok {
			// The runner this context needed has already been dropped.
			// Report upward through this context's own exception channel
			// and unwind it; the context below (if any) gets the same
			// treatment next time around the loop.
			reportUnavailable(top)
			stack.Pop()
			continue
		}

		if n, ok := top.(interface{ name() string }); ok {
			runnerName := "(unknown)"
			if rn, ok := sched.(interface{ Name() string }); ok {
				runnerName = rn.Name()
			}
			trace.Submit(n.name(), runnerName)
		}
		sched.Submit(func() {
			top.entry(sched)
			drive(stack)
		})
		return
	}
}

// reportUnavailable delivers a RunnerUnavailable exception through ctx's
// own reporting path without running its entry point, for the case where
// the driver discovers the bound runner is gone before ever submitting
// work to it.
func reportUnavailable(ctx execContext) {
	if r, ok := ctx.(interface{ deliverUnavailable() }); ok {
		r.deliverUnavailable()
	}
}
