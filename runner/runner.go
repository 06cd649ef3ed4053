// Package runner implements the runner and work-queue abstractions: named,
// shared execution queues that schedule work either serially or
// concurrently onto a backing worker pool.
package runner

import "corotask"

// RunPolicy selects a Runner's scheduling discipline. It is only
// indicative: a Concurrent runner may still execute its queue one item at
// a time if no worker happens to be free, but a Sequential runner is
// guaranteed never to run two of its own items in parallel.
type RunPolicy int

const (
	// Sequential executes queued work one item at a time, in enqueue order.
	Sequential RunPolicy = iota
	// Concurrent forwards each item to the pool as soon as a worker is
	// free, regardless of whether the previous item has completed.
	Concurrent
)

func (p RunPolicy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// Runner is a named handle to an underlying work queue. Copies made with
// Clone refer to the same queue: releasing one handle releases them all.
type Runner struct {
	corotask.Identity
	policy  RunPolicy
	pool    *Pool
	ownPool bool
	queue   *Queue
}

// New constructs a Runner with its own private pool, created in the
// started state. policy defaults to Sequential (the zero value).
func New(policy RunPolicy) (*Runner, error) {
	pool, err := NewPool(0)
	if err != nil {
		return nil, err
	}
	r := NewWithPool(policy, pool)
	r.ownPool = true
	return r, nil
}

// NewWithPool constructs a Runner backed by an existing, shared Pool. This
// is the domain-stack wiring point for sharing one worker pool across many
// runners, mirroring how the teacher's Scheduler shares one evaluator
// across every task it runs.
func NewWithPool(policy RunPolicy, pool *Pool) *Runner {
	return &Runner{
		Identity: corotask.NewIdentity("runner"),
		policy:   policy,
		pool:     pool,
		queue:    newQueue(policy, pool),
	}
}

// Clone returns a new handle sharing this Runner's underlying queue. Both
// handles' Start/Stop/Release calls affect the one shared queue.
func (r *Runner) Clone() *Runner {
	return &Runner{
		Identity: r.Identity,
		policy:   r.policy,
		pool:     r.pool,
		queue:    r.queue,
	}
}

// Submit hands a unit of work to the runner's queue. Non-blocking: it
// returns as soon as the item is recorded, not once it has run.
func (r *Runner) Submit(work func()) {
	r.queue.Enqueue(work)
}

// Start transitions the runner from stopped to started.
func (r *Runner) Start() { r.queue.Start() }

// Stop transitions the runner from started to stopped. Already-dispatched
// work runs to completion; queued items wait for the next Start.
func (r *Runner) Stop() { r.queue.Stop() }

// Policy reports the runner's scheduling policy.
func (r *Runner) Policy() RunPolicy { return r.policy }

// Pool returns the worker pool backing this runner's queue.
func (r *Runner) Pool() *Pool { return r.pool }

// Release marks the underlying queue as released; the queue drains any
// remaining submissions. No count of live handles is kept, so releasing any
// one Clone releases the queue shared by all of them. Post-release
// submissions are undefined behavior.
func (r *Runner) Release() {
	r.queue.release()
}

// Close shuts down the runner's pool if this Runner owns it (created via
// New rather than NewWithPool). It does not wait for queued items to
// drain; call Release first and let the queue empty before Close.
func (r *Runner) Close() {
	if r.ownPool {
		r.pool.Close()
	}
}
