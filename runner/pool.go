package runner

import (
	"runtime"
	"sync"

	"corotask"
)

// Pool is the concrete stand-in for the "platform thread pool" the task
// core otherwise treats as an external collaborator: a bounded set of
// long-lived goroutines draining a job channel. Grounded on the classic
// Go worker-pool pattern and sized, by default, close to the number of
// processor cores -- the same guidance the original Callable documentation
// gives for keeping the pool from oversubscribing the machine.
type Pool struct {
	jobs      chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool creates a pool of size worker goroutines. size == 0 defaults to
// runtime.NumCPU(). A negative size fails with a CreateFailure error,
// giving Runner construction's documented failure path somewhere to
// originate from.
func NewPool(size int) (*Pool, error) {
	if size < 0 {
		return nil, corotask.NewError(corotask.CreateFailure, "pool: negative worker count %d", size)
	}
	if size == 0 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		jobs: make(chan func(), 256),
		done: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p, nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		case <-p.done:
			return
		}
	}
}

// Go hands fn to the next available worker goroutine. It does not block the
// caller waiting for fn to run.
func (p *Pool) Go(fn func()) {
	select {
	case p.jobs <- fn:
	case <-p.done:
	}
}

// Close stops accepting new work and lets in-flight jobs finish. Workers
// blocked waiting on the job channel exit promptly via the done channel.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

// Wait blocks until all worker goroutines have exited. Intended for tests
// and clean process shutdown after Close.
func (p *Pool) Wait() {
	p.wg.Wait()
}
