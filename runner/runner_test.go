package runner

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSequentialRunnerOrdersWork(t *testing.T) {
	r, err := New(Sequential)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Start()
	defer r.Release()
	defer r.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		i := i
		r.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("sequential runner reordered work: %v", order)
		}
	}
}

func TestConcurrentRunnerRunsEverything(t *testing.T) {
	r, err := New(Concurrent)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Start()
	defer r.Release()
	defer r.Close()

	var n atomic.Int32
	var wg sync.WaitGroup
	wg.Add(50)
	for i := 0; i < 50; i++ {
		r.Submit(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()
	if n.Load() != 50 {
		t.Fatalf("got %d completions, want 50", n.Load())
	}
}

func TestStopPausesDispatch(t *testing.T) {
	r, err := New(Sequential)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Release()
	defer r.Close()

	var ran atomic.Bool
	r.Stop()
	r.Submit(func() { ran.Store(true) })

	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("work ran while runner was stopped")
	}

	r.Start()
	deadline := time.Now().Add(time.Second)
	for !ran.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatalf("work never ran after Start")
	}
}

func TestCloneSharesQueue(t *testing.T) {
	r, err := New(Sequential)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Start()
	clone := r.Clone()
	defer r.Release()
	defer r.Close()

	var n atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	r.Submit(func() { defer wg.Done(); n.Add(1) })
	clone.Submit(func() { defer wg.Done(); n.Add(1) })
	wg.Wait()

	if n.Load() != 2 {
		t.Fatalf("got %d completions across cloned handles, want 2", n.Load())
	}
}

func TestPoolRejectsNegativeSize(t *testing.T) {
	if _, err := NewPool(-1); err == nil {
		t.Fatalf("expected error constructing a pool with negative size")
	}
}
