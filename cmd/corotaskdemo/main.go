// Command corotaskdemo runs the task scheduler's reference scenarios
// against a live pool of runners and prints their outcomes. It exists to
// give the core something runnable to exercise, the same role
// cmd/barn/main.go plays for the teacher's MOO server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"corotask/runner"
	"corotask/task"
	"corotask/trace"
)

// DemoConfig describes an optional YAML file controlling which scenarios
// run and how the pool backing them is sized.
type DemoConfig struct {
	Workers     int      `yaml:"workers"`
	TraceFilter []string `yaml:"trace_filter"`
	Scenarios   []string `yaml:"scenarios"`
}

func main() {
	var (
		traceEnabled = flag.Bool("trace", false, "enable task scheduler tracing to stderr")
		traceFilter  = flag.String("trace-filter", "", "comma-separated glob filters for -trace (default: everything)")
		workers      = flag.Int("workers", 0, "worker pool size (0 = number of CPUs)")
		configPath   = flag.String("config", "", "optional YAML file overriding -workers and -trace-filter and choosing scenarios")
	)
	flag.Parse()

	cfg := DemoConfig{Workers: *workers}
	if *traceFilter != "" {
		cfg.TraceFilter = strings.Split(*traceFilter, ",")
	}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("corotaskdemo: %v", err)
		}
	}

	trace.Init(*traceEnabled, cfg.TraceFilter, os.Stderr)

	pool, err := runner.NewPool(cfg.Workers)
	if err != nil {
		log.Fatalf("corotaskdemo: %v", err)
	}
	defer pool.Close()

	scenarios := map[string]func(*runner.Pool){
		"E1": scenarioE1,
		"E2": scenarioE2,
		"E3": scenarioE3,
		"E4": scenarioE4,
		"E5": scenarioE5,
		"E6": scenarioE6,
	}
	names := cfg.Scenarios
	if len(names) == 0 {
		names = []string{"E1", "E2", "E3", "E4", "E5", "E6"}
	}
	for _, name := range names {
		run, ok := scenarios[name]
		if !ok {
			log.Printf("corotaskdemo: unknown scenario %q, skipping", name)
			continue
		}
		log.Printf("=== %s ===", name)
		run(pool)
	}
}

func loadConfig(path string, cfg *DemoConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func mustRunner(pool *runner.Pool, policy runner.RunPolicy) *runner.Runner {
	r := runner.NewWithPool(policy, pool)
	r.Start()
	return r
}

func await[O any](fut *task.Future[O]) (O, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return fut.Wait(ctx)
}

// E1: sequence(T1, T2, T3) where T1: Int->Int (+1), T2: Int->Int (+2),
// T3: Int->void (store); input 5 => stored value 8.
func scenarioE1(pool *runner.Pool) {
	r := mustRunner(pool, runner.Sequential)
	defer r.Release()

	var stored int32
	t1, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 1, nil })
	t2, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 2, nil })
	t3, _ := task.Mutator(r, func(_ *runner.Runner, x int) error {
		atomic.StoreInt32(&stored, int32(x))
		return nil
	})

	seq := task.Sequence3(t1, t2, t3)
	if _, err := await(seq.Run(5)); err != nil {
		log.Printf("E1: error: %v", err)
		return
	}
	log.Printf("E1: stored=%d (want 8)", atomic.LoadInt32(&stored))
}

// E2: conditional(P, Y, N) with P: Int->bool (x==5), Y: Int->Int (+42),
// N: Int->Int (+84); input 5 => 47, input 10 => 94.
func scenarioE2(pool *runner.Pool) {
	r := mustRunner(pool, runner.Concurrent)
	defer r.Release()

	pred, _ := task.Simple(r, func(_ *runner.Runner, x int) (bool, error) { return x == 5, nil })
	yes, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 42, nil })
	no, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) { return x + 84, nil })
	cond := task.Conditional(pred, yes, no)

	v1, _ := await(cond.Run(5))
	v2, _ := await(cond.Run(10))
	log.Printf("E2: run(5)=%d (want 47), run(10)=%d (want 94)", v1, v2)
}

// E3: repeat(T) with T: Int->void counting calls; run(100) => 100 calls,
// run(0) => 0 calls.
func scenarioE3(pool *runner.Pool) {
	r := mustRunner(pool, runner.Sequential)
	defer r.Release()

	var calls int32
	t, _ := task.Mutator(r, func(_ *runner.Runner, _ int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	rep := task.Repeat(t)

	await(rep.Run(100))
	log.Printf("E3: run(100) calls=%d (want 100)", atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	await(rep.Run(0))
	log.Printf("E3: run(0) calls=%d (want 0)", atomic.LoadInt32(&calls))
}

// E4: loop(P, B) with P: Int->bool (x<100), B: Int->Int (+1); run(0) =>
// final 100, body called 100 times, predicate called 101 times.
func scenarioE4(pool *runner.Pool) {
	r := mustRunner(pool, runner.Sequential)
	defer r.Release()

	var predCalls, bodyCalls int32
	pred, _ := task.Simple(r, func(_ *runner.Runner, x int) (bool, error) {
		atomic.AddInt32(&predCalls, 1)
		return x < 100, nil
	})
	body, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) {
		atomic.AddInt32(&bodyCalls, 1)
		return x + 1, nil
	})
	loop := task.Loop(pred, body)

	v, _ := await(loop.Run(0))
	log.Printf("E4: final=%d (want 100) predCalls=%d (want 101) bodyCalls=%d (want 100)",
		v, atomic.LoadInt32(&predCalls), atomic.LoadInt32(&bodyCalls))
}

type runtimeError struct{ msg string }

func (e *runtimeError) Error() string { return e.msg }

// E5: intercept(Try, H_runtime, H_any) with Try: Int->Int throwing
// *runtimeError("oops") when input==5, a generic error when input==7, and
// returning input otherwise; run(5) => H_runtime observes the typed error;
// run(7) => H_any's catch-all observes the generic error; run(6) => Try's
// result propagates untouched.
func scenarioE5(pool *runner.Pool) {
	r := mustRunner(pool, runner.Sequential)
	defer r.Release()

	try, _ := task.Simple(r, func(_ *runner.Runner, x int) (int, error) {
		switch x {
		case 5:
			return 0, &runtimeError{msg: "oops"}
		case 7:
			return 0, errors.New("generic failure")
		default:
			return x, nil
		}
	})
	var observedRuntime, observedAny error
	hRuntime, _ := task.Simple(r, func(_ *runner.Runner, err *runtimeError) (int, error) {
		observedRuntime = err
		return -1, nil
	})
	hAny, _ := task.Simple(r, func(_ *runner.Runner, err error) (int, error) {
		observedAny = err
		return -2, nil
	})
	d, err := task.InterceptOf(try.Descriptor(), hRuntime.Descriptor(), hAny.Descriptor())
	if err != nil {
		log.Fatalf("E5: InterceptOf: %v", err)
	}
	guarded := task.Of[int, int](d)

	v1, err1 := await(guarded.Run(5))
	log.Printf("E5: run(5)=%d err=%v observedRuntime=%v (want -1, observedRuntime=oops)", v1, err1, observedRuntime)

	v2, err2 := await(guarded.Run(7))
	log.Printf("E5: run(7)=%d err=%v observedAny=%v (want -2, observedAny=generic failure)", v2, err2, observedAny)

	v3, err3 := await(guarded.Run(6))
	log.Printf("E5: run(6)=%d err=%v (want 6, nil)", v3, err3)
}

// E6: cross-runner sequence(T_on_R1, T_on_R2, T_on_R1) where T_on_R2
// sleeps 500ms; a separate task submitted to R1 between invocations still
// runs within the sleep window, proving the sequence did not block R1.
func scenarioE6(pool *runner.Pool) {
	r1 := mustRunner(pool, runner.Sequential)
	r2 := mustRunner(pool, runner.Sequential)
	defer r1.Release()
	defer r2.Release()

	onR1, _ := task.Simple(r1, func(_ *runner.Runner, x int) (int, error) { return x + 1, nil })
	onR2, _ := task.Simple(r2, func(_ *runner.Runner, x int) (int, error) {
		time.Sleep(500 * time.Millisecond)
		return x + 10, nil
	})
	onR1Again, _ := task.Simple(r1, func(_ *runner.Runner, x int) (int, error) { return x + 100, nil })
	seq := task.Sequence3(onR1, onR2, onR1Again)

	var sideRan atomic.Bool
	side, _ := task.Mutator(r1, func(_ *runner.Runner, _ task.Void) error {
		sideRan.Store(true)
		return nil
	})

	fut := seq.Run(1)
	time.Sleep(100 * time.Millisecond) // land inside T_on_R2's sleep window
	side.Run(task.Void{})

	v, err := await(fut)
	if err != nil {
		log.Printf("E6: error: %v", err)
	}
	log.Printf("E6: result=%d (want 112) sideRanDuringSleep=%v (want true)", v, sideRan.Load())
}
