// Package pcore provides per-core pinned executors: goroutines locked to a
// single OS thread and affined to a single CPU, each draining a FIFO task
// queue. This is the Go analogue of a single-threaded cooperative
// executor pinned to a core.
package pcore

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// Executor runs submitted tasks, in submission order, on a single
// goroutine locked to one OS thread and affined to one CPU core.
type Executor struct {
	core  int
	tasks chan func()
	done  chan struct{}
}

// NewExecutor starts an executor pinned to the given CPU core. Spawn may
// be called immediately; the returned executor is already draining tasks.
func NewExecutor(core int) *Executor {
	e := &Executor{
		core:  core,
		tasks: make(chan func(), 4096),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	if err := pinToCore(e.core); err != nil {
		// Affinity is a placement hint, not a correctness requirement: a
		// failure here (e.g. running under a restrictive sandbox) should
		// not stop the benchmark from executing, just from being
		// reliably pinned.
		runtime.Gosched()
	}

	for task := range e.tasks {
		task()
	}
}

// Spawn enqueues a task to run on this executor's goroutine. Spawn never
// blocks on the task's completion; callers that need a result must
// synchronize themselves (channel, WaitGroup).
func (e *Executor) Spawn(f func()) {
	e.tasks <- f
}

// Close stops accepting new tasks and waits for the queue to drain before
// returning.
func (e *Executor) Close() {
	close(e.tasks)
	<-e.done
}

// Core returns the CPU core this executor is pinned to.
func (e *Executor) Core() int {
	return e.core
}

func pinToCore(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}

// OnlineCores returns the number of CPUs visible to this process's
// affinity mask, used to validate a requested core layout.
func OnlineCores() (int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, fmt.Errorf("pcore: SchedGetaffinity: %w", err)
	}
	return set.Count(), nil
}

// Pool is a fixed set of pinned executors, one per worker core.
type Pool struct {
	executors []*Executor
}

// NewPool starts one executor per core in cores.
func NewPool(cores []int) *Pool {
	p := &Pool{executors: make([]*Executor, len(cores))}
	for i, c := range cores {
		p.executors[i] = NewExecutor(c)
	}
	return p
}

// Executor returns the i-th executor in the pool (0-indexed across cores,
// not CPU core ids).
func (p *Pool) Executor(i int) *Executor {
	return p.executors[i]
}

// Len returns the number of executors in the pool.
func (p *Pool) Len() int {
	return len(p.executors)
}

// JoinAll closes every executor in the pool and waits for all queues to
// drain.
func (p *Pool) JoinAll() {
	var wg sync.WaitGroup
	wg.Add(len(p.executors))
	for _, e := range p.executors {
		e := e
		go func() {
			defer wg.Done()
			e.Close()
		}()
	}
	wg.Wait()
}

// VerifyLayout checks a requested worker core list against the invariants
// the reference implementation asserts before starting a run: at least one
// worker core, no duplicate cores, and every core id below the online CPU
// count.
func VerifyLayout(cores []int) error {
	if len(cores) == 0 {
		return fmt.Errorf("pcore: at least one worker core is required")
	}
	seen := make(map[int]bool, len(cores))
	for _, c := range cores {
		if seen[c] {
			return fmt.Errorf("pcore: duplicate worker core %d", c)
		}
		seen[c] = true
	}
	online, err := OnlineCores()
	if err != nil {
		return err
	}
	for _, c := range cores {
		if c < 0 || c >= online {
			return fmt.Errorf("pcore: core %d is not online (have %d cores)", c, online)
		}
	}
	return nil
}
