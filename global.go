package fibersglobal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sile/fibers-global/core"
)

// Thread-count gate sentinels. The cell holds threadCountUnset until the
// first SetThreadCount, a requested count until first use, and
// threadCountLocked forever after the global executor has consumed it.
const (
	threadCountUnset  int64 = 0
	threadCountLocked int64 = math.MaxInt64
)

// globalExecutor bundles the one-shot thread-count gate with the lazily
// constructed executor singleton. The package exposes only the accessor
// functions below, backed by the single process-wide instance; the struct
// exists so its freeze and construction races stay testable against fresh
// instances.
type globalExecutor struct {
	threadCount atomic.Int64
	once        sync.Once
	handle      *core.Handle
}

var global globalExecutor

// setThreadCount attempts to replace the current cell value, retrying
// against concurrent writers. Each caller learns the outcome of its own
// attempt: true if its value landed, false if the cell was already frozen.
func (g *globalExecutor) setThreadCount(n int) bool {
	if n <= 0 {
		panic(fmt.Sprintf("fibersglobal: thread count must be positive, got %d", n))
	}
	if int64(n) == threadCountLocked {
		panic("fibersglobal: thread count out of range")
	}

	for {
		current := g.threadCount.Load()
		if current == threadCountLocked {
			return false
		}
		if g.threadCount.CompareAndSwap(current, int64(n)) {
			return true
		}
	}
}

// consumeAndLock atomically reads the requested count and freezes the cell
// in one swap. Called exactly once, by the winner of the construction race.
func (g *globalExecutor) consumeAndLock() int {
	n := g.threadCount.Swap(threadCountLocked)
	if n == threadCountUnset {
		return runtime.NumCPU()
	}
	return int(n)
}

// executorHandle constructs the executor on first call. Concurrent first-time
// callers block until the winner finishes; everyone then shares the one
// handle. The driver goroutine is detached and lives for the rest of the
// process; clean shutdown of the global executor is explicitly out of scope.
func (g *globalExecutor) executorHandle() *core.Handle {
	g.once.Do(func() {
		exec, err := core.NewExecutor(g.consumeAndLock())
		if err != nil {
			panic(fmt.Sprintf("fibersglobal: cannot create the global executor: %v", err))
		}
		g.handle = exec.Handle()
		go exec.Run(context.Background())
	})
	return g.handle
}

// SetThreadCount requests the number of worker goroutines used by the global
// executor. It returns true if the request took effect, or false if the
// global executor had already started, in which case the request is ignored.
// Later successful calls overwrite earlier ones; the value in effect at first
// use wins. If no call ever succeeds, the worker count defaults to
// runtime.NumCPU().
//
// SetThreadCount panics if n is not a positive integer below the reserved
// lock sentinel; that is a caller programming error, not a race outcome.
func SetThreadCount(n int) bool {
	return global.setThreadCount(n)
}

// Handle returns a cloneable handle to the global executor, constructing the
// executor and starting its driver goroutine on first call.
func Handle() *core.Handle {
	return global.executorHandle().Clone()
}

// Spawn submits a fire-and-forget fiber to the global executor.
func Spawn(task Task) {
	global.executorHandle().Spawn(task)
}

// SpawnAfter submits a fire-and-forget fiber to the global executor that
// becomes runnable once the delay has elapsed.
func SpawnAfter(task Task, delay time.Duration) {
	global.executorHandle().SpawnAfter(task, delay)
}

// SpawnMonitor submits a fiber to the global executor and returns a Monitor
// observing its execution result.
func SpawnMonitor[T any](task TaskWithResult[T]) *Monitor[T] {
	return core.SpawnMonitor(global.executorHandle(), task)
}

// Execute submits the task to the global executor and blocks the calling
// goroutine until it reaches a terminal state. The caller must not itself be
// a fiber of the global executor.
//
// A failing task's error is returned verbatim. If the global executor's run
// loop has terminated, Execute panics: the process-wide scheduling facility
// is permanently gone and no caller-level recovery is possible.
func Execute[T any](task TaskWithResult[T]) (T, error) {
	v, err := SpawnMonitor(task).Wait()
	if errors.Is(err, core.ErrExecutorAborted) {
		panic("fibersglobal: the global executor aborted")
	}
	return v, err
}
