package core

import (
	"context"
	"fmt"
	"time"
)

// Handle is a cheap reference to a running Executor. Handles may be cloned
// freely and used concurrently from any number of goroutines; every clone
// routes work to the same underlying executor.
type Handle struct {
	exec *Executor
}

// Clone returns an independent handle to the same executor.
func (h *Handle) Clone() *Handle {
	return &Handle{exec: h.exec}
}

// WorkerCount returns the worker count of the underlying executor.
func (h *Handle) WorkerCount() int {
	return h.exec.WorkerCount()
}

// Stats returns a snapshot of the underlying executor's runtime state.
func (h *Handle) Stats() ExecutorStats {
	return h.exec.Stats()
}

// Spawn submits a fire-and-forget fiber. It returns immediately; the fiber
// executes concurrently with the caller, scheduled among all other fibers on
// the executor. A non-nil error from the task is logged and counted, nothing
// more.
func (h *Handle) Spawn(task Task) {
	e := h.exec
	e.post(func(ctx context.Context) {
		if err := task(ctx); err != nil {
			e.logger.Error("fiber failed", F("error", err))
		}
	})
}

// SpawnAfter submits a fire-and-forget fiber that becomes ready to run once
// the given delay has elapsed.
func (h *Handle) SpawnAfter(task Task, delay time.Duration) {
	e := h.exec
	e.delay.Add(func(ctx context.Context) {
		if err := task(ctx); err != nil {
			e.logger.Error("fiber failed", F("error", err))
		}
	}, delay)
}

// SpawnMonitor submits a fiber and returns a Monitor observing its terminal
// outcome. The fiber executes independently of whether the Monitor is ever
// polled or waited on.
//
// This is a package function rather than a Handle method because Go methods
// cannot introduce type parameters.
func SpawnMonitor[T any](h *Handle, task TaskWithResult[T]) *Monitor[T] {
	e := h.exec
	m := newMonitor[T](e.aborted)
	e.post(func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				m.complete(zero, fmt.Errorf("fibers: fiber panicked: %v", r))
				panic(r) // worker's panic handler still sees it
			}
		}()
		v, err := task(ctx)
		m.complete(v, err)
	})
	return m
}
