package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const (
	executorIdle int32 = iota
	executorRunning
	executorStopped
)

// Executor multiplexes an arbitrary number of spawned fibers onto a fixed
// pool of worker goroutines. Fibers run in parallel across workers; within a
// worker they run one after another, pulled from a shared FIFO ready queue.
//
// The executor does nothing until its driver calls Run. Run blocks for the
// life of the executor; the intended usage is a dedicated goroutine that runs
// the loop until the process exits (or, for private executors in tests, until
// the driver context is cancelled).
type Executor struct {
	workers int
	queue   *fiberQueue
	signal  chan struct{}
	delay   *delayManager

	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics

	metricQueued int32 // Waiting in ready queue
	metricActive int32 // Executing in a worker

	state   int32         // atomic: executorIdle -> executorRunning -> executorStopped
	aborted chan struct{} // closed when the run loop has terminated
}

// NewExecutor creates an executor with the given number of workers.
// The worker count must be positive.
func NewExecutor(workerCount int) (*Executor, error) {
	return NewExecutorWithConfig(workerCount, DefaultExecutorConfig())
}

// NewExecutorWithConfig creates an executor with custom collaborators.
func NewExecutorWithConfig(workerCount int, config *ExecutorConfig) (*Executor, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("fibers: worker count must be positive, got %d", workerCount)
	}

	e := &Executor{
		workers: workerCount,
		queue:   newFiberQueue(),
		signal:  make(chan struct{}, workerCount*2),
		aborted: make(chan struct{}),
	}

	if config != nil {
		e.logger = config.Logger
		e.panicHandler = config.PanicHandler
		e.metrics = config.Metrics
	}

	// Use defaults if not provided
	if e.logger == nil {
		e.logger = NewDefaultLogger()
	}
	if e.panicHandler == nil {
		e.panicHandler = &DefaultPanicHandler{}
	}
	if e.metrics == nil {
		e.metrics = &NilMetrics{}
	}

	e.delay = newDelayManager(e)
	return e, nil
}

// Run is the executor's run loop. It starts the workers and blocks until ctx
// is cancelled and every worker has returned, then marks every outstanding
// Monitor as aborted. A second call is a no-op.
//
// The executor is usable (fibers may be spawned and are queued) before Run is
// called, but nothing executes until it is.
func (e *Executor) Run(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&e.state, executorIdle, executorRunning) {
		e.logger.Warn("run loop already started, ignoring")
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			e.workerLoop(id, ctx)
		}(i)
	}
	wg.Wait()

	atomic.StoreInt32(&e.state, executorStopped)
	e.delay.Stop()
	// Release references to fibers that will never run
	e.queue.Clear()
	atomic.StoreInt32(&e.metricQueued, 0)
	close(e.aborted)
	e.logger.Info("run loop terminated", F("workers", e.workers))
}

// IsRunning returns whether the run loop is currently active.
func (e *Executor) IsRunning() bool {
	return atomic.LoadInt32(&e.state) == executorRunning
}

// Handle returns a cheap, cloneable reference to this executor.
func (e *Executor) Handle() *Handle {
	return &Handle{exec: e}
}

// WorkerCount returns the number of workers.
func (e *Executor) WorkerCount() int {
	return e.workers
}

// Stats returns a snapshot of the executor's runtime state.
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Workers: e.workers,
		Queued:  int(atomic.LoadInt32(&e.metricQueued)),
		Active:  int(atomic.LoadInt32(&e.metricActive)),
		Delayed: e.delay.TaskCount(),
		Running: e.IsRunning(),
	}
}

// post enqueues a wrapped fiber and nudges an idle worker.
func (e *Executor) post(f fiber) {
	if atomic.LoadInt32(&e.state) == executorStopped {
		e.logger.Warn("fiber rejected", F("reason", "run loop terminated"))
		e.metrics.RecordFiberRejected("run loop terminated")
		return
	}

	e.queue.Push(f)
	depth := atomic.AddInt32(&e.metricQueued, 1)
	e.metrics.RecordQueueDepth(int(depth))

	select {
	case e.signal <- struct{}{}:
	default:
		// Signal channel full; a worker is already being woken.
	}
}

// getWork blocks until a fiber is available or the executor is stopping.
func (e *Executor) getWork(stopCh <-chan struct{}) (fiber, bool) {
	for {
		if f, ok := e.queue.Pop(); ok {
			atomic.AddInt32(&e.metricQueued, -1)
			return f, true
		}

		select {
		case <-e.signal:
			continue
		case <-stopCh:
			return nil, false
		}
	}
}

// workerLoop is the main loop for each worker
func (e *Executor) workerLoop(id int, ctx context.Context) {
	stopCh := ctx.Done()

	for {
		// Re-check before pulling work so a stopping executor never starts
		// another queued fiber; those fibers are reported as aborted instead.
		select {
		case <-stopCh:
			return
		default:
		}

		f, ok := e.getWork(stopCh)
		if !ok {
			return
		}

		atomic.AddInt32(&e.metricActive, 1)
		start := time.Now()

		// Execute fiber and contain panics
		func() {
			defer func() {
				atomic.AddInt32(&e.metricActive, -1)
				e.metrics.RecordFiberDuration(time.Since(start))
				if r := recover(); r != nil {
					e.metrics.RecordFiberPanic(r)
					e.panicHandler.HandlePanic(ctx, id, r, debug.Stack())
				}
			}()
			f(ctx)
		}()
	}
}
