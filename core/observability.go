package core

import "time"

// Metrics defines the interface for collecting fiber execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting fiber execution
// performance, and thread-safe as workers call them concurrently.
type Metrics interface {
	// RecordFiberDuration records how long a fiber took to execute.
	RecordFiberDuration(duration time.Duration)

	// RecordFiberPanic records that a fiber panicked during execution.
	RecordFiberPanic(panicInfo any)

	// RecordFiberRejected records that a spawn was rejected (e.g. after the
	// run loop terminated).
	RecordFiberRejected(reason string)

	// RecordQueueDepth records the ready-queue depth at spawn time.
	RecordQueueDepth(depth int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordFiberDuration is a no-op.
func (m *NilMetrics) RecordFiberDuration(duration time.Duration) {}

// RecordFiberPanic is a no-op.
func (m *NilMetrics) RecordFiberPanic(panicInfo any) {}

// RecordFiberRejected is a no-op.
func (m *NilMetrics) RecordFiberRejected(reason string) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(depth int) {}

// ExecutorStats represents runtime observability state for an executor.
type ExecutorStats struct {
	Workers int
	Queued  int
	Active  int
	Delayed int
	Running bool
}
