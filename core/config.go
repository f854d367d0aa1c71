package core

import (
	"context"
	"fmt"
)

// =============================================================================
// PanicHandler: Interface for handling fiber panics
// =============================================================================

// PanicHandler is called when a fiber panics during execution.
// Implementations must be thread-safe as workers may call them concurrently.
type PanicHandler interface {
	// HandlePanic is called with the panicking fiber's context, the ID of the
	// worker it ran on, the recovered panic value, and the captured stack.
	HandlePanic(ctx context.Context, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Worker %d] Fiber panic: %v\nStack trace:\n%s", workerID, panicInfo, stackTrace)
}

// =============================================================================
// ExecutorConfig: Configuration for Executor
// =============================================================================

// ExecutorConfig holds optional collaborators for an Executor.
// Any nil field falls back to its default implementation.
type ExecutorConfig struct {
	// Logger receives executor lifecycle and fiber failure logs.
	// Defaults to DefaultLogger.
	Logger Logger

	// PanicHandler is called when a fiber panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record fiber execution metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultExecutorConfig returns a config with default collaborators.
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		Logger:       NewDefaultLogger(),
		PanicHandler: &DefaultPanicHandler{},
		Metrics:      &NilMetrics{},
	}
}
