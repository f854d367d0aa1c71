package fibersglobal

import "github.com/sile/fibers-global/core"

// Re-export commonly used types from the core package for convenience.
// This allows users to import only the fibersglobal package for most use cases.

// Task is a fire-and-forget fiber body.
type Task = core.Task

// TaskWithResult is a fiber body whose outcome is observed through a Monitor.
type TaskWithResult[T any] = core.TaskWithResult[T]

// Monitor observes the terminal outcome of one spawned fiber.
type Monitor[T any] = core.Monitor[T]

// ExecutorHandle is a cheap, cloneable reference to a running executor.
type ExecutorHandle = core.Handle

// ExecutorStats is a snapshot of an executor's runtime state.
type ExecutorStats = core.ExecutorStats

// ErrExecutorAborted reports that an executor's run loop terminated before a
// monitored fiber completed.
var ErrExecutorAborted = core.ErrExecutorAborted
