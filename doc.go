// Package fibersglobal provides a process-global fiber executor that lets any
// part of a program spawn and execute lightweight tasks without constructing
// or threading through an executor instance.
//
// This is useful for briefly writing test or example code: the executor is
// created lazily on first use, shared by the whole process, and driven by a
// detached background goroutine for the remainder of the process lifetime.
//
// # Quick Start
//
// Optionally request a worker count before first use, then spawn:
//
//	fibersglobal.SetThreadCount(4) // must happen before the first spawn
//
//	fibersglobal.Spawn(func(ctx context.Context) error {
//		// runs concurrently on the global executor
//		return nil
//	})
//
// Synchronous code can submit a computation and wait for its result:
//
//	sum, err := fibersglobal.Execute(func(ctx context.Context) (int, error) {
//		return 1 + 2, nil
//	})
//
// # Key Concepts
//
// Fiber: a cooperatively scheduled unit of work multiplexed onto a fixed pool
// of worker goroutines, distinct from a dedicated OS thread.
//
// Monitor: a handle observing the terminal outcome of one spawned fiber.
// SpawnMonitor returns one; Execute wraps spawn-and-wait into a single call.
//
// Handle: a cheap, cloneable reference to the global executor, usable from
// any goroutine. All clones route work to the same executor.
//
// # Configuration
//
// SetThreadCount may be called any number of times before first use; the last
// successful call wins. Once the executor has started, the worker count is
// frozen and further calls return false. Without any call, the count defaults
// to runtime.NumCPU().
//
// # Example
//
//	ch0 := make(chan int, 1)
//	ch1 := make(chan int, 1)
//
//	// Spawn two auxiliary fibers.
//	fibersglobal.Spawn(func(ctx context.Context) error {
//		ch0 <- 1
//		return nil
//	})
//	fibersglobal.Spawn(func(ctx context.Context) error {
//		ch1 <- 2
//		return nil
//	})
//
//	// Execute a computation that depends on the fibers above.
//	sum, _ := fibersglobal.Execute(func(ctx context.Context) (int, error) {
//		return <-ch0 + <-ch1, nil
//	})
//	// sum == 3
//
// Cancellation and clean shutdown of the global executor are out of scope:
// once spawned, a fiber runs to completion, and the driver goroutine is never
// joined. Programs needing lifecycle control should construct a core.Executor
// of their own.
package fibersglobal
