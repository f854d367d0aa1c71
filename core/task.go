package core

import "context"

// Task is the unit of work spawned as a fiber (Closure).
// The returned error carries no payload of interest to the spawner;
// the executor logs it and moves on.
type Task func(ctx context.Context) error

// TaskWithResult is a task whose terminal outcome (value or error) is
// observed through a Monitor.
type TaskWithResult[T any] func(ctx context.Context) (T, error)

// fiber is a task after wrapping: result delivery and error routing are
// already bound in, so workers just call it.
type fiber func(ctx context.Context)
