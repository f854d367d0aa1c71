package core

import "errors"

// ErrExecutorAborted reports that the executor's run loop terminated before
// the monitored fiber reached a terminal state. This is distinct from the
// fiber's own error: once the run loop is gone, no fiber spawned on that
// executor will ever complete.
var ErrExecutorAborted = errors.New("fibers: executor aborted")

// Monitor observes the terminal outcome of one spawned fiber.
//
// A Monitor is pending until the fiber finishes with a value or an error, or
// until the owning executor's run loop terminates first, in which case the
// outcome is ErrExecutorAborted. Once terminal, the observed outcome never
// changes. The spawned fiber executes whether or not the Monitor is ever
// observed.
type Monitor[T any] struct {
	done    chan struct{}
	aborted <-chan struct{}
	value   T
	err     error
}

func newMonitor[T any](aborted <-chan struct{}) *Monitor[T] {
	return &Monitor[T]{
		done:    make(chan struct{}),
		aborted: aborted,
	}
}

// complete is called exactly once, by the worker that ran the fiber.
func (m *Monitor[T]) complete(value T, err error) {
	m.value = value
	m.err = err
	close(m.done)
}

// Poll reports the fiber's outcome without blocking. ok is false while the
// fiber is still pending. When ok is true, err is nil for success, the
// fiber's own error for failure, or ErrExecutorAborted if the run loop died
// before the fiber completed.
func (m *Monitor[T]) Poll() (value T, ok bool, err error) {
	select {
	case <-m.done:
		return m.value, true, m.err
	default:
	}
	select {
	case <-m.aborted:
		var zero T
		return zero, true, ErrExecutorAborted
	default:
	}
	var zero T
	return zero, false, nil
}

// Wait blocks the calling goroutine until the fiber reaches a terminal state
// and returns its outcome. The caller is parked on a channel, not spinning;
// it is safe to call Wait from any goroutine that is not itself a fiber of
// the same executor with all workers busy.
func (m *Monitor[T]) Wait() (T, error) {
	select {
	case <-m.done:
		return m.value, m.err
	case <-m.aborted:
		// A fiber that did complete closed done strictly before the run
		// loop exited; prefer the real outcome over the abort signal.
		select {
		case <-m.done:
			return m.value, m.err
		default:
		}
		var zero T
		return zero, ErrExecutorAborted
	}
}
