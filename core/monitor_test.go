package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpawnMonitor_Ready(t *testing.T) {
	e, err := NewExecutorWithConfig(2, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	m := SpawnMonitor(e.Handle(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := m.Wait()
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestSpawnMonitor_Failed(t *testing.T) {
	e, err := NewExecutorWithConfig(2, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	errBoom := errors.New("boom")
	m := SpawnMonitor(e.Handle(), func(ctx context.Context) (int, error) {
		return 0, errBoom
	})

	_, err = m.Wait()
	if !errors.Is(err, errBoom) {
		t.Errorf("expected the fiber's own error, got %v", err)
	}
	if errors.Is(err, ErrExecutorAborted) {
		t.Error("a failed fiber must not be reported as aborted")
	}
}

func TestMonitor_PollTransitions(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	gate := make(chan struct{})
	m := SpawnMonitor(e.Handle(), func(ctx context.Context) (string, error) {
		<-gate
		return "done", nil
	})

	if _, ok, _ := m.Poll(); ok {
		t.Error("monitor should be pending while the fiber is blocked")
	}

	close(gate)

	deadline := time.After(time.Second)
	for {
		v, ok, pollErr := m.Poll()
		if ok {
			if pollErr != nil {
				t.Fatalf("unexpected error: %v", pollErr)
			}
			if v != "done" {
				t.Errorf("expected 'done', got %q", v)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("monitor never became ready")
		case <-time.After(time.Millisecond):
		}
	}

	// Terminal state must not change on repeated observation.
	for i := 0; i < 3; i++ {
		v, ok, pollErr := m.Poll()
		if !ok || pollErr != nil || v != "done" {
			t.Fatalf("terminal state changed on repeated poll: %q %v %v", v, ok, pollErr)
		}
	}
}

func TestMonitor_PanickedFiberFails(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{
		Logger:       NewNoOpLogger(),
		PanicHandler: &recordingPanicHandler{got: make(chan any, 1)},
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	m := SpawnMonitor(e.Handle(), func(ctx context.Context) (int, error) {
		panic("kaboom")
	})

	_, err = m.Wait()
	if err == nil {
		t.Fatal("a panicked fiber should fail its monitor")
	}
	if errors.Is(err, ErrExecutorAborted) {
		t.Error("a panicked fiber must not be reported as aborted")
	}
}

func TestMonitor_AbortedWhenRunLoopDies(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		e.Run(ctx)
	}()

	h := e.Handle()

	// Occupy the single worker so the second fiber stays queued.
	gate := make(chan struct{})
	started := make(chan struct{})
	first := SpawnMonitor(h, func(ctx context.Context) (int, error) {
		close(started)
		<-gate
		return 1, nil
	})
	<-started

	queued := SpawnMonitor(h, func(ctx context.Context) (int, error) {
		return 2, nil
	})

	// Kill the run loop. The worker finishes the first fiber and exits
	// without ever popping the queued one.
	cancel()
	close(gate)
	<-runDone

	if v, err := first.Wait(); err != nil || v != 1 {
		t.Errorf("completed fiber should report its real outcome, got (%d, %v)", v, err)
	}

	_, err = queued.Wait()
	if !errors.Is(err, ErrExecutorAborted) {
		t.Errorf("queued fiber should be aborted after the run loop died, got %v", err)
	}

	// Poll agrees with Wait.
	_, ok, pollErr := queued.Poll()
	if !ok || !errors.Is(pollErr, ErrExecutorAborted) {
		t.Errorf("Poll should report aborted, got ok=%v err=%v", ok, pollErr)
	}
}
