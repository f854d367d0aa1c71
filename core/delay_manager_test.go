package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawnAfter_ExecutesAfterDelay(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	start := time.Now()
	done := make(chan struct{})
	e.Handle().SpawnAfter(func(ctx context.Context) error {
		close(done)
		return nil
	}, 50*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed fiber never ran")
	}

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("fiber ran after %v, before the 50ms delay elapsed", elapsed)
	}
}

func TestSpawnAfter_EarlierDeadlineRunsFirst(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	var firstDone int32
	late := make(chan struct{})

	h := e.Handle()
	// Registered first but due later.
	h.SpawnAfter(func(ctx context.Context) error {
		if atomic.LoadInt32(&firstDone) == 0 {
			t.Error("later deadline ran before the earlier one")
		}
		close(late)
		return nil
	}, 150*time.Millisecond)
	h.SpawnAfter(func(ctx context.Context) error {
		atomic.StoreInt32(&firstDone, 1)
		return nil
	}, 20*time.Millisecond)

	select {
	case <-late:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed fibers never ran")
	}
}

func TestSpawnAfter_CountsAsDelayed(t *testing.T) {
	e, err := NewExecutorWithConfig(1, &ExecutorConfig{Logger: NewNoOpLogger()})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	stop := startExecutor(t, e)
	defer stop()

	e.Handle().SpawnAfter(func(ctx context.Context) error { return nil }, time.Hour)

	if got := e.Stats().Delayed; got != 1 {
		t.Errorf("expected 1 delayed fiber, got %d", got)
	}
}
