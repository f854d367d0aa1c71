package core

import (
	"context"
	"testing"
)

func TestFiberQueue_FIFOOrder(t *testing.T) {
	q := newFiberQueue()

	var order []int
	for i := 0; i < 5; i++ {
		n := i
		q.Push(func(ctx context.Context) {
			order = append(order, n)
		})
	}

	if q.Len() != 5 {
		t.Fatalf("expected 5 queued fibers, got %d", q.Len())
	}

	for {
		f, ok := q.Pop()
		if !ok {
			break
		}
		f(context.Background())
	}

	for i, n := range order {
		if n != i {
			t.Errorf("expected fiber %d at position %d, got %d", i, i, n)
		}
	}
}

func TestFiberQueue_PopEmpty(t *testing.T) {
	q := newFiberQueue()

	if f, ok := q.Pop(); ok || f != nil {
		t.Error("Pop on empty queue should return (nil, false)")
	}
	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
}

func TestFiberQueue_Clear(t *testing.T) {
	q := newFiberQueue()
	for i := 0; i < 10; i++ {
		q.Push(func(ctx context.Context) {})
	}

	q.Clear()

	if q.Len() != 0 {
		t.Errorf("expected empty queue after Clear, got %d", q.Len())
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop after Clear should fail")
	}
}

func TestFiberQueue_CompactionPreservesOrder(t *testing.T) {
	q := newFiberQueue()

	const total = 256
	var order []int
	for i := 0; i < total; i++ {
		n := i
		q.Push(func(ctx context.Context) {
			order = append(order, n)
		})
	}

	// Pop most of them so the live window shrinks far below capacity and
	// compaction kicks in.
	for i := 0; i < total-8; i++ {
		f, ok := q.Pop()
		if !ok {
			t.Fatalf("unexpected empty queue at pop %d", i)
		}
		f(context.Background())
	}

	for {
		f, ok := q.Pop()
		if !ok {
			break
		}
		f(context.Background())
	}

	if len(order) != total {
		t.Fatalf("expected %d executed fibers, got %d", total, len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatalf("order broken at position %d: got %d", i, n)
		}
	}
}
