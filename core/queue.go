package core

import "sync"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// fiberQueue is the ready queue the workers pull from. FIFO order, but note
// that with multiple workers no cross-fiber ordering is observable anyway.
type fiberQueue struct {
	mu     sync.Mutex
	fibers []fiber
}

func newFiberQueue() *fiberQueue {
	return &fiberQueue{
		fibers: make([]fiber, 0, defaultQueueCap),
	}
}

func (q *fiberQueue) Push(f fiber) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fibers = append(q.fibers, f)
}

func (q *fiberQueue) Pop() (fiber, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.fibers) == 0 {
		return nil, false
	}

	f := q.fibers[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.fibers[0] = nil
	q.fibers = q.fibers[1:]
	q.maybeCompactLocked()

	return f, true
}

func (q *fiberQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fibers)
}

func (q *fiberQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear removes all fibers from the queue and releases references
func (q *fiberQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fibers = make([]fiber, 0, defaultQueueCap)
}

// maybeCompactLocked reallocates the backing array once the live window has
// shrunk well below capacity, so a long-lived executor does not pin the
// high-water-mark allocation forever.
func (q *fiberQueue) maybeCompactLocked() {
	n := len(q.fibers)
	c := cap(q.fibers)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.fibers = make([]fiber, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]fiber, n, newCap)
	copy(newSlice, q.fibers)
	q.fibers = newSlice
}
