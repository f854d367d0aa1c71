package core

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// delayedFiber is a fiber scheduled for the future
type delayedFiber struct {
	runAt time.Time
	f     fiber
	index int // for heap interface
}

// delayedFiberHeap implements heap.Interface
type delayedFiberHeap []*delayedFiber

func (h delayedFiberHeap) Len() int           { return len(h) }
func (h delayedFiberHeap) Less(i, j int) bool { return h[i].runAt.Before(h[j].runAt) }
func (h delayedFiberHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedFiberHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayedFiber)
	item.index = n
	*h = append(*h, item)
}

func (h *delayedFiberHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayedFiberHeap) Peek() *delayedFiber {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// delayManager holds fibers spawned with a delay and posts them to the
// executor's ready queue once their time arrives. One timer goroutine serves
// all delayed fibers.
type delayManager struct {
	exec   *Executor
	pq     delayedFiberHeap
	mu     sync.Mutex
	wakeup chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func newDelayManager(exec *Executor) *delayManager {
	ctx, cancel := context.WithCancel(context.Background())
	dm := &delayManager{
		exec:   exec,
		pq:     make(delayedFiberHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	heap.Init(&dm.pq)
	go dm.loop()
	return dm
}

func (dm *delayManager) Add(f fiber, delay time.Duration) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := &delayedFiber{
		runAt: time.Now().Add(delay),
		f:     f,
	}
	heap.Push(&dm.pq, item)

	// Only wake the loop when the new fiber became the next deadline
	if item.index == 0 {
		select {
		case dm.wakeup <- struct{}{}:
		default:
		}
	}
}

func (dm *delayManager) TaskCount() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.pq)
}

func (dm *delayManager) loop() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		var nextRun time.Duration

		dm.mu.Lock()
		if item := dm.pq.Peek(); item == nil {
			nextRun = 1000 * time.Hour
		} else {
			now := time.Now()
			if !item.runAt.After(now) {
				heap.Pop(&dm.pq)
				dm.mu.Unlock()

				dm.exec.post(item.f)
				continue
			}
			nextRun = item.runAt.Sub(now)
		}
		dm.mu.Unlock()

		timer.Reset(nextRun)

		select {
		case <-timer.C:
		case <-dm.wakeup:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-dm.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop terminates the timer goroutine and drops pending delayed fibers.
func (dm *delayManager) Stop() {
	dm.cancel()
	dm.mu.Lock()
	dm.pq = make(delayedFiberHeap, 0)
	dm.mu.Unlock()
}
