package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/sile/fibers-global/core"
)

// SnapshotProvider provides current executor stats snapshots.
// Both *core.Executor and *core.Handle satisfy it.
type SnapshotProvider interface {
	Stats() core.ExecutorStats
}

// SnapshotPoller periodically exports executor Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	executorsMu sync.RWMutex
	executors   map[string]SnapshotProvider

	queued  *prom.GaugeVec
	active  *prom.GaugeVec
	delayed *prom.GaugeVec
	workers *prom.GaugeVec
	running *prom.GaugeVec

	stateMu sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "fibers",
		Name:      "executor_queued",
		Help:      "Queued fibers per executor.",
	}, []string{"executor"})
	active := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "fibers",
		Name:      "executor_active",
		Help:      "Actively executing fibers per executor.",
	}, []string{"executor"})
	delayed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "fibers",
		Name:      "executor_delayed",
		Help:      "Delayed fibers per executor.",
	}, []string{"executor"})
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "fibers",
		Name:      "executor_workers",
		Help:      "Worker count per executor.",
	}, []string{"executor"})
	running := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "fibers",
		Name:      "executor_running",
		Help:      "Executor run loop state (1=running, 0=not running).",
	}, []string{"executor"})

	var err error
	if queued, err = registerCollector(reg, queued); err != nil {
		return nil, err
	}
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}
	if delayed, err = registerCollector(reg, delayed); err != nil {
		return nil, err
	}
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if running, err = registerCollector(reg, running); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:  interval,
		executors: make(map[string]SnapshotProvider),
		queued:    queued,
		active:    active,
		delayed:   delayed,
		workers:   workers,
		running:   running,
	}, nil
}

// AddExecutor adds or replaces an executor snapshot provider by name.
func (p *SnapshotPoller) AddExecutor(name string, provider SnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "executor")
	p.executorsMu.Lock()
	p.executors[name] = provider
	p.executorsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.started {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	p.stateMu.Unlock()

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.started {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.started = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Export once immediately so freshly added executors show up without
	// waiting a full interval.
	p.pollOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

func (p *SnapshotPoller) pollOnce() {
	p.executorsMu.RLock()
	defer p.executorsMu.RUnlock()

	for name, provider := range p.executors {
		stats := provider.Stats()
		p.queued.WithLabelValues(name).Set(float64(stats.Queued))
		p.active.WithLabelValues(name).Set(float64(stats.Active))
		p.delayed.WithLabelValues(name).Set(float64(stats.Delayed))
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.running.WithLabelValues(name).Set(1)
		} else {
			p.running.WithLabelValues(name).Set(0)
		}
	}
}
