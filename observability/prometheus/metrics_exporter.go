package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/sile/fibers-global/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	fiberDurationSeconds prom.Histogram
	fiberPanicTotal      prom.Counter
	fiberRejectedTotal   *prom.CounterVec
	queueDepth           prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "fibers"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	duration := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "fiber_duration_seconds",
		Help:      "Fiber execution duration in seconds.",
		Buckets:   buckets,
	})
	panics := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "fiber_panic_total",
		Help:      "Total number of fiber panics.",
	})
	rejected := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "fiber_rejected_total",
		Help:      "Total number of rejected spawns.",
	}, []string{"reason"})
	depth := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Ready-queue depth observed at spawn time.",
	})

	var err error
	if duration, err = registerCollector(reg, duration); err != nil {
		return nil, err
	}
	if panics, err = registerCollector(reg, panics); err != nil {
		return nil, err
	}
	if rejected, err = registerCollector(reg, rejected); err != nil {
		return nil, err
	}
	if depth, err = registerCollector(reg, depth); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		fiberDurationSeconds: duration,
		fiberPanicTotal:      panics,
		fiberRejectedTotal:   rejected,
		queueDepth:           depth,
	}, nil
}

// RecordFiberDuration records fiber execution duration.
func (m *MetricsExporter) RecordFiberDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.fiberDurationSeconds.Observe(duration.Seconds())
}

// RecordFiberPanic records fiber panic events.
func (m *MetricsExporter) RecordFiberPanic(panicInfo any) {
	if m == nil {
		return
	}
	m.fiberPanicTotal.Inc()
}

// RecordFiberRejected records spawn rejection events.
func (m *MetricsExporter) RecordFiberRejected(reason string) {
	if m == nil {
		return
	}
	m.fiberRejectedTotal.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

// RecordQueueDepth records ready-queue depth.
func (m *MetricsExporter) RecordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
