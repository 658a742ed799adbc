// Package monitor samples Go runtime health while the watch loop is
// running and exports it through the process metrics registry.
package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const defaultSampleInterval = 15 * time.Second

// RuntimeStats is one sample of the process runtime state.
type RuntimeStats struct {
	Goroutines  int
	HeapAlloc   uint64
	HeapObjects uint64
	GCPauseMs   float64
	Uptime      time.Duration
}

// RuntimeMonitor periodically samples runtime statistics and keeps the
// runtime gauges current.
type RuntimeMonitor struct {
	logger   *zap.Logger
	interval time.Duration
	started  time.Time

	goroutines  prometheus.Gauge
	heapAlloc   prometheus.Gauge
	heapObjects prometheus.Gauge
	gcPause     prometheus.Gauge
	uptime      prometheus.Gauge

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a monitor registering its gauges with reg. A nil reg
// selects the process default registerer.
func New(logger *zap.Logger, interval time.Duration, reg prometheus.Registerer) *RuntimeMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &RuntimeMonitor{
		logger:   logger,
		interval: interval,
		started:  time.Now(),
		goroutines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbscan",
			Subsystem: "runtime",
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		}),
		heapAlloc: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbscan",
			Subsystem: "runtime",
			Name:      "heap_alloc_bytes",
			Help:      "Bytes of allocated heap objects",
		}),
		heapObjects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbscan",
			Subsystem: "runtime",
			Name:      "heap_objects",
			Help:      "Number of allocated heap objects",
		}),
		gcPause: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbscan",
			Subsystem: "runtime",
			Name:      "gc_pause_ms",
			Help:      "Duration of the most recent GC pause",
		}),
		uptime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbscan",
			Subsystem: "runtime",
			Name:      "uptime_seconds",
			Help:      "Seconds since the monitor started",
		}),
	}
}

// Start launches the sampling loop. It returns immediately; sampling
// stops when ctx is cancelled or Close is called.
func (m *RuntimeMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.sample()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sample()
			}
		}
	}()
}

func (m *RuntimeMonitor) sample() {
	stats := m.Stats()
	m.goroutines.Set(float64(stats.Goroutines))
	m.heapAlloc.Set(float64(stats.HeapAlloc))
	m.heapObjects.Set(float64(stats.HeapObjects))
	m.gcPause.Set(stats.GCPauseMs)
	m.uptime.Set(stats.Uptime.Seconds())

	m.logger.Debug("Runtime sampled",
		zap.Int("goroutines", stats.Goroutines),
		zap.Uint64("heap_alloc", stats.HeapAlloc),
	)
}

// Stats collects one runtime sample.
func (m *RuntimeMonitor) Stats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var pauseMs float64
	if mem.NumGC > 0 {
		pauseMs = float64(mem.PauseNs[(mem.NumGC+255)%256]) / float64(time.Millisecond)
	}

	return RuntimeStats{
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   mem.HeapAlloc,
		HeapObjects: mem.HeapObjects,
		GCPauseMs:   pauseMs,
		Uptime:      time.Since(m.started),
	}
}

// Close stops the sampling loop and waits for it to exit.
func (m *RuntimeMonitor) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
