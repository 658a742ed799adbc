package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRuntimeMonitorSamples(t *testing.T) {
	reg := prometheus.NewRegistry()
	mon := New(zap.NewNop(), 10*time.Millisecond, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	mon.Close()

	assert.Positive(t, testutil.ToFloat64(mon.goroutines))
	assert.Positive(t, testutil.ToFloat64(mon.heapAlloc))
	assert.GreaterOrEqual(t, testutil.ToFloat64(mon.uptime), 0.0)
}

func TestRuntimeStats(t *testing.T) {
	mon := New(nil, 0, prometheus.NewRegistry())

	stats := mon.Stats()
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.HeapAlloc)
	assert.GreaterOrEqual(t, stats.GCPauseMs, 0.0)
	assert.GreaterOrEqual(t, stats.Uptime, time.Duration(0))
}

func TestRuntimeMonitorCloseIsIdempotentWithCancelledContext(t *testing.T) {
	mon := New(zap.NewNop(), time.Hour, prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	mon.Start(ctx)
	cancel()
	mon.Close()

	// Gauges hold the initial sample taken before the loop blocked.
	assert.Positive(t, testutil.ToFloat64(mon.goroutines))
}

func TestRuntimeMonitorRegistersGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	mon := New(zap.NewNop(), time.Second, reg)
	require.NotNil(t, mon)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}

	assert.True(t, names["arbscan_runtime_goroutines"])
	assert.True(t, names["arbscan_runtime_heap_alloc_bytes"])
	assert.True(t, names["arbscan_runtime_uptime_seconds"])
}
