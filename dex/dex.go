// Package dex is the market-data boundary. Fetchers pull pool
// snapshots from exchange HTTP APIs and normalize them into
// types.PoolData; the Collector fans fetches out and merges the
// results into one snapshot for the scanner.
package dex

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils/metrics"
)

// ErrAllFetchersFailed is returned when no fetcher produced a
// snapshot. Individual fetcher failures only drop that exchange.
var ErrAllFetchersFailed = errors.New("all fetchers failed")

// Fetcher pulls the current pool snapshot from one exchange.
type Fetcher interface {
	// Name returns the exchange name used in logs and metrics.
	Name() string

	// FetchPools returns the exchange's tradable pools. Implementations
	// must honor ctx cancellation.
	FetchPools(ctx context.Context) ([]types.PoolData, error)
}

// Collector merges snapshots from several fetchers. Fetches run
// concurrently; a failing exchange is logged and skipped so one flaky
// API does not blank the whole snapshot.
type Collector struct {
	fetchers []Fetcher
	logger   *zap.Logger
	metrics  *metrics.FetcherMetrics
}

// CollectorOption configures optional Collector dependencies.
type CollectorOption func(*Collector)

func WithLogger(logger *zap.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.FetcherMetrics) CollectorOption {
	return func(c *Collector) {
		c.metrics = m
	}
}

func NewCollector(fetchers []Fetcher, opts ...CollectorOption) *Collector {
	c := &Collector{fetchers: fetchers}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Collect fetches all exchanges concurrently and returns the merged
// snapshot in fetcher order. It fails only when every fetcher failed.
func (c *Collector) Collect(ctx context.Context) ([]types.PoolData, error) {
	if len(c.fetchers) == 0 {
		return []types.PoolData{}, nil
	}

	results := make([][]types.PoolData, len(c.fetchers))
	fetched := make([]bool, len(c.fetchers))
	var g errgroup.Group
	for i, fetcher := range c.fetchers {
		i, fetcher := i, fetcher
		g.Go(func() error {
			start := time.Now()
			pools, err := fetcher.FetchPools(ctx)
			if err != nil {
				c.logger.Warn("Snapshot fetch failed",
					zap.String("exchange", fetcher.Name()),
					zap.Error(err),
				)
				if c.metrics != nil {
					c.metrics.FetchErrors.WithLabelValues(fetcher.Name()).Inc()
				}
				return nil
			}

			c.logger.Debug("Snapshot fetched",
				zap.String("exchange", fetcher.Name()),
				zap.Int("pools", len(pools)),
				zap.Duration("elapsed", time.Since(start)),
			)
			if c.metrics != nil {
				c.metrics.Fetches.WithLabelValues(fetcher.Name()).Inc()
				c.metrics.PoolsFetched.WithLabelValues(fetcher.Name()).Set(float64(len(pools)))
				c.metrics.FetchDuration.WithLabelValues(fetcher.Name()).Observe(time.Since(start).Seconds())
			}

			results[i] = pools
			fetched[i] = true
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]types.PoolData, 0)
	succeeded := 0
	for i, pools := range results {
		if fetched[i] {
			succeeded++
		}
		merged = append(merged, pools...)
	}
	if succeeded == 0 {
		return nil, ErrAllFetchersFailed
	}
	return merged, nil
}
