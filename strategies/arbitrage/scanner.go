// Package arbitrage detects profitable token-trade cycles in a
// snapshot of constant-product pool states. One snapshot in, one
// ranked opportunity list out; the scanner keeps no state between
// runs.
package arbitrage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/gas"
	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/types"
	mathutil "github.com/solanum-labs/arbscan/utils/math"
	"github.com/solanum-labs/arbscan/utils/metrics"
)

// Strategy labels used in logs and metrics.
const (
	strategyTwoPool       = "two_pool"
	strategyCrossExchange = "cross_exchange"
	strategyDFS           = "dfs"
	strategyBellmanFord   = "bellman_ford"
)

// Scanner runs the four detection strategies over one snapshot and
// merges their candidates into a deduplicated, scored result.
type Scanner struct {
	cfg     types.ScannerConfig
	logger  *zap.Logger
	gas     *gas.Estimator
	metrics *metrics.ScannerMetrics
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger replaces the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithGasEstimator replaces the default execution-fee model.
func WithGasEstimator(estimator *gas.Estimator) Option {
	return func(s *Scanner) { s.gas = estimator }
}

// WithMetrics attaches a metric group. Nil metrics are fine, the
// scanner checks before touching them.
func WithMetrics(m *metrics.ScannerMetrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// NewScanner validates cfg and builds a scanner. A structurally
// invalid config is the only error this package propagates.
func NewScanner(cfg types.ScannerConfig, opts ...Option) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		cfg:    cfg.Normalized(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gas == nil {
		s.gas = gas.NewEstimator(s.logger)
	}
	return s, nil
}

// Scan detects arbitrage opportunities in the given pool snapshot.
// Degenerate pools reduce the result, they never fail the scan. The
// returned slice is sorted by score, best first.
func (s *Scanner) Scan(ctx context.Context, pools []types.PoolData) ([]types.ArbitrageOpportunity, error) {
	started := time.Now()
	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
		s.metrics.SnapshotPools.Set(float64(len(pools)))
	}

	verified := s.verifyPrices(pools)
	g := graph.Build(verified)
	if s.metrics != nil {
		s.metrics.GraphTokens.Set(float64(g.TokenCount()))
	}
	if g.TokenCount() == 0 {
		s.logger.Debug("Snapshot produced an empty token graph",
			zap.Int("pools", len(pools)))
		return []types.ArbitrageOpportunity{}, nil
	}

	var candidates []types.ArbitrageOpportunity

	twoPool := s.detectTwoPool(g)
	s.countCandidates(strategyTwoPool, len(twoPool))
	candidates = append(candidates, twoPool...)

	crossExchange := s.detectCrossExchange(g)
	s.countCandidates(strategyCrossExchange, len(crossExchange))
	candidates = append(candidates, crossExchange...)

	multiHop, err := s.detectMultiHop(ctx, g)
	if err != nil {
		return nil, err
	}
	s.countCandidates(strategyDFS, len(multiHop))
	candidates = append(candidates, multiHop...)

	negative := s.detectNegativeCycles(g)
	s.countCandidates(strategyBellmanFord, len(negative))
	candidates = append(candidates, negative...)

	merged := dedupe(candidates)
	filtered := s.applyThreshold(merged)
	ranked := s.scoreAndSort(filtered)

	s.logger.Info("Scan finished",
		zap.Int("pools", len(pools)),
		zap.Int("tokens", g.TokenCount()),
		zap.Int("candidates", len(candidates)),
		zap.Int("deduplicated", len(merged)),
		zap.Int("opportunities", len(ranked)),
		zap.Duration("elapsed", time.Since(started)))

	if s.metrics != nil {
		s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
		s.metrics.Opportunities.Add(float64(len(ranked)))
		s.metrics.LastOpportunities.Set(float64(len(ranked)))
		if len(ranked) > 0 {
			s.metrics.BestNetProfit.Set(mathutil.ToFloat(ranked[0].NetProfit))
		} else {
			s.metrics.BestNetProfit.Set(0)
		}
	}
	return ranked, nil
}

func (s *Scanner) countCandidates(strategy string, n int) {
	if s.metrics != nil {
		s.metrics.Candidates.WithLabelValues(strategy).Add(float64(n))
	}
	s.logger.Debug("Strategy produced candidates",
		zap.String("strategy", strategy),
		zap.Int("count", n))
}
