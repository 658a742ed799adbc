package arbitrage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils/testutils"
)

func candidate(first, last uint64, gross int64, hops int, percent float64) types.ArbitrageOpportunity {
	grossProfit := big.NewInt(gross)
	gasCost := big.NewInt(1_000)

	steps := make([]types.ArbitrageStep, hops)
	for i := range steps {
		steps[i].Pool = testutils.PoolAccount(uint64(1000 + i))
	}
	steps[0].Pool = testutils.PoolAccount(first)
	steps[hops-1].Pool = testutils.PoolAccount(last)

	return types.ArbitrageOpportunity{
		ID:            "test-candidate",
		Path:          types.ArbitragePath{Steps: steps, Hops: hops},
		AmountIn:      big.NewInt(1_000_000),
		AmountOut:     big.NewInt(1_000_000 + gross),
		GrossProfit:   grossProfit,
		ProfitPercent: percent,
		GasEstimate:   gasCost,
		NetProfit:     new(big.Int).Sub(grossProfit, gasCost),
		Confidence:    0.7,
	}
}

func TestConfidenceScore(t *testing.T) {
	testcases := []struct {
		name    string
		percent float64
		hops    int
		want    float64
	}{
		{"rich short path", 2.0, 2, 1.0},
		{"decent three hops", 0.7, 3, 0.8},
		{"thin long path", 0.2, 4, 0.5},
		{"tiny short path", 0.05, 2, 0.7},
		{"rich long path", 2.0, 8, 0.7},
		{"worst case", 0.01, 5, 0.4},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, confidenceScore(tc.percent, tc.hops), 1e-9)
		})
	}
}

func TestDedupeCollapsesSharedEndpoints(t *testing.T) {
	a := candidate(1, 2, 5_000, 2, 1.0)
	b := candidate(1, 2, 9_000, 2, 1.5)

	kept := dedupe([]types.ArbitrageOpportunity{a, b})
	require.Len(t, kept, 1)
	assert.Zero(t, kept[0].GrossProfit.Cmp(big.NewInt(9_000)), "higher gross must survive")

	// Arrival order must not matter.
	kept = dedupe([]types.ArbitrageOpportunity{b, a})
	require.Len(t, kept, 1)
	assert.Zero(t, kept[0].GrossProfit.Cmp(big.NewInt(9_000)))
}

func TestDedupeIgnoresEndpointOrder(t *testing.T) {
	forward := candidate(1, 2, 5_000, 2, 1.0)
	reverse := candidate(2, 1, 4_000, 2, 0.8)

	kept := dedupe([]types.ArbitrageOpportunity{forward, reverse})
	require.Len(t, kept, 1)
	assert.Zero(t, kept[0].GrossProfit.Cmp(big.NewInt(5_000)))
}

func TestDedupeKeepsDistinctEndpoints(t *testing.T) {
	kept := dedupe([]types.ArbitrageOpportunity{
		candidate(1, 2, 5_000, 2, 1.0),
		candidate(3, 4, 5_000, 2, 1.0),
		candidate(1, 5, 5_000, 2, 1.0),
	})
	assert.Len(t, kept, 3)
}

func TestDedupeTieBreaksOnHops(t *testing.T) {
	long := candidate(1, 2, 5_000, 4, 1.0)
	short := candidate(1, 2, 5_000, 2, 1.0)

	kept := dedupe([]types.ArbitrageOpportunity{long, short})
	require.Len(t, kept, 1)
	assert.Equal(t, 2, kept[0].Path.Hops)

	kept = dedupe([]types.ArbitrageOpportunity{short, long})
	require.Len(t, kept, 1)
	assert.Equal(t, 2, kept[0].Path.Hops)
}

func TestDedupeIdempotent(t *testing.T) {
	input := []types.ArbitrageOpportunity{
		candidate(1, 2, 5_000, 2, 1.0),
		candidate(2, 1, 6_000, 3, 1.2),
		candidate(3, 4, 7_000, 2, 0.9),
		candidate(5, 6, 1_000, 4, 0.1),
	}

	once := dedupe(input)
	twice := dedupe(once)
	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Path.FirstPool(), twice[i].Path.FirstPool())
		assert.Zero(t, once[i].GrossProfit.Cmp(twice[i].GrossProfit))
	}
}

func TestApplyThresholdRelaxesWhenSparse(t *testing.T) {
	cfg := testConfig()
	cfg.MinProfitThreshold = big.NewInt(100_000)
	s := testScanner(t, cfg)

	// Three candidates: sparse scan scales the absolute floor to 80k.
	candidates := []types.ArbitrageOpportunity{
		candidate(1, 2, 86_000, 2, 2.0), // net 85k
		candidate(3, 4, 91_000, 2, 2.0),
		candidate(5, 6, 96_000, 2, 2.0),
	}

	kept := s.applyThreshold(candidates)
	assert.Len(t, kept, 3, "relaxed floor must keep nets above 80k")
}

func TestApplyThresholdTightensWhenCrowded(t *testing.T) {
	cfg := testConfig()
	cfg.MinProfitThreshold = big.NewInt(100_000)
	s := testScanner(t, cfg)

	var candidates []types.ArbitrageOpportunity
	for i := 0; i < 21; i++ {
		candidates = append(candidates, candidate(uint64(2*i+1), uint64(2*i+2), 111_000, 2, 2.0)) // net 110k
	}

	kept := s.applyThreshold(candidates)
	assert.Empty(t, kept, "crowded scan scales the floor to 120k")
}

func TestApplyThresholdMeanDominates(t *testing.T) {
	cfg := testConfig()
	cfg.MinProfitThreshold = big.NewInt(0)
	cfg.MinProfitPercent = 0
	s := testScanner(t, cfg)

	// Five rich candidates pull the mean far above the straggler.
	candidates := []types.ArbitrageOpportunity{
		candidate(1, 2, 1_001_000, 2, 2.0),
		candidate(3, 4, 1_001_000, 2, 2.0),
		candidate(5, 6, 1_001_000, 2, 2.0),
		candidate(7, 8, 1_001_000, 2, 2.0),
		candidate(9, 10, 1_001_000, 2, 2.0),
		candidate(11, 12, 101_000, 2, 2.0),
	}

	kept := s.applyThreshold(candidates)
	require.Len(t, kept, 5)
	for _, opp := range kept {
		assert.Zero(t, opp.NetProfit.Cmp(big.NewInt(1_000_000)))
	}
}

func TestApplyThresholdShowUnprofitableBypasses(t *testing.T) {
	cfg := testConfig()
	cfg.MinProfitThreshold = testutils.Sol(1000)
	cfg.ShowUnprofitable = true
	s := testScanner(t, cfg)

	candidates := []types.ArbitrageOpportunity{candidate(1, 2, 10, 2, 0.001)}
	assert.Len(t, s.applyThreshold(candidates), 1)
}

func TestScorePrefersProfit(t *testing.T) {
	rich := candidate(1, 2, 50_000_000, 2, 2.0)
	poor := candidate(3, 4, 5_000_000, 2, 2.0)
	assert.Greater(t, score(&rich), score(&poor))
}

func TestScorePrefersShorterPaths(t *testing.T) {
	short := candidate(1, 2, 5_000_000, 2, 1.0)
	long := candidate(3, 4, 5_000_000, 6, 1.0)
	long.Confidence = short.Confidence
	assert.Greater(t, score(&short), score(&long))
}

func TestScoreAndSortOrdering(t *testing.T) {
	s := testScanner(t, testConfig())

	shuffled := []types.ArbitrageOpportunity{
		candidate(1, 2, 5_000_000, 2, 1.0),
		candidate(3, 4, 90_000_000, 2, 3.0),
		candidate(5, 6, 20_000_000, 3, 2.0),
	}
	ranked := s.scoreAndSort(shuffled)
	require.Len(t, ranked, 3)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, score(&ranked[i-1]), score(&ranked[i]))
	}
	assert.Zero(t, ranked[0].GrossProfit.Cmp(big.NewInt(90_000_000)))
}
