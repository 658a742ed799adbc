package gas

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEstimatePathCostDefaults(t *testing.T) {
	e := NewEstimator(zap.NewNop())

	// (5000 + 2*100000) * 1.5
	assert.Zero(t, big.NewInt(307_500).Cmp(e.EstimatePathCost(2)))

	// (5000 + 3*100000) * 1.5
	assert.Zero(t, big.NewInt(457_500).Cmp(e.EstimatePathCost(3)))

	// Base fee only.
	assert.Zero(t, big.NewInt(7_500).Cmp(e.EstimatePathCost(0)))
	assert.Zero(t, big.NewInt(7_500).Cmp(e.EstimatePathCost(-4)))
}

func TestEstimatePathCostGrowsWithHops(t *testing.T) {
	e := NewEstimator(zap.NewNop())

	prev := big.NewInt(-1)
	for hops := 0; hops <= 8; hops++ {
		cost := e.EstimatePathCost(hops)
		assert.Positive(t, cost.Cmp(prev))
		prev = cost
	}
}

func TestSetFees(t *testing.T) {
	e := NewEstimator(zap.NewNop())
	e.SetFees(big.NewInt(10_000), big.NewInt(50_000))

	// (10000 + 2*50000) * 1.5
	assert.Zero(t, big.NewInt(165_000).Cmp(e.EstimatePathCost(2)))

	// Nil keeps the previous values.
	e.SetFees(nil, nil)
	assert.Zero(t, big.NewInt(165_000).Cmp(e.EstimatePathCost(2)))
}

func TestSetPriorityMultiplier(t *testing.T) {
	e := NewEstimator(zap.NewNop())

	e.SetPriorityMultiplier(2.0)
	assert.Zero(t, big.NewInt(410_000).Cmp(e.EstimatePathCost(2)))

	// Discounts are ignored.
	e.SetPriorityMultiplier(0.5)
	assert.Zero(t, big.NewInt(410_000).Cmp(e.EstimatePathCost(2)))
}
