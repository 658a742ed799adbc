package swap

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlippageMultiplierTiers(t *testing.T) {
	testcases := []struct {
		name     string
		ratio    float64
		tvl      float64
		expected float64
	}{
		{name: "tiny trade", ratio: 0.005, tvl: 0, expected: 0.99},
		{name: "one percent boundary", ratio: 0.01, tvl: 0, expected: 0.98},
		{name: "mid tier midpoint", ratio: 0.055, tvl: 0, expected: 0.955},
		{name: "ten percent boundary", ratio: 0.10, tvl: 0, expected: 0.93},
		{name: "large trade", ratio: 0.30, tvl: 0, expected: 0.865},
		{name: "ratio cap", ratio: 0.50, tvl: 0, expected: 0.80},
		{name: "beyond the cap", ratio: 0.80, tvl: 0, expected: 0.80},
		{name: "negative ratio treated as zero", ratio: -1, tvl: 0, expected: 1.0},
		{name: "baseline depth pool", ratio: 0, tvl: 1e9, expected: 0.95},
		{name: "deep pool no penalty", ratio: 0, tvl: 1e12, expected: 1.0},
		{name: "shallow pool", ratio: 0, tvl: 1e6, expected: 0.90},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			actual := SlippageMultiplier(tc.ratio, tc.tvl)
			assert.InDelta(t, tc.expected, actual, 1e-9)
		})
	}
}

func TestSlippageMultiplierBounds(t *testing.T) {
	for ratio := -0.5; ratio <= 2.0; ratio += 0.03 {
		for _, tvl := range []float64{0, 1e-12, 1, 1e6, 1e9, 1e12, 1e18} {
			m := SlippageMultiplier(ratio, tvl)
			assert.GreaterOrEqual(t, m, minSlippageMultiplier)
			assert.LessOrEqual(t, m, maxSlippageMultiplier)
		}
	}
}

func TestSlippageMultiplierMonotonicInRatio(t *testing.T) {
	prev := 2.0
	for ratio := 0.0; ratio <= 0.6; ratio += 0.005 {
		m := SlippageMultiplier(ratio, 5e9)
		assert.LessOrEqual(t, m, prev, "multiplier grew at ratio %f", ratio)
		prev = m
	}
}

func TestSlippageMultiplierMonotonicInDepth(t *testing.T) {
	prev := 0.0
	for _, tvl := range []float64{1e3, 1e6, 1e8, 1e9, 1e10, 1e11, 1e12, 1e13} {
		m := SlippageMultiplier(0.05, tvl)
		assert.GreaterOrEqual(t, m, prev, "deeper pool penalized harder at tvl %g", tvl)
		prev = m
	}
}

func TestGetAmountOutWithSlippage(t *testing.T) {
	amountIn := big.NewInt(50_000_000)
	reserveIn := big.NewInt(1_000_000_000)
	reserveOut := big.NewInt(2_000_000_000)

	base := GetAmountOut(amountIn, reserveIn, reserveOut, 30)
	shaved := GetAmountOutWithSlippage(amountIn, reserveIn, reserveOut, 30, 0)

	assert.Positive(t, shaved.Sign())
	assert.Negative(t, shaved.Cmp(base), "slippage-adjusted output must be below the base output")
}

func TestGetAmountOutWithSlippageDegenerate(t *testing.T) {
	out := GetAmountOutWithSlippage(big.NewInt(1000), big.NewInt(0), big.NewInt(1000), 30, 0)
	assert.Zero(t, out.Sign())

	out = GetAmountOutWithSlippage(nil, big.NewInt(1000), big.NewInt(1000), 30, 0)
	assert.Zero(t, out.Sign())
}
