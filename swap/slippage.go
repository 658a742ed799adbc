package swap

import (
	"math"
	"math/big"
)

// Slippage tier boundaries over the trade-size-to-reserve ratio. Below
// smallTradeRatio the penalty grows linearly with the ratio itself;
// between the boundaries it interpolates inside fixed bands; above
// largeTradeRatio the ratio is capped.
const (
	smallTradeRatio = 0.01
	midTradeRatio   = 0.10
	maxTradeRatio   = 0.50

	minSlippageMultiplier = 0.5
	maxSlippageMultiplier = 1.0
)

// multiplierPrecision scales the float multiplier into integer space
// before it is applied to a big.Int amount.
const multiplierPrecision = 1_000_000_000

// SlippageMultiplier returns the advisory output multiplier for a trade
// consuming tradeRatio of the input reserve, shaped by the pool's total
// liquidity. The result is clamped to [0.5, 1.0] and is monotonically
// non-increasing in tradeRatio and non-decreasing in liquidity.
func SlippageMultiplier(tradeRatio, totalLiquidity float64) float64 {
	if tradeRatio < 0 {
		tradeRatio = 0
	}
	if tradeRatio > maxTradeRatio {
		tradeRatio = maxTradeRatio
	}

	var multiplier float64
	switch {
	case tradeRatio < smallTradeRatio:
		multiplier = 1 - 2*tradeRatio
	case tradeRatio <= midTradeRatio:
		// 0.98 at 1% down to 0.93 at 10%.
		multiplier = 0.98 - (tradeRatio-smallTradeRatio)/(midTradeRatio-smallTradeRatio)*0.05
	default:
		// 0.93 at 10% down to 0.80 at the 50% cap.
		multiplier = 0.93 - (tradeRatio-midTradeRatio)/(maxTradeRatio-midTradeRatio)*0.13
	}

	multiplier *= depthAdjustment(totalLiquidity)

	if multiplier < minSlippageMultiplier {
		multiplier = minSlippageMultiplier
	}
	if multiplier > maxSlippageMultiplier {
		multiplier = maxSlippageMultiplier
	}
	return multiplier
}

// depthAdjustment relaxes the penalty for deep pools. Liquidity is the
// pool's TVL; pools at or above 1e12 get the full 1.0 factor, a 1e9
// pool sits at the 0.95 baseline. Zero TVL means the fetcher did not
// report one, so no depth penalty is applied at all.
func depthAdjustment(totalLiquidity float64) float64 {
	if totalLiquidity <= 0 {
		return 1
	}
	depth := math.Log10(totalLiquidity/1e9) / 3
	if depth > 1 {
		depth = 1
	}
	return 0.95 + 0.05*depth
}

// GetAmountOutWithSlippage wraps GetAmountOut and shaves the output by
// the slippage multiplier. Used when ranking and sizing trades; the
// base model remains the source of truth for final profit numbers.
func GetAmountOutWithSlippage(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16, totalLiquidity float64) *big.Int {
	out := GetAmountOut(amountIn, reserveIn, reserveOut, feeBps)
	if out.Sign() <= 0 {
		return out
	}

	ratio := ratioOf(amountIn, reserveIn)
	multiplier := SlippageMultiplier(ratio, totalLiquidity)

	scaled := big.NewInt(int64(math.Round(multiplier * multiplierPrecision)))
	out.Mul(out, scaled)
	return out.Div(out, big.NewInt(multiplierPrecision))
}

func ratioOf(amount, reserve *big.Int) float64 {
	if amount == nil || reserve == nil || reserve.Sign() <= 0 {
		return 0
	}
	r := new(big.Float).Quo(new(big.Float).SetInt(amount), new(big.Float).SetInt(reserve))
	out, _ := r.Float64()
	return out
}
