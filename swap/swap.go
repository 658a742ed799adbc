// Package swap implements the pure output math for constant-product
// pools. All amount arithmetic stays in big.Int; floating point is
// confined to the advisory slippage multiplier.
package swap

import "math/big"

// Fees are expressed in basis points out of 10000.
const BasisPointDivisor = 10000

var (
	basisPointDivisor = big.NewInt(BasisPointDivisor)
	one               = big.NewInt(1)
)

// GetAmountOut computes the constant-product output for amountIn
// swapped against (reserveIn, reserveOut) with the fee taken from the
// input side. Degenerate inputs (nil or non-positive amounts, empty
// reserves, fee >= 100%) yield zero rather than an error.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	if amountIn == nil || reserveIn == nil || reserveOut == nil {
		return new(big.Int)
	}
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int)
	}
	if feeBps >= BasisPointDivisor {
		return new(big.Int)
	}

	feeMultiplier := big.NewInt(int64(BasisPointDivisor - feeBps))
	amountInWithFee := new(big.Int).Mul(amountIn, feeMultiplier)

	numerator := new(big.Int).Mul(reserveOut, amountInWithFee)
	denominator := new(big.Int).Mul(reserveIn, basisPointDivisor)
	denominator.Add(denominator, amountInWithFee)

	return numerator.Div(numerator, denominator)
}

// GetAmountIn computes the input required to draw amountOut from the
// pool, rounded up so the returned amount always satisfies the swap.
// Zero when amountOut cannot be taken from reserveOut.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	if amountOut == nil || reserveIn == nil || reserveOut == nil {
		return new(big.Int)
	}
	if amountOut.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int)
	}
	if amountOut.Cmp(reserveOut) >= 0 || feeBps >= BasisPointDivisor {
		return new(big.Int)
	}

	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, basisPointDivisor)

	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, big.NewInt(int64(BasisPointDivisor-feeBps)))

	amountIn := numerator.Div(numerator, denominator)
	return amountIn.Add(amountIn, one)
}
