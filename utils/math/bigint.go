// Package math carries the big.Int helpers shared by the trade-size
// optimizer and the opportunity scorer.
package math

import "math/big"

// Min returns the smaller of x and y as a new value.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}

// Max returns the larger of x and y as a new value.
func Max(x, y *big.Int) *big.Int {
	if x.Cmp(y) >= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}

// Clone returns a copy of x, or zero for nil.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// ScaleByRatio returns x * num / den without mutating x.
func ScaleByRatio(x *big.Int, num, den int64) *big.Int {
	if den == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(x, big.NewInt(num))
	return out.Div(out, big.NewInt(den))
}

// Mean returns the integer mean of values, zero for an empty slice.
// Nil entries count as zero.
func Mean(values []*big.Int) *big.Int {
	if len(values) == 0 {
		return new(big.Int)
	}
	sum := new(big.Int)
	for _, v := range values {
		if v != nil {
			sum.Add(sum, v)
		}
	}
	return sum.Div(sum, big.NewInt(int64(len(values))))
}

// PercentChange returns (value-base)/base expressed in percent. Zero
// when base is empty.
func PercentChange(base, value *big.Int) float64 {
	if base == nil || value == nil || base.Sign() == 0 {
		return 0
	}
	diff := new(big.Int).Sub(value, base)
	ratio := new(big.Float).Quo(new(big.Float).SetInt(diff), new(big.Float).SetInt(base))
	out, _ := ratio.Float64()
	return out * 100
}

// ToFloat converts x to a float64 for advisory ranking math. Zero for
// nil.
func ToFloat(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	out, _ := new(big.Float).SetInt(x).Float64()
	return out
}
