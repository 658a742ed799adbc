package arbitrage

import (
	"math/big"

	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/swap"
	mathutil "github.com/solanum-labs/arbscan/utils/math"
)

const (
	optimizerIterations = 20

	// Search window bounds, in the start token's smallest unit.
	minTradeAmount = 100_000_000
	maxTradeFloor  = 10_000_000_000

	// reserveCapDivisor caps the input at 5% of the tightest input-side
	// reserve so the optimizer never probes pool-draining sizes.
	reserveCapDivisor = 20

	convergenceWindow = 1_000_000
)

// optimalAmount searches [minTradeAmount, maxSafeAmount] for the input
// size with the highest slippage-adjusted profit through the route.
// Each iteration evaluates two interior points and discards the third
// of the window behind the worse one. If no probed size ever turned a
// profit the configured reference amount comes back instead, keeping
// downstream candidate construction well-defined; the profit filter
// disposes of the candidate later.
func (s *Scanner) optimalAmount(g *graph.Graph, c cycle, withSlippage bool) *big.Int {
	lo := big.NewInt(minTradeAmount)
	hi := maxSafeAmount(g, c)

	var bestAmount, bestProfit *big.Int
	consider := func(amount, profit *big.Int) {
		if profit == nil {
			return
		}
		if bestProfit == nil || profit.Cmp(bestProfit) > 0 {
			bestAmount, bestProfit = amount, profit
		}
	}

	window := new(big.Int)
	threshold := big.NewInt(convergenceWindow)
	for i := 0; i < optimizerIterations; i++ {
		window.Sub(hi, lo)
		if window.Cmp(threshold) < 0 {
			break
		}
		third := new(big.Int).Div(window, big.NewInt(3))
		m1 := new(big.Int).Add(lo, third)
		m2 := new(big.Int).Sub(hi, third)

		p1 := cycleProfit(g, c, m1, withSlippage)
		p2 := cycleProfit(g, c, m2, withSlippage)
		consider(m1, p1)
		consider(m2, p2)

		if lessProfit(p1, p2) {
			lo = m1
		} else {
			hi = m2
		}
	}

	if bestProfit == nil || bestProfit.Sign() <= 0 {
		return mathutil.Clone(s.cfg.ReferenceAmount)
	}
	return bestAmount
}

// cycleProfit chains the route at the given input size and returns
// final output minus input, or nil when any hop cannot quote.
func cycleProfit(g *graph.Graph, c cycle, amountIn *big.Int, withSlippage bool) *big.Int {
	amount := amountIn
	for i, pool := range c.pools {
		tokenIn := g.Token(c.tokens[i]).Mint
		tokenOut := g.Token(c.tokens[(i+1)%len(c.tokens)]).Mint
		reserveIn := pool.ReserveFor(tokenIn)
		reserveOut := pool.ReserveFor(tokenOut)

		var out *big.Int
		if withSlippage {
			out = swap.GetAmountOutWithSlippage(amount, reserveIn, reserveOut, pool.FeeBps, pool.TVL)
		} else {
			out = swap.GetAmountOut(amount, reserveIn, reserveOut, pool.FeeBps)
		}
		if out == nil || out.Sign() <= 0 {
			return nil
		}
		amount = out
	}
	return new(big.Int).Sub(amount, amountIn)
}

// lessProfit orders two probe results with nil meaning "could not
// quote", which loses to any realized number.
func lessProfit(a, b *big.Int) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Cmp(b) < 0
}

// maxSafeAmount is 5% of the tightest input-side reserve along the
// route, floored at ten reference units so thin pools still get a
// usable search window.
func maxSafeAmount(g *graph.Graph, c cycle) *big.Int {
	var tightest *big.Int
	for i, pool := range c.pools {
		reserveIn := pool.ReserveFor(g.Token(c.tokens[i]).Mint)
		if reserveIn == nil {
			continue
		}
		if tightest == nil || reserveIn.Cmp(tightest) < 0 {
			tightest = reserveIn
		}
	}
	floor := big.NewInt(maxTradeFloor)
	if tightest == nil {
		return floor
	}
	capped := new(big.Int).Div(tightest, big.NewInt(reserveCapDivisor))
	return mathutil.Max(capped, floor)
}
