package arbitrage

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/swap"
	"github.com/solanum-labs/arbscan/types"
	mathutil "github.com/solanum-labs/arbscan/utils/math"
)

// cycle is a closed trade route: pools[i] swaps tokens[i] into
// tokens[(i+1) % len]. Both slices have the same length.
type cycle struct {
	pools  []*types.PoolData
	tokens []graph.TokenID
}

// canonical returns the rotation of c that starts at its smallest
// token id. Rotation preserves trade direction, so two discoveries of
// the same loop from different entry points collapse to one route.
func (c cycle) canonical() cycle {
	if len(c.tokens) == 0 {
		return c
	}
	pivot := 0
	for i := 1; i < len(c.tokens); i++ {
		if c.tokens[i] < c.tokens[pivot] {
			pivot = i
		}
	}
	if pivot == 0 {
		return c
	}
	n := len(c.tokens)
	pools := make([]*types.PoolData, 0, n)
	tokens := make([]graph.TokenID, 0, n)
	for i := 0; i < n; i++ {
		pools = append(pools, c.pools[(pivot+i)%n])
		tokens = append(tokens, c.tokens[(pivot+i)%n])
	}
	return cycle{pools: pools, tokens: tokens}
}

// evalCycle pushes amountIn through the cycle with the fee-adjusted
// constant-product model and returns the realized steps plus the final
// output amount. ok is false when any hop cannot quote, such as an
// input large enough to drain a reserve.
func evalCycle(g *graph.Graph, c cycle, amountIn *big.Int) (steps []types.ArbitrageStep, out *big.Int, ok bool) {
	if len(c.pools) == 0 || amountIn == nil || amountIn.Sign() <= 0 {
		return nil, nil, false
	}

	steps = make([]types.ArbitrageStep, 0, len(c.pools))
	amount := mathutil.Clone(amountIn)
	for i, pool := range c.pools {
		tokenIn := g.Token(c.tokens[i])
		tokenOut := g.Token(c.tokens[(i+1)%len(c.tokens)])

		reserveIn := pool.ReserveFor(tokenIn.Mint)
		reserveOut := pool.ReserveFor(tokenOut.Mint)
		hopOut := swap.GetAmountOut(amount, reserveIn, reserveOut, pool.FeeBps)
		if hopOut == nil || hopOut.Sign() <= 0 {
			return nil, nil, false
		}

		steps = append(steps, types.ArbitrageStep{
			Pool:      pool.Address,
			Exchange:  pool.Exchange,
			TokenIn:   tokenIn,
			TokenOut:  tokenOut,
			AmountIn:  amount,
			AmountOut: hopOut,
			Price:     pool.PriceIn(tokenIn.Mint),
			FeeBps:    pool.FeeBps,
		})
		amount = hopOut
	}
	return steps, amount, true
}

// pathType classifies a step sequence: one exchange throughout is
// simple or multi-hop by length, a mix of exchanges is cross-protocol.
func pathType(steps []types.ArbitrageStep) types.PathType {
	for i := 1; i < len(steps); i++ {
		if steps[i].Exchange != steps[0].Exchange {
			return types.PathTypeCrossProtocol
		}
	}
	if len(steps) > 2 {
		return types.PathTypeMultiHop
	}
	return types.PathTypeSimple
}

// newOpportunity assembles the externally visible record for an
// evaluated route. Profit figures come straight from the base swap
// model, never from the slippage-adjusted sizing pass.
func (s *Scanner) newOpportunity(steps []types.ArbitrageStep, amountIn, amountOut *big.Int) types.ArbitrageOpportunity {
	gross := new(big.Int).Sub(amountOut, amountIn)
	gasCost := s.gas.EstimatePathCost(len(steps))
	net := new(big.Int).Sub(gross, gasCost)
	percent := mathutil.PercentChange(amountIn, amountOut)

	return types.ArbitrageOpportunity{
		ID: uuid.NewString(),
		Path: types.ArbitragePath{
			Steps:      steps,
			Type:       pathType(steps),
			StartToken: steps[0].TokenIn,
			Hops:       len(steps),
		},
		AmountIn:      mathutil.Clone(amountIn),
		AmountOut:     mathutil.Clone(amountOut),
		GrossProfit:   gross,
		ProfitPercent: percent,
		GasEstimate:   gasCost,
		NetProfit:     net,
		Confidence:    confidenceScore(percent, len(steps)),
		DetectedAt:    time.Now().UTC(),
	}
}

// cycleOpportunity canonicalizes, evaluates, and filters one discovered
// cycle. Used by the multi-hop strategies, which probe every route with
// the same fixed reference input.
func (s *Scanner) cycleOpportunity(g *graph.Graph, c cycle) (types.ArbitrageOpportunity, bool) {
	canon := c.canonical()
	steps, out, ok := evalCycle(g, canon, s.cfg.ReferenceAmount)
	if !ok {
		return types.ArbitrageOpportunity{}, false
	}
	opp := s.newOpportunity(steps, s.cfg.ReferenceAmount, out)
	if !s.keepCandidate(&opp) {
		return types.ArbitrageOpportunity{}, false
	}
	return opp, true
}

// keepCandidate drops routes that lose money after execution cost,
// unless the config asks for the full diagnostic picture.
func (s *Scanner) keepCandidate(opp *types.ArbitrageOpportunity) bool {
	if s.cfg.ShowUnprofitable {
		return true
	}
	return opp.NetProfit.Sign() > 0
}
