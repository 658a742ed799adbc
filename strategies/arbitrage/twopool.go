package arbitrage

import (
	"math"

	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/types"
)

// detectTwoPool compares every viable pool pair quoting the same token
// pair and builds a buy-cheap sell-dear route for each price gap wide
// enough to clear the configured profit percent. When more than two
// pools quote a pair, only combinations spanning different exchanges
// are considered.
func (s *Scanner) detectTwoPool(g *graph.Graph) []types.ArbitrageOpportunity {
	var found []types.ArbitrageOpportunity
	forEachPair(g, func(base, quote graph.TokenID, pools []*types.PoolData) {
		crossOnly := len(pools) > 2
		for i := 0; i < len(pools); i++ {
			for j := i + 1; j < len(pools); j++ {
				if crossOnly && pools[i].Exchange == pools[j].Exchange {
					continue
				}
				if opp, ok := s.pairOpportunity(g, base, quote, pools[i], pools[j]); ok {
					found = append(found, opp)
				}
			}
		}
	})
	return found
}

// detectCrossExchange is the cross-venue variant: pools quoting the
// same pair are compared only when they sit on different exchanges, so
// every resulting route is cross-protocol.
func (s *Scanner) detectCrossExchange(g *graph.Graph) []types.ArbitrageOpportunity {
	var found []types.ArbitrageOpportunity
	forEachPair(g, func(base, quote graph.TokenID, pools []*types.PoolData) {
		for i := 0; i < len(pools); i++ {
			for j := i + 1; j < len(pools); j++ {
				if pools[i].Exchange == pools[j].Exchange {
					continue
				}
				if opp, ok := s.pairOpportunity(g, base, quote, pools[i], pools[j]); ok {
					found = append(found, opp)
				}
			}
		}
	})
	return found
}

// pairOpportunity sizes and prices a round trip between two pools
// quoting the same pair: buy the base token on the pool where it is
// cheap, sell it back on the pool where it is dear. The start token is
// the quote side, so the route closes where it opened.
func (s *Scanner) pairOpportunity(g *graph.Graph, base, quote graph.TokenID, a, b *types.PoolData) (types.ArbitrageOpportunity, bool) {
	baseMint := g.Token(base).Mint
	priceA := a.PriceIn(baseMint)
	priceB := b.PriceIn(baseMint)
	if priceA <= 0 || priceB <= 0 {
		return types.ArbitrageOpportunity{}, false
	}

	cheap, dear := a, b
	if priceA > priceB {
		cheap, dear = b, a
	}
	spread := math.Abs(priceA-priceB) / math.Min(priceA, priceB) * 100
	if spread < s.cfg.MinProfitPercent && !s.cfg.ShowUnprofitable {
		return types.ArbitrageOpportunity{}, false
	}

	route := cycle{
		pools:  []*types.PoolData{cheap, dear},
		tokens: []graph.TokenID{quote, base},
	}
	amount := s.optimalAmount(g, route, true)
	steps, out, ok := evalCycle(g, route, amount)
	if !ok {
		return types.ArbitrageOpportunity{}, false
	}
	opp := s.newOpportunity(steps, amount, out)
	if !s.keepCandidate(&opp) {
		return types.ArbitrageOpportunity{}, false
	}
	return opp, true
}

// forEachPair visits every unordered token pair connected by at least
// two pools.
func forEachPair(g *graph.Graph, fn func(base, quote graph.TokenID, pools []*types.PoolData)) {
	for base := graph.TokenID(0); int(base) < g.TokenCount(); base++ {
		for quote, pools := range g.Neighbors(base) {
			if quote <= base || len(pools) < 2 {
				continue
			}
			fn(base, quote, pools)
		}
	}
}
