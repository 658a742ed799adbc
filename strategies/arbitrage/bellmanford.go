package arbitrage

import (
	"math"
	"strings"

	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/swap"
	"github.com/solanum-labs/arbscan/types"
)

// maxPredecessorWalk bounds cycle reconstruction so a broken
// predecessor chain cannot loop forever.
const maxPredecessorWalk = 20

// bfEdge is one trading direction of a pool. Weight is
// -ln(rate * fee retention): a cycle whose weights sum negative
// multiplies a balance by more than one going around.
type bfEdge struct {
	from, to graph.TokenID
	pool     *types.PoolData
	weight   float64
}

type predecessor struct {
	from graph.TokenID
	pool *types.PoolData
	set  bool
}

// detectNegativeCycles runs Bellman-Ford from the top-liquidity seeds
// and converts every reachable negative cycle it can reconstruct into
// a candidate. Complements the depth-first search: polynomial in path
// length, so it reaches loops the bounded recursion cannot afford.
func (s *Scanner) detectNegativeCycles(g *graph.Graph) []types.ArbitrageOpportunity {
	edges := buildEdgeList(g)
	if len(edges) == 0 {
		return nil
	}

	var found []types.ArbitrageOpportunity
	seen := make(map[string]bool)
	for _, seed := range g.TopTokensByTVL(s.cfg.BellmanFordSeeds) {
		for _, c := range s.negativeCyclesFrom(g, edges, seed) {
			canon := c.canonical()
			key := cycleKey(canon)
			if seen[key] {
				continue
			}
			seen[key] = true
			if opp, ok := s.cycleOpportunity(g, canon); ok {
				found = append(found, opp)
			}
		}
	}
	return found
}

// buildEdgeList expands each pool into its two directed trading
// directions, dropping directions whose rate cannot produce a finite
// weight.
func buildEdgeList(g *graph.Graph) []bfEdge {
	pools := g.Pools()
	edges := make([]bfEdge, 0, 2*len(pools))
	for _, pool := range pools {
		a, okA := g.IDOf(pool.TokenA.Mint)
		b, okB := g.IDOf(pool.TokenB.Mint)
		if !okA || !okB {
			continue
		}
		retention := 1 - float64(pool.FeeBps)/swap.BasisPointDivisor
		forward := pool.PriceIn(pool.TokenA.Mint)
		if w, ok := edgeWeight(forward, retention); ok {
			edges = append(edges, bfEdge{from: a, to: b, pool: pool, weight: w})
		}
		if forward > 0 {
			if w, ok := edgeWeight(1/forward, retention); ok {
				edges = append(edges, bfEdge{from: b, to: a, pool: pool, weight: w})
			}
		}
	}
	return edges
}

func edgeWeight(rate, retention float64) (float64, bool) {
	if rate <= 0 || retention <= 0 {
		return 0, false
	}
	w := -math.Log(rate * retention)
	if math.IsInf(w, 0) || math.IsNaN(w) {
		return 0, false
	}
	return w, true
}

// negativeCyclesFrom relaxes the edge list from one seed, then sweeps
// once more: any edge still improving its head proves a reachable
// negative cycle, which the predecessor chain reconstructs.
func (s *Scanner) negativeCyclesFrom(g *graph.Graph, edges []bfEdge, seed graph.TokenID) []cycle {
	n := g.TokenCount()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[seed] = 0
	pred := make([]predecessor, n)

	rounds := s.cfg.MaxHops
	if n-1 < rounds {
		rounds = n - 1
	}
	for round := 0; round < rounds; round++ {
		improved := false
		for _, e := range edges {
			if dist[e.from]+e.weight < dist[e.to] {
				dist[e.to] = dist[e.from] + e.weight
				pred[e.to] = predecessor{from: e.from, pool: e.pool, set: true}
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	var cycles []cycle
	for _, e := range edges {
		if dist[e.from]+e.weight < dist[e.to] {
			pred[e.to] = predecessor{from: e.from, pool: e.pool, set: true}
			if c, ok := reconstructCycle(pred, e.to); ok {
				cycles = append(cycles, c)
			}
		}
	}
	return cycles
}

// reconstructCycle walks predecessor pointers backward from start
// until a token repeats, then unrolls the covered span into forward
// trade order. Walks that run off an unset predecessor or exceed the
// step bound are discarded rather than guessed at.
func reconstructCycle(pred []predecessor, start graph.TokenID) (cycle, bool) {
	seq := []graph.TokenID{start}
	cur := start
	for step := 0; step < maxPredecessorWalk; step++ {
		p := pred[cur]
		if !p.set {
			return cycle{}, false
		}
		next := p.from
		if j := indexOf(seq, next); j >= 0 {
			m := len(seq) - 1
			tokens := make([]graph.TokenID, 0, m-j+1)
			pools := make([]*types.PoolData, 0, m-j+1)
			tokens = append(tokens, seq[j])
			for k := m; k >= j+1; k-- {
				tokens = append(tokens, seq[k])
			}
			for k := m; k >= j; k-- {
				pools = append(pools, pred[seq[k]].pool)
			}
			return cycle{pools: pools, tokens: tokens}, true
		}
		seq = append(seq, next)
		cur = next
	}
	return cycle{}, false
}

func indexOf(seq []graph.TokenID, id graph.TokenID) int {
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}

// cycleKey identifies one canonical cycle by its pool sequence, so a
// loop rediscovered from several seeds is evaluated once.
func cycleKey(c cycle) string {
	var b strings.Builder
	for _, p := range c.pools {
		b.Write(p.Address[:])
	}
	return b.String()
}
