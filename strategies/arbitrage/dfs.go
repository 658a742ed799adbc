package arbitrage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/solanum-labs/arbscan/graph"
	"github.com/solanum-labs/arbscan/types"
)

// detectMultiHop runs the bounded depth-first cycle search from the
// top-liquidity seed tokens. Seeds are split into fixed-size batches
// searched concurrently; batches share nothing but the read-only
// graph, so merge order carries no meaning.
func (s *Scanner) detectMultiHop(ctx context.Context, g *graph.Graph) ([]types.ArbitrageOpportunity, error) {
	seeds := g.TopTokensByTVL(s.cfg.SeedTokens)
	if len(seeds) == 0 {
		return nil, nil
	}

	batches := batchSeeds(seeds, s.cfg.BatchSize)
	results := make([][]types.ArbitrageOpportunity, len(batches))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Workers)
	for i, batch := range batches {
		i, batch := i, batch
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var local []types.ArbitrageOpportunity
			for _, seed := range batch {
				local = append(local, s.searchFrom(g, seed)...)
			}
			results[i] = local
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var merged []types.ArbitrageOpportunity
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged, nil
}

func batchSeeds(seeds []graph.TokenID, size int) [][]graph.TokenID {
	var batches [][]graph.TokenID
	for len(seeds) > size {
		batches = append(batches, seeds[:size])
		seeds = seeds[size:]
	}
	return append(batches, seeds)
}

// dfsWalk carries the mutable state of one seed's search: the path so
// far and what it already visited, mutated and restored around each
// recursive step. A walk belongs to exactly one goroutine.
type dfsWalk struct {
	scanner *Scanner
	g       *graph.Graph
	seed    graph.TokenID
	visited []bool
	used    map[*types.PoolData]bool
	pools   []*types.PoolData
	tokens  []graph.TokenID
	found   []types.ArbitrageOpportunity
}

func (s *Scanner) searchFrom(g *graph.Graph, seed graph.TokenID) []types.ArbitrageOpportunity {
	w := &dfsWalk{
		scanner: s,
		g:       g,
		seed:    seed,
		visited: make([]bool, g.TokenCount()),
		used:    make(map[*types.PoolData]bool),
	}
	w.visited[seed] = true
	w.tokens = append(w.tokens, seed)
	w.step(seed, 0)
	return w.found
}

// step extends the path from the given token, sitting depth hops away
// from the seed. A hop back to the seed closes a cycle; any other
// unvisited neighbor extends the path while hops remain.
func (w *dfsWalk) step(at graph.TokenID, depth int) {
	for next, pools := range w.g.Neighbors(at) {
		switch {
		case next == w.seed:
			for _, pool := range pools {
				if w.used[pool] {
					continue
				}
				w.pools = append(w.pools, pool)
				w.emit()
				w.pools = w.pools[:len(w.pools)-1]
			}
		case !w.visited[next] && depth+1 < w.scanner.cfg.MaxHops:
			for _, pool := range pools {
				if w.used[pool] {
					continue
				}
				w.visited[next] = true
				w.used[pool] = true
				w.pools = append(w.pools, pool)
				w.tokens = append(w.tokens, next)

				w.step(next, depth+1)

				w.tokens = w.tokens[:len(w.tokens)-1]
				w.pools = w.pools[:len(w.pools)-1]
				w.used[pool] = false
				w.visited[next] = false
			}
		}
	}
}

func (w *dfsWalk) emit() {
	c := cycle{pools: w.pools, tokens: w.tokens}
	if opp, ok := w.scanner.cycleOpportunity(w.g, c); ok {
		w.found = append(w.found, opp)
	}
}
