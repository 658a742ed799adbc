// Package graph builds the token adjacency structure the detection
// strategies search. Mints are interned to dense integer ids so path
// state can live in small maps instead of 32-byte keys.
package graph

import (
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/solanum-labs/arbscan/types"
)

// TokenID is the interned index of a mint inside one graph. Ids are
// only meaningful for the graph that produced them.
type TokenID int32

// Graph is an adjacency map built from one pool snapshot: token ->
// (counterparty -> pools connecting them). Two pools on the same pair
// stay as separate edges, different fees and depth make them
// independently useful. Read-only after Build.
type Graph struct {
	tokens []types.TokenInfo
	ids    map[solana.PublicKey]TokenID
	adj    map[TokenID]map[TokenID][]*types.PoolData
	pools  []types.PoolData
}

// Build constructs the graph from a snapshot. Pools without an on-chain
// address or with an empty reserve never become edges.
func Build(pools []types.PoolData) *Graph {
	g := &Graph{
		ids: make(map[solana.PublicKey]TokenID),
		adj: make(map[TokenID]map[TokenID][]*types.PoolData),
	}

	g.pools = make([]types.PoolData, 0, len(pools))
	for i := range pools {
		if pools[i].Tradable() {
			g.pools = append(g.pools, pools[i])
		}
	}

	for i := range g.pools {
		pool := &g.pools[i]
		a := g.intern(pool.TokenA)
		b := g.intern(pool.TokenB)
		g.link(a, b, pool)
		g.link(b, a, pool)
	}
	return g
}

func (g *Graph) intern(token types.TokenInfo) TokenID {
	if id, ok := g.ids[token.Mint]; ok {
		return id
	}
	id := TokenID(len(g.tokens))
	g.tokens = append(g.tokens, token)
	g.ids[token.Mint] = id
	return id
}

func (g *Graph) link(from, to TokenID, pool *types.PoolData) {
	edges := g.adj[from]
	if edges == nil {
		edges = make(map[TokenID][]*types.PoolData)
		g.adj[from] = edges
	}
	edges[to] = append(edges[to], pool)
}

// TokenCount returns how many distinct mints the graph holds.
func (g *Graph) TokenCount() int {
	return len(g.tokens)
}

// Token returns the interned token for id.
func (g *Graph) Token(id TokenID) types.TokenInfo {
	return g.tokens[int(id)]
}

// IDOf resolves a mint to its interned id.
func (g *Graph) IDOf(mint solana.PublicKey) (TokenID, bool) {
	id, ok := g.ids[mint]
	return id, ok
}

// Neighbors returns the adjacency row for id. Callers must not mutate
// the returned map or slices.
func (g *Graph) Neighbors(id TokenID) map[TokenID][]*types.PoolData {
	return g.adj[id]
}

// PoolsBetween returns every pool connecting a and b, in snapshot order.
func (g *Graph) PoolsBetween(a, b TokenID) []*types.PoolData {
	edges := g.adj[a]
	if edges == nil {
		return nil
	}
	return edges[b]
}

// Pools returns the tradable pools backing the graph's edges.
func (g *Graph) Pools() []*types.PoolData {
	out := make([]*types.PoolData, len(g.pools))
	for i := range g.pools {
		out[i] = &g.pools[i]
	}
	return out
}

// TopTokensByTVL ranks tokens by the aggregate TVL of the pools they
// appear in and returns up to n ids, best first. Ties keep intern
// order so the ranking is stable for snapshots without TVL data.
func (g *Graph) TopTokensByTVL(n int) []TokenID {
	if n <= 0 || len(g.tokens) == 0 {
		return nil
	}

	totals := make([]float64, len(g.tokens))
	for i := range g.pools {
		pool := &g.pools[i]
		if a, ok := g.ids[pool.TokenA.Mint]; ok {
			totals[a] += pool.TVL
		}
		if b, ok := g.ids[pool.TokenB.Mint]; ok {
			totals[b] += pool.TVL
		}
	}

	ids := make([]TokenID, len(g.tokens))
	for i := range ids {
		ids[i] = TokenID(i)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return totals[ids[i]] > totals[ids[j]]
	})

	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}
