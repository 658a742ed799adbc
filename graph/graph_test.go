package graph

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils/testutils"
)

func TestBuildExcludesDegeneratePools(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	usdc := testutils.Token(2, "USDC", 6)

	healthy := testutils.NewPool(1, types.ExchangeRaydium, sol, usdc,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)

	zeroReserve := testutils.NewPool(2, types.ExchangeOrca, sol, usdc,
		big.NewInt(0), testutils.Units(50_000, 6), 30)

	addressless := testutils.NewPool(3, types.ExchangeOrca, sol, usdc,
		testutils.Sol(500), testutils.Units(51_000, 6), 30)
	addressless.Address = solana.PublicKey{}

	nilReserve := testutils.NewPool(4, types.ExchangeMeteora, sol, usdc,
		nil, testutils.Units(10_000, 6), 20)

	g := Build([]types.PoolData{healthy, zeroReserve, addressless, nilReserve})

	assert.Equal(t, 2, g.TokenCount())

	solID, ok := g.IDOf(sol.Mint)
	require.True(t, ok)
	usdcID, ok := g.IDOf(usdc.Mint)
	require.True(t, ok)

	pools := g.PoolsBetween(solID, usdcID)
	require.Len(t, pools, 1)
	assert.Equal(t, healthy.Address, pools[0].Address)
}

func TestBuildEmptyWhenOnlyDegeneratePools(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	usdc := testutils.Token(2, "USDC", 6)

	dead := testutils.NewPool(1, types.ExchangeRaydium, sol, usdc,
		big.NewInt(0), big.NewInt(0), 30)

	g := Build([]types.PoolData{dead})
	assert.Zero(t, g.TokenCount())
	assert.Empty(t, g.Pools())
	assert.Nil(t, g.TopTokensByTVL(10))
}

func TestBuildKeepsMultiEdges(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	usdc := testutils.Token(2, "USDC", 6)

	pool1 := testutils.NewPool(1, types.ExchangeRaydium, sol, usdc,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	pool2 := testutils.NewPool(2, types.ExchangeOrca, sol, usdc,
		testutils.Sol(800), testutils.Units(81_000, 6), 25)

	g := Build([]types.PoolData{pool1, pool2})

	solID, _ := g.IDOf(sol.Mint)
	usdcID, _ := g.IDOf(usdc.Mint)

	require.Len(t, g.PoolsBetween(solID, usdcID), 2)
	require.Len(t, g.PoolsBetween(usdcID, solID), 2)

	neighbors := g.Neighbors(solID)
	require.Contains(t, neighbors, usdcID)
	assert.Len(t, neighbors[usdcID], 2)
}

func TestBuildAdjacencyIsBidirectional(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	tka := testutils.Token(2, "TKA", 9)
	tkb := testutils.Token(3, "TKB", 9)

	g := Build([]types.PoolData{
		testutils.NewPool(1, types.ExchangeRaydium, sol, tka, testutils.Sol(100), testutils.Sol(101), 30),
		testutils.NewPool(2, types.ExchangeOrca, tka, tkb, testutils.Sol(100), testutils.Sol(99), 30),
	})

	assert.Equal(t, 3, g.TokenCount())

	tkaID, _ := g.IDOf(tka.Mint)
	assert.Len(t, g.Neighbors(tkaID), 2)

	tkbID, _ := g.IDOf(tkb.Mint)
	require.Len(t, g.PoolsBetween(tkbID, tkaID), 1)
}

func TestTopTokensByTVL(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	usdc := testutils.Token(2, "USDC", 6)
	bonk := testutils.Token(3, "BONK", 5)

	solUsdc := testutils.NewPool(1, types.ExchangeRaydium, sol, usdc,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	solUsdc.TVL = 200_000

	bonkUsdc := testutils.NewPool(2, types.ExchangeOrca, bonk, usdc,
		testutils.Units(1_000_000, 5), testutils.Units(5_000, 6), 30)
	bonkUsdc.TVL = 10_000

	g := Build([]types.PoolData{solUsdc, bonkUsdc})

	top := g.TopTokensByTVL(2)
	require.Len(t, top, 2)

	usdcID, _ := g.IDOf(usdc.Mint)
	solID, _ := g.IDOf(sol.Mint)

	// USDC sits in both pools so it aggregates the most TVL.
	assert.Equal(t, usdcID, top[0])
	assert.Equal(t, solID, top[1])

	all := g.TopTokensByTVL(100)
	assert.Len(t, all, 3)
}

func TestTopTokensByTVLStableWithoutData(t *testing.T) {
	sol := testutils.Token(1, "SOL", 9)
	tka := testutils.Token(2, "TKA", 9)

	g := Build([]types.PoolData{
		testutils.NewPool(1, types.ExchangeRaydium, sol, tka, testutils.Sol(10), testutils.Sol(10), 30),
	})

	top := g.TopTokensByTVL(5)
	require.Len(t, top, 2)

	solID, _ := g.IDOf(sol.Mint)
	tkaID, _ := g.IDOf(tka.Mint)
	assert.Equal(t, []TokenID{solID, tkaID}, top)
}
