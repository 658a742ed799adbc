package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils/testutils"
)

type fakeFetcher struct {
	name  string
	pools []types.PoolData
	err   error
}

func (f *fakeFetcher) Name() string {
	return f.name
}

func (f *fakeFetcher) FetchPools(context.Context) ([]types.PoolData, error) {
	return f.pools, f.err
}

func testPools(seeds ...uint64) []types.PoolData {
	sol := testutils.Token(1, "SOL", 9)
	usdc := testutils.Token(2, "USDC", 6)

	pools := make([]types.PoolData, 0, len(seeds))
	for _, seed := range seeds {
		pools = append(pools, testutils.NewPool(seed, types.ExchangeRaydium,
			sol, usdc, testutils.Sol(1_000), testutils.Units(155_000, 6), 25))
	}
	return pools
}

func TestCollectMergesInFetcherOrder(t *testing.T) {
	first := &fakeFetcher{name: "first", pools: testPools(1, 2)}
	second := &fakeFetcher{name: "second", pools: testPools(3)}

	merged, err := NewCollector([]Fetcher{first, second}).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, merged, 3)

	assert.Equal(t, testutils.PoolAccount(1), merged[0].Address)
	assert.Equal(t, testutils.PoolAccount(2), merged[1].Address)
	assert.Equal(t, testutils.PoolAccount(3), merged[2].Address)
}

func TestCollectToleratesOneFailure(t *testing.T) {
	healthy := &fakeFetcher{name: "healthy", pools: testPools(1)}
	broken := &fakeFetcher{name: "broken", err: errors.New("api down")}

	merged, err := NewCollector([]Fetcher{broken, healthy}).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, testutils.PoolAccount(1), merged[0].Address)
}

func TestCollectFailsWhenAllFetchersFail(t *testing.T) {
	first := &fakeFetcher{name: "first", err: errors.New("api down")}
	second := &fakeFetcher{name: "second", err: errors.New("timeout")}

	_, err := NewCollector([]Fetcher{first, second}).Collect(context.Background())
	assert.ErrorIs(t, err, ErrAllFetchersFailed)
}

func TestCollectWithNoFetchers(t *testing.T) {
	merged, err := NewCollector(nil).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestCollectAcceptsEmptySnapshot(t *testing.T) {
	empty := &fakeFetcher{name: "empty"}

	merged, err := NewCollector([]Fetcher{empty}).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, merged)
}
