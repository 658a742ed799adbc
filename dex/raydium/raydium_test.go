package raydium

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
)

const pairsPayload = `[
  {
    "ammId": "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
    "name": "SOL-USDC",
    "baseMint": "So11111111111111111111111111111111111111112",
    "quoteMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "baseDecimals": 9,
    "quoteDecimals": 6,
    "baseReserve": "1000.5",
    "quoteReserve": "155000.25",
    "price": 154.92,
    "volume24h": 1250000,
    "liquidity": 310000
  },
  {
    "ammId": "this is not base58",
    "name": "BAD-POOL",
    "baseMint": "So11111111111111111111111111111111111111112",
    "quoteMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "baseDecimals": 9,
    "quoteDecimals": 6,
    "baseReserve": "10",
    "quoteReserve": "1550",
    "liquidity": 90000
  },
  {
    "ammId": "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
    "name": "TINY-USDC",
    "baseMint": "So11111111111111111111111111111111111111112",
    "quoteMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "baseDecimals": 9,
    "quoteDecimals": 6,
    "baseReserve": "1",
    "quoteReserve": "155",
    "liquidity": 310
  },
  {
    "ammId": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
    "name": "DRAINED-USDC",
    "baseMint": "So11111111111111111111111111111111111111112",
    "quoteMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "baseDecimals": 9,
    "quoteDecimals": 6,
    "baseReserve": "0",
    "quoteReserve": "155000",
    "liquidity": 155000
  }
]`

func pairsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchPoolsParsesPairs(t *testing.T) {
	server := pairsServer(t, http.StatusOK, pairsPayload)
	client := New(Options{Endpoint: server.URL, MinTVL: 10_000})

	pools, err := client.FetchPools(context.Background())
	require.NoError(t, err)

	// Unparseable, sub-TVL and drained entries are dropped.
	require.Len(t, pools, 1)

	pool := pools[0]
	assert.Equal(t, "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2", pool.Address.String())
	assert.Equal(t, types.ExchangeRaydium, pool.Exchange)
	assert.Equal(t, "SOL", pool.TokenA.Symbol)
	assert.Equal(t, "USDC", pool.TokenB.Symbol)
	assert.Equal(t, uint8(9), pool.TokenA.Decimals)
	assert.Equal(t, uint8(6), pool.TokenB.Decimals)
	assert.Zero(t, pool.ReserveA.Cmp(big.NewInt(1_000_500_000_000)))
	assert.Zero(t, pool.ReserveB.Cmp(big.NewInt(155_000_250_000)))
	assert.Equal(t, uint16(defaultFeeBps), pool.FeeBps)
	assert.Equal(t, 154.92, pool.Price)
	assert.Equal(t, 310_000.0, pool.TVL)
	assert.True(t, pool.Tradable())
}

func TestFetchPoolsServerError(t *testing.T) {
	server := pairsServer(t, http.StatusInternalServerError, "oops")
	client := New(Options{Endpoint: server.URL})

	_, err := client.FetchPools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestFetchPoolsMalformedBody(t *testing.T) {
	server := pairsServer(t, http.StatusOK, "not json at all")
	client := New(Options{Endpoint: server.URL})

	_, err := client.FetchPools(context.Background())
	assert.Error(t, err)
}

func TestFetchPoolsHonorsCancelledContext(t *testing.T) {
	server := pairsServer(t, http.StatusOK, pairsPayload)
	client := New(Options{Endpoint: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPools(ctx)
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "raydium", New(Options{}).Name())
}

func TestReserveUnits(t *testing.T) {
	tests := []struct {
		raw      string
		decimals uint8
		want     int64
	}{
		{"1000.5", 9, 1_000_500_000_000},
		{"0.000001", 6, 1},
		{"0.0000019", 6, 1},
		{"155000", 6, 155_000_000_000},
		{"0", 9, 0},
	}

	for _, tt := range tests {
		got, err := reserveUnits(tt.raw, tt.decimals)
		require.NoError(t, err, tt.raw)
		assert.Zero(t, got.Cmp(big.NewInt(tt.want)), "reserveUnits(%q, %d)", tt.raw, tt.decimals)
	}

	_, err := reserveUnits("not a number", 9)
	assert.Error(t, err)
}

func TestSplitPairName(t *testing.T) {
	base, quote := splitPairName("SOL-USDC")
	assert.Equal(t, "SOL", base)
	assert.Equal(t, "USDC", quote)

	base, quote = splitPairName("WEIRD")
	assert.Equal(t, "WEIRD", base)
	assert.Empty(t, quote)
}
