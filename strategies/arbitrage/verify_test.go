package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils/testutils"
)

func TestVerifyPricesOverridesStaleQuote(t *testing.T) {
	pool := testutils.NewPool(1, types.ExchangeRaydium, solToken, usdcToken,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	require.InDelta(t, 100.0, pool.Price, 1e-9)

	pool.Price = 250 // far off the reserve-implied 100

	s := testScanner(t, testConfig())
	verified := s.verifyPrices([]types.PoolData{pool})
	require.Len(t, verified, 1)
	assert.InDelta(t, 100.0, verified[0].Price, 1e-9)
}

func TestVerifyPricesKeepsQuoteWithinTolerance(t *testing.T) {
	pool := testutils.NewPool(1, types.ExchangeRaydium, solToken, usdcToken,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	pool.Price = 104 // 4% off, inside the 5% band

	s := testScanner(t, testConfig())
	verified := s.verifyPrices([]types.PoolData{pool})
	assert.InDelta(t, 104.0, verified[0].Price, 1e-9)

	pool.Price = 105 // exactly at the band edge stays too
	verified = s.verifyPrices([]types.PoolData{pool})
	assert.InDelta(t, 105.0, verified[0].Price, 1e-9)
}

func TestVerifyPricesFillsMissingQuote(t *testing.T) {
	pool := testutils.NewPool(1, types.ExchangeRaydium, solToken, usdcToken,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	pool.Price = 0

	s := testScanner(t, testConfig())
	verified := s.verifyPrices([]types.PoolData{pool})
	assert.InDelta(t, 100.0, verified[0].Price, 1e-9)
}

func TestVerifyPricesDoesNotMutateInput(t *testing.T) {
	pool := testutils.NewPool(1, types.ExchangeRaydium, solToken, usdcToken,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	pool.Price = 250
	snapshot := []types.PoolData{pool}

	s := testScanner(t, testConfig())
	_ = s.verifyPrices(snapshot)
	assert.InDelta(t, 250.0, snapshot[0].Price, 1e-9)
}

func TestVerifyPricesSkipsDegeneratePool(t *testing.T) {
	pool := testutils.NewPool(1, types.ExchangeRaydium, solToken, usdcToken,
		testutils.Sol(1000), testutils.Units(100_000, 6), 30)
	pool.ReserveB = nil
	pool.Price = 123

	s := testScanner(t, testConfig())
	verified := s.verifyPrices([]types.PoolData{pool})
	assert.InDelta(t, 123.0, verified[0].Price, 1e-9, "no implied price to correct against")
}
