// Package raydium fetches AMM pool snapshots from the Raydium pairs
// API.
package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solanum-labs/arbscan/types"
)

const (
	DefaultEndpoint = "https://api.raydium.io/v2/main/pairs"

	// defaultFeeBps is the standard Raydium AMM swap fee.
	defaultFeeBps = 25
)

// Options configures the client. Zero values select sane defaults.
type Options struct {
	Endpoint       string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	MinTVL         float64
	Logger         *zap.Logger
}

// Client fetches and normalizes Raydium pairs.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	minTVL   float64
	logger   *zap.Logger
}

func New(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		minTVL:   opts.MinTVL,
		logger:   logger,
	}
}

func (c *Client) Name() string {
	return string(types.ExchangeRaydium)
}

// pairInfo mirrors one entry of the pairs endpoint. Reserves come as
// UI-unit decimal strings and are rescaled to base units.
type pairInfo struct {
	AmmID         string  `json:"ammId"`
	Name          string  `json:"name"`
	BaseMint      string  `json:"baseMint"`
	QuoteMint     string  `json:"quoteMint"`
	BaseSymbol    string  `json:"baseSymbol"`
	QuoteSymbol   string  `json:"quoteSymbol"`
	BaseDecimals  uint8   `json:"baseDecimals"`
	QuoteDecimals uint8   `json:"quoteDecimals"`
	BaseReserve   string  `json:"baseReserve"`
	QuoteReserve  string  `json:"quoteReserve"`
	FeeBps        uint16  `json:"feeBps"`
	Price         float64 `json:"price"`
	Volume24h     float64 `json:"volume24h"`
	Liquidity     float64 `json:"liquidity"`
}

func (c *Client) FetchPools(ctx context.Context) ([]types.PoolData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("raydium pairs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raydium pairs request: unexpected status %s", resp.Status)
	}

	var pairs []pairInfo
	if err := json.NewDecoder(resp.Body).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("raydium pairs decode: %w", err)
	}

	pools := make([]types.PoolData, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Liquidity < c.minTVL {
			continue
		}
		pool, err := c.parsePair(pair)
		if err != nil {
			c.logger.Debug("Skipping unparseable pair",
				zap.String("ammId", pair.AmmID),
				zap.Error(err),
			)
			continue
		}
		if !pool.Tradable() {
			continue
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func (c *Client) parsePair(pair pairInfo) (types.PoolData, error) {
	address, err := solana.PublicKeyFromBase58(pair.AmmID)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid ammId: %w", err)
	}
	baseMint, err := solana.PublicKeyFromBase58(pair.BaseMint)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid baseMint: %w", err)
	}
	quoteMint, err := solana.PublicKeyFromBase58(pair.QuoteMint)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid quoteMint: %w", err)
	}

	baseReserve, err := reserveUnits(pair.BaseReserve, pair.BaseDecimals)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid baseReserve: %w", err)
	}
	quoteReserve, err := reserveUnits(pair.QuoteReserve, pair.QuoteDecimals)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid quoteReserve: %w", err)
	}

	baseSymbol, quoteSymbol := pair.BaseSymbol, pair.QuoteSymbol
	if baseSymbol == "" || quoteSymbol == "" {
		baseSymbol, quoteSymbol = splitPairName(pair.Name)
	}

	feeBps := pair.FeeBps
	if feeBps == 0 {
		feeBps = defaultFeeBps
	}

	return types.PoolData{
		Address:  address,
		Exchange: types.ExchangeRaydium,
		TokenA: types.TokenInfo{
			Mint:     baseMint,
			Symbol:   baseSymbol,
			Decimals: pair.BaseDecimals,
		},
		TokenB: types.TokenInfo{
			Mint:     quoteMint,
			Symbol:   quoteSymbol,
			Decimals: pair.QuoteDecimals,
		},
		ReserveA: baseReserve,
		ReserveB: quoteReserve,
		FeeBps:   feeBps,
		Price:    pair.Price,
		Volume24: pair.Volume24h,
		TVL:      pair.Liquidity,
	}, nil
}

// reserveUnits rescales a UI-unit decimal string into the token's
// smallest unit, truncating any sub-unit remainder.
func reserveUnits(raw string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

func splitPairName(name string) (string, string) {
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}
