// Package orca fetches whirlpool snapshots from the Orca pool listing
// API.
package orca

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solanum-labs/arbscan/types"
)

const (
	DefaultEndpoint = "https://api.orca.so/v1/whirlpool/list"

	// defaultFeeBps applies when the listing omits the pool fee rate.
	defaultFeeBps = 30
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

// Client fetches and normalizes Orca whirlpools.
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
	return string(types.ExchangeOrca)
}

type listResponse struct {
	Whirlpools []poolInfo `json:"whirlpools"`
}

type poolInfo struct {
	Address   string     `json:"address"`
	TokenA    mintInfo   `json:"tokenA"`
	TokenB    mintInfo   `json:"tokenB"`
	BalanceA  string     `json:"balanceA"`
	BalanceB  string     `json:"balanceB"`
	Price     float64    `json:"price"`
	LpFeeRate float64    `json:"lpFeeRate"`
	TVL       float64    `json:"tvl"`
	Volume    volumeInfo `json:"volume"`
}

type mintInfo struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type volumeInfo struct {
	Day float64 `json:"day"`
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
		return nil, fmt.Errorf("orca whirlpool request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orca whirlpool request: unexpected status %s", resp.Status)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("orca whirlpool decode: %w", err)
	}

	pools := make([]types.PoolData, 0, len(list.Whirlpools))
	for _, info := range list.Whirlpools {
		if info.TVL < c.minTVL {
			continue
		}
		pool, err := c.parsePool(info)
		if err != nil {
			c.logger.Debug("Skipping unparseable whirlpool",
				zap.String("address", info.Address),
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

func (c *Client) parsePool(info poolInfo) (types.PoolData, error) {
	address, err := solana.PublicKeyFromBase58(info.Address)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid address: %w", err)
	}
	mintA, err := solana.PublicKeyFromBase58(info.TokenA.Mint)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid tokenA mint: %w", err)
	}
	mintB, err := solana.PublicKeyFromBase58(info.TokenB.Mint)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid tokenB mint: %w", err)
	}

	reserveA, err := balanceUnits(info.BalanceA, info.TokenA.Decimals)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid balanceA: %w", err)
	}
	reserveB, err := balanceUnits(info.BalanceB, info.TokenB.Decimals)
	if err != nil {
		return types.PoolData{}, fmt.Errorf("invalid balanceB: %w", err)
	}

	feeBps := uint16(defaultFeeBps)
	if info.LpFeeRate > 0 {
		feeBps = uint16(math.Round(info.LpFeeRate * 10_000))
	}

	return types.PoolData{
		Address:  address,
		Exchange: types.ExchangeOrca,
		TokenA: types.TokenInfo{
			Mint:     mintA,
			Symbol:   info.TokenA.Symbol,
			Decimals: info.TokenA.Decimals,
		},
		TokenB: types.TokenInfo{
			Mint:     mintB,
			Symbol:   info.TokenB.Symbol,
			Decimals: info.TokenB.Decimals,
		},
		ReserveA: reserveA,
		ReserveB: reserveB,
		FeeBps:   feeBps,
		Price:    info.Price,
		Volume24: info.Volume.Day,
		TVL:      info.TVL,
	}, nil
}

// balanceUnits rescales a UI-unit decimal string into the token's
// smallest unit, truncating any sub-unit remainder.
func balanceUnits(raw string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}
