package types

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Exchange identifies the DEX a pool was sourced from.
type Exchange string

const (
	ExchangeRaydium  Exchange = "raydium"
	ExchangeOrca     Exchange = "orca"
	ExchangeMeteora  Exchange = "meteora"
	ExchangeLifinity Exchange = "lifinity"
	ExchangePhoenix  Exchange = "phoenix"
	ExchangeUnknown  Exchange = "unknown"
)

// TokenInfo identifies a token. Immutable once constructed.
type TokenInfo struct {
	Mint     solana.PublicKey `json:"mint"`
	Symbol   string           `json:"symbol"`
	Decimals uint8            `json:"decimals"`
}

// PoolData is a snapshot of one constant-product liquidity pool.
// Reserves are in each token's smallest unit. Price is advisory
// (tokenB per tokenA) and must always be re-derivable from reserves.
type PoolData struct {
	Address  solana.PublicKey `json:"address"`
	Exchange Exchange         `json:"exchange"`
	TokenA   TokenInfo        `json:"tokenA"`
	TokenB   TokenInfo        `json:"tokenB"`
	ReserveA *big.Int         `json:"reserveA"`
	ReserveB *big.Int         `json:"reserveB"`
	FeeBps   uint16           `json:"feeBps"`
	Price    float64          `json:"price"`
	Volume24 float64          `json:"volume24,omitempty"`
	TVL      float64          `json:"tvl,omitempty"`
}

// Tradable reports whether the pool can carry a swap. Pools without an
// on-chain address or with an empty reserve are placeholders and must
// never become graph edges.
func (p *PoolData) Tradable() bool {
	if p.Address.IsZero() {
		return false
	}
	if p.ReserveA == nil || p.ReserveB == nil {
		return false
	}
	return p.ReserveA.Sign() > 0 && p.ReserveB.Sign() > 0
}

// HasToken reports whether mint is one of the pool's two sides.
func (p *PoolData) HasToken(mint solana.PublicKey) bool {
	return p.TokenA.Mint.Equals(mint) || p.TokenB.Mint.Equals(mint)
}

// TokenFor returns the pool side matching mint. The boolean is false
// when the mint is not part of the pool.
func (p *PoolData) TokenFor(mint solana.PublicKey) (TokenInfo, bool) {
	switch {
	case p.TokenA.Mint.Equals(mint):
		return p.TokenA, true
	case p.TokenB.Mint.Equals(mint):
		return p.TokenB, true
	}
	return TokenInfo{}, false
}

// OtherToken returns the counterparty side for mint.
func (p *PoolData) OtherToken(mint solana.PublicKey) (TokenInfo, bool) {
	switch {
	case p.TokenA.Mint.Equals(mint):
		return p.TokenB, true
	case p.TokenB.Mint.Equals(mint):
		return p.TokenA, true
	}
	return TokenInfo{}, false
}

// ReserveFor returns the reserve backing mint's side of the pool.
func (p *PoolData) ReserveFor(mint solana.PublicKey) *big.Int {
	switch {
	case p.TokenA.Mint.Equals(mint):
		return p.ReserveA
	case p.TokenB.Mint.Equals(mint):
		return p.ReserveB
	}
	return nil
}

// SpotPrice recomputes the pool's price from reserves, as tokenB per
// tokenA adjusted for decimals. Returns 0 when either reserve is empty.
func (p *PoolData) SpotPrice() float64 {
	if p.ReserveA == nil || p.ReserveB == nil || p.ReserveA.Sign() <= 0 || p.ReserveB.Sign() <= 0 {
		return 0
	}
	a := new(big.Float).SetInt(p.ReserveA)
	b := new(big.Float).SetInt(p.ReserveB)
	a.Quo(a, decimalScale(p.TokenA.Decimals))
	b.Quo(b, decimalScale(p.TokenB.Decimals))
	out, _ := new(big.Float).Quo(b, a).Float64()
	return out
}

// PriceIn returns the reserve-derived price of the pool quoted with
// base as the unit token: counterparty tokens received per one base
// token. Returns 0 when base is not in the pool or a reserve is empty.
func (p *PoolData) PriceIn(base solana.PublicKey) float64 {
	spot := p.SpotPrice()
	if spot == 0 {
		return 0
	}
	if p.TokenA.Mint.Equals(base) {
		return spot
	}
	if p.TokenB.Mint.Equals(base) {
		return 1 / spot
	}
	return 0
}

func decimalScale(decimals uint8) *big.Float {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Float).SetInt(scale)
}

// PathType tags how an arbitrage path was found and shaped.
type PathType string

const (
	PathTypeSimple        PathType = "simple"
	PathTypeMultiHop      PathType = "multi-hop"
	PathTypeCrossProtocol PathType = "cross-protocol"
)

// ArbitrageStep is one leg of a path: a single swap through one pool.
// Steps chain, each step's output token is the next step's input token.
type ArbitrageStep struct {
	Pool      solana.PublicKey `json:"pool"`
	Exchange  Exchange         `json:"exchange"`
	TokenIn   TokenInfo        `json:"tokenIn"`
	TokenOut  TokenInfo        `json:"tokenOut"`
	AmountIn  *big.Int         `json:"amountIn"`
	AmountOut *big.Int         `json:"amountOut"`
	Price     float64          `json:"price"`
	FeeBps    uint16           `json:"feeBps"`
}

// ArbitragePath is an ordered sequence of steps closing a cycle: the
// last step's output token equals StartToken.
type ArbitragePath struct {
	Steps      []ArbitrageStep `json:"steps"`
	Type       PathType        `json:"type"`
	StartToken TokenInfo       `json:"startToken"`
	Hops       int             `json:"hops"`
}

// FirstPool returns the pool account of the first step, or the zero key
// for an empty path.
func (p *ArbitragePath) FirstPool() solana.PublicKey {
	if len(p.Steps) == 0 {
		return solana.PublicKey{}
	}
	return p.Steps[0].Pool
}

// LastPool returns the pool account of the final step, or the zero key
// for an empty path.
func (p *ArbitragePath) LastPool() solana.PublicKey {
	if len(p.Steps) == 0 {
		return solana.PublicKey{}
	}
	return p.Steps[len(p.Steps)-1].Pool
}

// ArbitrageOpportunity is the externally visible result of a scan.
// Constructed once by a detection strategy and never mutated after.
type ArbitrageOpportunity struct {
	ID            string        `json:"id"`
	Path          ArbitragePath `json:"path"`
	AmountIn      *big.Int      `json:"amountIn"`
	AmountOut     *big.Int      `json:"amountOut"`
	GrossProfit   *big.Int      `json:"grossProfit"`
	ProfitPercent float64       `json:"profitPercent"`
	GasEstimate   *big.Int      `json:"gasEstimate"`
	NetProfit     *big.Int      `json:"netProfit"`
	Confidence    float64       `json:"confidence"`
	DetectedAt    time.Time     `json:"detectedAt"`
}

// ScannerConfig gates which opportunities survive filtering and bounds
// search depth and breadth. Immutable for the duration of one scan.
type ScannerConfig struct {
	// MinProfitThreshold is the absolute net-profit floor in the start
	// token's smallest unit. Nil means zero.
	MinProfitThreshold *big.Int
	// MinProfitPercent is the relative profit floor, in percent.
	MinProfitPercent float64
	// MaxHops bounds path length for the DFS and the Bellman-Ford
	// relaxation count. Must be positive.
	MaxHops int
	// ShowUnprofitable bypasses both profit filters. Diagnostic mode.
	ShowUnprofitable bool

	// SeedTokens is how many top-liquidity tokens seed the DFS.
	SeedTokens int
	// BellmanFordSeeds is how many top-liquidity tokens seed the
	// negative-cycle search.
	BellmanFordSeeds int
	// BatchSize groups DFS seeds into independently searched batches.
	BatchSize int
	// Workers caps how many seed batches run concurrently.
	Workers int
	// ReferenceAmount is the probe input for multi-hop evaluation, in
	// the start token's smallest unit. Nil selects the default.
	ReferenceAmount *big.Int
}

const (
	DefaultSeedTokens       = 50
	DefaultBellmanFordSeeds = 20
	DefaultBatchSize        = 10
	DefaultWorkers          = 4

	// DefaultReferenceLamports is the 1 SOL probe amount used when a
	// strategy needs a fixed trade size.
	DefaultReferenceLamports = 1_000_000_000
)

// Validate reports structural problems that must stop a scan before any
// detection logic runs.
func (c *ScannerConfig) Validate() error {
	var problems []string
	if c.MaxHops <= 0 {
		problems = append(problems, fmt.Sprintf("maxHops must be positive, got %d", c.MaxHops))
	}
	if c.MinProfitThreshold != nil && c.MinProfitThreshold.Sign() < 0 {
		problems = append(problems, "minProfitThreshold must not be negative")
	}
	if c.MinProfitPercent < 0 {
		problems = append(problems, "minProfitPercent must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid scanner config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Normalized returns a copy with zero-valued tuning knobs replaced by
// defaults. Validate is the caller's job; Normalized never fails.
func (c ScannerConfig) Normalized() ScannerConfig {
	if c.MinProfitThreshold == nil {
		c.MinProfitThreshold = big.NewInt(0)
	}
	if c.SeedTokens <= 0 {
		c.SeedTokens = DefaultSeedTokens
	}
	if c.BellmanFordSeeds <= 0 {
		c.BellmanFordSeeds = DefaultBellmanFordSeeds
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.ReferenceAmount == nil || c.ReferenceAmount.Sign() <= 0 {
		c.ReferenceAmount = big.NewInt(DefaultReferenceLamports)
	}
	return c
}
