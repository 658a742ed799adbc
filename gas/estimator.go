package gas

import (
	"math"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

// Solana fee model defaults, in lamports. A transaction pays a flat
// signature fee plus a compute/priority budget per swap leg. The
// priority multiplier pads the total to model MEV-protection overhead.
const (
	DefaultBaseFeeLamports    = 5_000
	DefaultPerSwapFeeLamports = 100_000
	DefaultPriorityMultiplier = 1.5
)

// Estimator provides execution-cost estimation for arbitrage paths
type Estimator struct {
	logger             *zap.Logger
	mu                 sync.RWMutex
	baseFee            *big.Int
	perSwapFee         *big.Int
	priorityMultiplier float64
}

// NewEstimator creates an estimator with the default fee model
func NewEstimator(logger *zap.Logger) *Estimator {
	return &Estimator{
		logger:             logger,
		baseFee:            big.NewInt(DefaultBaseFeeLamports),
		perSwapFee:         big.NewInt(DefaultPerSwapFeeLamports),
		priorityMultiplier: DefaultPriorityMultiplier,
	}
}

// SetFees replaces the base and per-swap fees. Nil arguments keep the
// current value.
func (e *Estimator) SetFees(baseFee, perSwapFee *big.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if baseFee != nil && baseFee.Sign() >= 0 {
		e.baseFee = new(big.Int).Set(baseFee)
	}
	if perSwapFee != nil && perSwapFee.Sign() >= 0 {
		e.perSwapFee = new(big.Int).Set(perSwapFee)
	}
}

// SetPriorityMultiplier replaces the priority padding factor.
// Multipliers below 1 are ignored, the padding never discounts fees.
func (e *Estimator) SetPriorityMultiplier(multiplier float64) {
	if multiplier < 1 {
		if e.logger != nil {
			e.logger.Warn("Ignoring priority multiplier below 1", zap.Float64("multiplier", multiplier))
		}
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.priorityMultiplier = multiplier
}

// EstimatePathCost returns the lamport cost of executing a path with
// the given number of swap legs: (base + legs * perSwap) * priority.
func (e *Estimator) EstimatePathCost(hops int) *big.Int {
	if hops < 0 {
		hops = 0
	}

	e.mu.RLock()
	baseFee := new(big.Int).Set(e.baseFee)
	perSwapFee := new(big.Int).Set(e.perSwapFee)
	multiplier := e.priorityMultiplier
	e.mu.RUnlock()

	cost := new(big.Int).Mul(perSwapFee, big.NewInt(int64(hops)))
	cost.Add(cost, baseFee)

	// Multiplier applied in milli-units so the cost stays integral.
	milli := int64(math.Round(multiplier * 1000))
	cost.Mul(cost, big.NewInt(milli))
	return cost.Div(cost, big.NewInt(1000))
}
