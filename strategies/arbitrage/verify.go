package arbitrage

import (
	"math"

	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/types"
)

// priceDeviationTolerance is the largest relative gap between a
// reported pool price and the reserve-implied one before the reported
// value is considered stale and replaced.
const priceDeviationTolerance = 0.05

// verifyPrices returns a copy of the snapshot in which every reported
// price that strays more than priceDeviationTolerance from the
// reserve-implied spot price is overwritten by the implied one.
// Reserves are the source of truth; the reported price is only a hint
// from the fetcher.
func (s *Scanner) verifyPrices(pools []types.PoolData) []types.PoolData {
	verified := make([]types.PoolData, len(pools))
	copy(verified, pools)

	corrected := 0
	for i := range verified {
		implied := verified[i].SpotPrice()
		if implied <= 0 || math.IsNaN(implied) || math.IsInf(implied, 0) {
			continue
		}
		reported := verified[i].Price
		if reported <= 0 {
			verified[i].Price = implied
			corrected++
			continue
		}
		deviation := math.Abs(reported-implied) / implied
		if deviation > priceDeviationTolerance {
			s.logger.Debug("Replacing stale pool price",
				zap.String("pool", verified[i].Address.String()),
				zap.String("exchange", string(verified[i].Exchange)),
				zap.Float64("reported", reported),
				zap.Float64("implied", implied),
				zap.Float64("deviation", deviation))
			verified[i].Price = implied
			corrected++
		}
	}
	if corrected > 0 {
		if s.metrics != nil {
			s.metrics.PricesCorrected.Add(float64(corrected))
		}
		s.logger.Info("Corrected stale pool prices",
			zap.Int("corrected", corrected),
			zap.Int("pools", len(pools)))
	}
	return verified
}
