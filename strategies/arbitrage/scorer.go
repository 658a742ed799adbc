package arbitrage

import (
	"bytes"
	"math"
	"math/big"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/solanum-labs/arbscan/types"
	mathutil "github.com/solanum-labs/arbscan/utils/math"
)

// Scoring weights. Absolute profit dominates, then path length,
// confidence, and relative return.
const (
	scoreProfitWeight     = 1000.0
	scoreHopWeight        = 10.0
	scoreConfidenceWeight = 50.0
	scorePercentWeight    = 10.0

	scoreHopBaseline = 10
)

// Candidate-count bands steering the adaptive profit floors.
const (
	crowdedScanCandidates = 20
	sparseScanCandidates  = 5
)

func confidenceScore(profitPercent float64, hops int) float64 {
	confidence := 0.5
	switch {
	case profitPercent > 1.0:
		confidence += 0.3
	case profitPercent > 0.5:
		confidence += 0.2
	case profitPercent > 0.1:
		confidence += 0.1
	}
	switch {
	case hops <= 2:
		confidence += 0.2
	case hops <= 3:
		confidence += 0.1
	default:
		confidence -= 0.1
	}
	return math.Min(1, math.Max(0, confidence))
}

// score ranks an opportunity. Net profit is normalized to whole
// reference units so the dominant term stays comparable to the rest.
func score(opp *types.ArbitrageOpportunity) float64 {
	netUnits := mathutil.ToFloat(opp.NetProfit) / float64(types.DefaultReferenceLamports)
	return scoreProfitWeight*netUnits +
		scoreHopWeight*float64(scoreHopBaseline-opp.Path.Hops) +
		scoreConfidenceWeight*opp.Confidence +
		scorePercentWeight*opp.ProfitPercent
}

// endpointKey hashes the unordered first/last pool pair of a path.
// Ignoring order makes rotated rediscoveries and the two traversal
// directions of one loop collide, which is the point.
func endpointKey(opp *types.ArbitrageOpportunity) uint64 {
	first := opp.Path.FirstPool()
	last := opp.Path.LastPool()
	lo, hi := first[:], last[:]
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	h := xxhash.New()
	h.Write(lo)
	h.Write(hi)
	return h.Sum64()
}

// dedupe collapses candidates sharing path endpoints. The survivor is
// picked by an order-independent contest so concurrently produced
// strategy output always merges to the same result: higher gross
// profit wins, then fewer hops, then the smaller endpoint addresses.
func dedupe(candidates []types.ArbitrageOpportunity) []types.ArbitrageOpportunity {
	if len(candidates) <= 1 {
		return candidates
	}
	index := make(map[uint64]int, len(candidates))
	kept := make([]types.ArbitrageOpportunity, 0, len(candidates))
	for i := range candidates {
		key := endpointKey(&candidates[i])
		at, ok := index[key]
		if !ok {
			index[key] = len(kept)
			kept = append(kept, candidates[i])
			continue
		}
		if betterCandidate(&candidates[i], &kept[at]) {
			kept[at] = candidates[i]
		}
	}
	return kept
}

func betterCandidate(a, b *types.ArbitrageOpportunity) bool {
	if cmp := a.GrossProfit.Cmp(b.GrossProfit); cmp != 0 {
		return cmp > 0
	}
	if a.Path.Hops != b.Path.Hops {
		return a.Path.Hops < b.Path.Hops
	}
	return pathOrder(a, b) < 0
}

// pathOrder is a total order on paths by their endpoint addresses,
// the final deterministic tie-break everywhere one is needed.
func pathOrder(a, b *types.ArbitrageOpportunity) int {
	af, bf := a.Path.FirstPool(), b.Path.FirstPool()
	if cmp := bytes.Compare(af[:], bf[:]); cmp != 0 {
		return cmp
	}
	al, bl := a.Path.LastPool(), b.Path.LastPool()
	return bytes.Compare(al[:], bl[:])
}

// applyThreshold drops candidates under the adaptive profit floors.
// The configured floors tighten when a scan is crowded and relax when
// it is sparse, and never fall below half the observed mean, so one
// static setting keeps working as market conditions move.
func (s *Scanner) applyThreshold(candidates []types.ArbitrageOpportunity) []types.ArbitrageOpportunity {
	if s.cfg.ShowUnprofitable || len(candidates) == 0 {
		return candidates
	}

	num, den := int64(1), int64(1)
	switch {
	case len(candidates) > crowdedScanCandidates:
		num, den = 12, 10
	case len(candidates) < sparseScanCandidates:
		num, den = 8, 10
	}

	nets := make([]*big.Int, len(candidates))
	meanPercent := 0.0
	for i := range candidates {
		nets[i] = candidates[i].NetProfit
		meanPercent += candidates[i].ProfitPercent
	}
	meanPercent /= float64(len(candidates))

	absFloor := mathutil.Max(
		mathutil.ScaleByRatio(s.cfg.MinProfitThreshold, num, den),
		new(big.Int).Div(mathutil.Mean(nets), big.NewInt(2)),
	)
	pctFloor := math.Max(s.cfg.MinProfitPercent*float64(num)/float64(den), meanPercent/2)

	kept := make([]types.ArbitrageOpportunity, 0, len(candidates))
	for i := range candidates {
		if candidates[i].NetProfit.Cmp(absFloor) < 0 {
			continue
		}
		if candidates[i].ProfitPercent < pctFloor {
			continue
		}
		kept = append(kept, candidates[i])
	}
	return kept
}

// scoreAndSort orders the survivors best first. Equal scores fall back
// to the deduplicator's total order so output is reproducible run to
// run.
func (s *Scanner) scoreAndSort(opps []types.ArbitrageOpportunity) []types.ArbitrageOpportunity {
	scores := make([]float64, len(opps))
	for i := range opps {
		scores[i] = score(&opps[i])
	}
	order := make([]int, len(opps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		i, j := order[x], order[y]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		if cmp := opps[i].GrossProfit.Cmp(opps[j].GrossProfit); cmp != 0 {
			return cmp > 0
		}
		return pathOrder(&opps[i], &opps[j]) < 0
	})

	ranked := make([]types.ArbitrageOpportunity, len(opps))
	for x, i := range order {
		ranked[x] = opps[i]
	}
	return ranked
}
