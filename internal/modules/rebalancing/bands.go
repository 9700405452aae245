// Package rebalancing decides whether allocation deviations are large
// enough to act on, and whether portfolio conditions warrant running an
// evaluation cycle at all.
package rebalancing

import "math"

// Tiered band widths by effective position size. Large positions get a
// tight band because their errors compound; small positions get a loose
// band to avoid churn on noise.
const (
	largePositionPct  = 0.10
	mediumPositionPct = 0.05

	largePositionBand  = 0.05
	mediumPositionBand = 0.07
	smallPositionBand  = 0.10
)

// BandEvaluator decides whether a position's current-vs-target deviation is
// outside its rebalance band.
type BandEvaluator struct{}

// NewBandEvaluator creates a band evaluator
func NewBandEvaluator() *BandEvaluator {
	return &BandEvaluator{}
}

// IsOutsideBand reports whether the deviation between current and target
// weight exceeds the applicable band.
//
// When explicitBand is non-nil it wins. Otherwise the band is tiered by
// effective position size: positionSizePct when non-nil, else
// max(currentWeight, targetWeight) as a proxy. A deviation exactly equal to
// the band is inside (no action).
func (e *BandEvaluator) IsOutsideBand(currentWeight, targetWeight float64, explicitBand, positionSizePct *float64) bool {
	band := e.BandFor(currentWeight, targetWeight, explicitBand, positionSizePct)
	return math.Abs(currentWeight-targetWeight) > band
}

// BandFor returns the band width that applies to a position
func (e *BandEvaluator) BandFor(currentWeight, targetWeight float64, explicitBand, positionSizePct *float64) float64 {
	if explicitBand != nil {
		return *explicitBand
	}

	size := math.Max(currentWeight, targetWeight)
	if positionSizePct != nil {
		size = *positionSizePct
	}

	switch {
	case size > largePositionPct:
		return largePositionBand
	case size >= mediumPositionPct:
		return mediumPositionBand
	default:
		return smallPositionBand
	}
}
