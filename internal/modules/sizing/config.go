// Package sizing converts scored candidates into monetary trade sizes.
// Two interchangeable strategies are provided: conviction-based sizing and
// risk-parity sizing. Both clamp their output so a single trade can never
// exceed its base allocation by more than the configured headroom.
package sizing

// ConvictionConfig holds the multiplier bounds for conviction-based sizing
type ConvictionConfig struct {
	MinConvictionMult float64 // Lower bound of the score multiplier
	MaxConvictionMult float64 // Upper bound of the score multiplier
	MinPriorityMult   float64 // Lower bound of the priority multiplier
	MaxPriorityMult   float64 // Upper bound of the priority multiplier
	MinVolMult        float64 // Lower bound of the volatility dampener
	MaxSizeFactor     float64 // Max size as a multiple of base size
}

// DefaultConvictionConfig returns the production defaults
func DefaultConvictionConfig() ConvictionConfig {
	return ConvictionConfig{
		MinConvictionMult: 0.8,
		MaxConvictionMult: 1.2,
		MinPriorityMult:   0.9,
		MaxPriorityMult:   1.1,
		MinVolMult:        0.5,
		MaxSizeFactor:     1.2,
	}
}

// RiskParityConfig holds the volatility targeting parameters for
// risk-parity sizing
type RiskParityConfig struct {
	TargetVolatility   float64 // Portfolio-level volatility target
	DefaultVolatility  float64 // Assumed stock volatility when unknown
	MinVolatilityFloor float64 // Floor to avoid dividing by near-zero vol
	MinVolWeight       float64 // Lower bound of the volatility weight
	MaxVolWeight       float64 // Upper bound of the volatility weight
}

// DefaultRiskParityConfig returns the production defaults
func DefaultRiskParityConfig() RiskParityConfig {
	return RiskParityConfig{
		TargetVolatility:   0.15,
		DefaultVolatility:  0.25,
		MinVolatilityFloor: 0.05,
		MinVolWeight:       0.5,
		MaxVolWeight:       2.0,
	}
}

// RiskScoreSource supplies an optional risk-adjusted-return score per symbol
// (e.g. a Sortino ratio from the regime model). A nil source or a nil score
// leaves sizing unadjusted.
type RiskScoreSource interface {
	RiskAdjustedScore(symbol string) *float64
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
