package sizing

import (
	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// Strategy sizes a single candidate given a base allocation and a floor.
// Implementations are total over valid numeric input and never return less
// than minSize; callers validate baseSize > 0 upstream.
type Strategy interface {
	Size(candidate domain.ScoredCandidate, baseSize, minSize float64) float64
}

// ConvictionSizer scales the base trade size by how convinced the scoring
// cycle is about a candidate: composite score, operator priority, volatility
// and an optional risk-adjusted-return score each contribute a bounded
// multiplier.
type ConvictionSizer struct {
	cfg        ConvictionConfig
	riskScores RiskScoreSource // optional, may be nil
	log        zerolog.Logger
}

// NewConvictionSizer creates a conviction-based sizer. riskScores may be nil.
func NewConvictionSizer(cfg ConvictionConfig, riskScores RiskScoreSource, log zerolog.Logger) *ConvictionSizer {
	return &ConvictionSizer{
		cfg:        cfg,
		riskScores: riskScores,
		log:        log.With().Str("component", "conviction_sizer").Logger(),
	}
}

// Size returns the clamped monetary amount for a candidate.
//
// A score of 0.5 is neutral (multiplier 1.0); the score moves the size by
// up to +-20%. Priority contributes up to +-10%. Known volatility above 15%
// annualized dampens the size down to half. The final amount stays within
// [minSize, baseSize * MaxSizeFactor].
func (s *ConvictionSizer) Size(candidate domain.ScoredCandidate, baseSize, minSize float64) float64 {
	convictionMult := clamp(
		0.8+(candidate.StockScore-0.5)*0.8,
		s.cfg.MinConvictionMult,
		s.cfg.MaxConvictionMult,
	)

	combinedPriority := candidate.CombinedPriority
	if combinedPriority == 0 {
		combinedPriority = candidate.CalculateCombinedPriority()
	}
	priorityMult := clamp(
		0.9+(combinedPriority/3)*0.2,
		s.cfg.MinPriorityMult,
		s.cfg.MaxPriorityMult,
	)

	volMult := 1.0
	if candidate.Volatility != nil {
		volMult = 1.0 - (*candidate.Volatility-0.15)*0.5
		if volMult < s.cfg.MinVolMult {
			volMult = s.cfg.MinVolMult
		}
	}

	riskMult := s.riskMultiplier(candidate.Symbol)

	size := baseSize * convictionMult * priorityMult * volMult * riskMult
	size = clamp(size, minSize, baseSize*s.cfg.MaxSizeFactor)

	s.log.Debug().
		Str("symbol", candidate.Symbol).
		Float64("conviction_mult", convictionMult).
		Float64("priority_mult", priorityMult).
		Float64("vol_mult", volMult).
		Float64("risk_mult", riskMult).
		Float64("size", size).
		Msg("Conviction position size")

	return size
}

// riskMultiplier maps a risk-adjusted-return score (e.g. Sortino ratio) to a
// bounded sizing adjustment. Missing scores are neutral.
func (s *ConvictionSizer) riskMultiplier(symbol string) float64 {
	if s.riskScores == nil {
		return 1.0
	}
	score := s.riskScores.RiskAdjustedScore(symbol)
	if score == nil {
		return 1.0
	}

	switch {
	case *score > 2.0:
		return 1.15
	case *score > 1.5:
		return 1.05
	case *score < 0.5:
		return 0.8
	case *score < 1.0:
		return 0.9
	default:
		return 1.0
	}
}
