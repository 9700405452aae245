package sizing

import (
	"math"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// RiskParitySizer sizes positions inversely proportional to volatility so
// each contributes comparable risk to the portfolio. The composite score
// still nudges the result within a narrow band.
type RiskParitySizer struct {
	cfg RiskParityConfig
	log zerolog.Logger
}

// NewRiskParitySizer creates a risk-parity sizer
func NewRiskParitySizer(cfg RiskParityConfig, log zerolog.Logger) *RiskParitySizer {
	return &RiskParitySizer{
		cfg: cfg,
		log: log.With().Str("component", "risk_parity_sizer").Logger(),
	}
}

// Size returns max(minSize, baseSize * volWeight * scoreAdj) where volWeight
// targets the configured portfolio volatility against the stock's own
// volatility (default assumed when unknown, floored to avoid blowups).
func (s *RiskParitySizer) Size(candidate domain.ScoredCandidate, baseSize, minSize float64) float64 {
	stockVol := s.cfg.DefaultVolatility
	if candidate.Volatility != nil {
		stockVol = *candidate.Volatility
	}

	volWeight := clamp(
		s.cfg.TargetVolatility/math.Max(stockVol, s.cfg.MinVolatilityFloor),
		s.cfg.MinVolWeight,
		s.cfg.MaxVolWeight,
	)

	scoreAdj := clamp(1.0+(candidate.StockScore-0.5)*0.2, 0.9, 1.1)

	size := math.Max(minSize, baseSize*volWeight*scoreAdj)

	s.log.Debug().
		Str("symbol", candidate.Symbol).
		Float64("stock_vol", stockVol).
		Float64("vol_weight", volWeight).
		Float64("score_adj", scoreAdj).
		Float64("size", size).
		Msg("Risk parity position size")

	return size
}
