package sizing

import (
	"testing"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// stubRiskScores returns a fixed score for every symbol
type stubRiskScores struct {
	score *float64
}

func (s stubRiskScores) RiskAdjustedScore(symbol string) *float64 {
	return s.score
}

func floatPtr(v float64) *float64 { return &v }

func TestConvictionSizerNeutralCandidate(t *testing.T) {
	sizer := NewConvictionSizer(DefaultConvictionConfig(), nil, zerolog.Nop())

	// Score 0.5 and multiplier 1.0 are neutral: conviction 1.0, priority
	// ~0.933, no volatility dampening
	candidate := domain.ScoredCandidate{Symbol: "AAPL", StockScore: 0.5, Multiplier: 1.0}
	size := sizer.Size(candidate, 1000, 100)

	assert.GreaterOrEqual(t, size, 100.0)
	assert.LessOrEqual(t, size, 1200.0)
	assert.InDelta(t, 1000*1.0*(0.9+(0.5/3)*0.2)*1.0, size, 1e-9)
}

func TestConvictionSizerMinSizeFloor(t *testing.T) {
	sizer := NewConvictionSizer(DefaultConvictionConfig(), nil, zerolog.Nop())

	candidate := domain.ScoredCandidate{Symbol: "AAPL", StockScore: 0.5, Multiplier: 1.0}
	size := sizer.Size(candidate, 50, 100)

	assert.Equal(t, 100.0, size, "min size floor applies when base is small")
}

func TestConvictionSizerBounds(t *testing.T) {
	sizer := NewConvictionSizer(DefaultConvictionConfig(), nil, zerolog.Nop())

	tests := []struct {
		name      string
		candidate domain.ScoredCandidate
	}{
		{
			name:      "max score low vol",
			candidate: domain.ScoredCandidate{StockScore: 1.0, Multiplier: 3.0, Volatility: floatPtr(0.05)},
		},
		{
			name:      "min score high vol",
			candidate: domain.ScoredCandidate{StockScore: 0.0, Multiplier: 0.1, Volatility: floatPtr(1.5)},
		},
		{
			name:      "no volatility",
			candidate: domain.ScoredCandidate{StockScore: 0.7, Multiplier: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := sizer.Size(tt.candidate, 1000, 100)
			assert.GreaterOrEqual(t, size, 100.0)
			assert.LessOrEqual(t, size, 1200.0)
		})
	}
}

func TestConvictionSizerVolatilityDampening(t *testing.T) {
	sizer := NewConvictionSizer(DefaultConvictionConfig(), nil, zerolog.Nop())

	calm := domain.ScoredCandidate{StockScore: 0.5, Multiplier: 1.0, Volatility: floatPtr(0.15)}
	wild := domain.ScoredCandidate{StockScore: 0.5, Multiplier: 1.0, Volatility: floatPtr(0.60)}

	calmSize := sizer.Size(calm, 1000, 100)
	wildSize := sizer.Size(wild, 1000, 100)

	assert.Greater(t, calmSize, wildSize, "higher volatility shrinks the trade")

	// Extreme volatility hits the 0.5 floor
	extreme := domain.ScoredCandidate{StockScore: 0.5, Multiplier: 1.0, Volatility: floatPtr(5.0)}
	extremeSize := sizer.Size(extreme, 1000, 100)
	assert.InDelta(t, wildSize/0.775*0.5, extremeSize, 1.0)
}

func TestConvictionSizerRiskMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		score    *float64
		wantMult float64
	}{
		{name: "no source", score: nil, wantMult: 1.0},
		{name: "excellent sortino", score: floatPtr(2.5), wantMult: 1.15},
		{name: "good sortino", score: floatPtr(1.8), wantMult: 1.05},
		{name: "neutral sortino", score: floatPtr(1.2), wantMult: 1.0},
		{name: "weak sortino", score: floatPtr(0.7), wantMult: 0.9},
		{name: "poor sortino", score: floatPtr(0.2), wantMult: 0.8},
	}

	candidate := domain.ScoredCandidate{Symbol: "AAPL", StockScore: 0.5, Multiplier: 1.0}
	base := NewConvictionSizer(DefaultConvictionConfig(), nil, zerolog.Nop()).Size(candidate, 1000, 100)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var source RiskScoreSource
			if tt.score != nil {
				source = stubRiskScores{score: tt.score}
			}
			sizer := NewConvictionSizer(DefaultConvictionConfig(), source, zerolog.Nop())
			size := sizer.Size(candidate, 1000, 100)
			assert.InDelta(t, base*tt.wantMult, size, 1e-9)
		})
	}
}
