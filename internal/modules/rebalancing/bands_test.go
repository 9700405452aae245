package rebalancing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestIsOutsideBand(t *testing.T) {
	e := NewBandEvaluator()

	tests := []struct {
		name            string
		currentWeight   float64
		targetWeight    float64
		explicitBand    *float64
		positionSizePct *float64
		want            bool
	}{
		{
			name:            "large position tight band exceeded",
			currentWeight:   0.56,
			targetWeight:    0.50,
			positionSizePct: floatPtr(0.15),
			want:            true, // 5% band, 6% deviation
		},
		{
			name:          "explicit band not exceeded",
			currentWeight: 0.53,
			targetWeight:  0.50,
			explicitBand:  floatPtr(0.05),
			want:          false, // 3% deviation inside 5% band
		},
		{
			name:          "deviation exactly at band is inside",
			currentWeight: 0.55,
			targetWeight:  0.50,
			explicitBand:  floatPtr(0.05),
			want:          false,
		},
		{
			name:          "small position loose band",
			currentWeight: 0.03,
			targetWeight:  0.10,
			want:          false, // proxy size 10% -> 7% band, deviation 7% is inside
		},
		{
			name:          "small position loose band exceeded",
			currentWeight: 0.02,
			targetWeight:  0.14,
			want:          true, // proxy size 14% -> 5% band, deviation 12%
		},
		{
			name:            "medium position medium band",
			currentWeight:   0.08,
			targetWeight:    0.02,
			positionSizePct: floatPtr(0.08),
			want:            false, // 7% band, 6% deviation
		},
		{
			name:            "tiny position ignores noise",
			currentWeight:   0.04,
			targetWeight:    0.00,
			positionSizePct: floatPtr(0.04),
			want:            false, // 10% band, 4% deviation
		},
		{
			name:            "tiny position big miss",
			currentWeight:   0.12,
			targetWeight:    0.01,
			positionSizePct: floatPtr(0.03),
			want:            true, // 10% band, 11% deviation
		},
		{
			name:          "explicit band wins over size tier",
			currentWeight: 0.56,
			targetWeight:  0.50,
			explicitBand:  floatPtr(0.10),
			want:          false, // 6% deviation inside explicit 10% band
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.IsOutsideBand(tt.currentWeight, tt.targetWeight, tt.explicitBand, tt.positionSizePct)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBandFor(t *testing.T) {
	e := NewBandEvaluator()

	tests := []struct {
		name string
		size float64
		want float64
	}{
		{name: "large position", size: 0.15, want: 0.05},
		{name: "just above large cutoff", size: 0.101, want: 0.05},
		{name: "exactly at large cutoff is medium", size: 0.10, want: 0.07},
		{name: "medium position", size: 0.07, want: 0.07},
		{name: "exactly at medium cutoff", size: 0.05, want: 0.07},
		{name: "small position", size: 0.03, want: 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.BandFor(0, 0, nil, &tt.size)
			assert.Equal(t, tt.want, got)
		})
	}
}
