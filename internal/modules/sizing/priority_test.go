package sizing

import (
	"testing"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankByPriority(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		{Symbol: "AAA", StockScore: 0.6, Multiplier: 1.0},
		{Symbol: "BBB", StockScore: 0.9, Multiplier: 1.5},
		{Symbol: "CCC", StockScore: 0.45, Multiplier: 2.0},
	}

	ranked := RankByPriority(candidates)

	require.Len(t, ranked, 3)
	assert.Equal(t, "BBB", ranked[0].Symbol) // 1.35
	assert.Equal(t, "CCC", ranked[1].Symbol) // 0.9
	assert.Equal(t, "AAA", ranked[2].Symbol) // 0.6
	assert.InDelta(t, 1.35, ranked[0].CombinedPriority, 1e-9)

	// Input slice untouched
	assert.Equal(t, "AAA", candidates[0].Symbol)
	assert.Zero(t, candidates[0].CombinedPriority)
}

func TestRankByPriorityRounding(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		{Symbol: "AAA", StockScore: 0.33333, Multiplier: 1.0},
	}

	ranked := RankByPriority(candidates)
	assert.Equal(t, 0.3333, ranked[0].CombinedPriority)
}

func TestRankByPriorityStableTies(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		{Symbol: "AAA", StockScore: 0.5, Multiplier: 1.0},
		{Symbol: "BBB", StockScore: 0.5, Multiplier: 1.0},
		{Symbol: "CCC", StockScore: 0.5, Multiplier: 1.0},
	}

	ranked := RankByPriority(candidates)
	assert.Equal(t, "AAA", ranked[0].Symbol)
	assert.Equal(t, "BBB", ranked[1].Symbol)
	assert.Equal(t, "CCC", ranked[2].Symbol)
}

func TestRankByPriorityIdempotent(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		{Symbol: "AAA", StockScore: 0.6, Multiplier: 1.0},
		{Symbol: "BBB", StockScore: 0.9, Multiplier: 1.5},
		{Symbol: "CCC", StockScore: 0.45, Multiplier: 2.0},
	}

	once := RankByPriority(candidates)
	twice := RankByPriority(once)
	assert.Equal(t, once, twice)
}
