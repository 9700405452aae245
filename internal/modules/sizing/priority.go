package sizing

import (
	"sort"

	"github.com/aristath/rebalancer/internal/domain"
)

// RankByPriority computes each candidate's combined priority
// (round(stockScore * multiplier, 4)) and returns a new slice sorted
// descending by it. The sort is stable: ties keep input order. The input
// slice is not modified.
func RankByPriority(candidates []domain.ScoredCandidate) []domain.ScoredCandidate {
	ranked := make([]domain.ScoredCandidate, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		ranked[i].CombinedPriority = ranked[i].CalculateCombinedPriority()
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedPriority > ranked[j].CombinedPriority
	})

	return ranked
}
