package engine

import (
	"sort"

	"github.com/kartikfr/card-genius/internal/domain"
)

// SortBreakdownBySaved returns a copy of the result with its breakdown ordered
// by saved amount, largest first. The input is left untouched.
func SortBreakdownBySaved(result domain.RecommendationResult) domain.RecommendationResult {
	sorted := make([]domain.SavingsBreakdown, len(result.Breakdown))
	copy(sorted, result.Breakdown)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Saved > sorted[j].Saved
	})
	result.Breakdown = sorted
	return result
}
