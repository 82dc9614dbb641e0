package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistoricalVaR calculates the historical Value-at-Risk at the given
// confidence level (0.95 => the 5th percentile of the observed return
// distribution). No parametric assumption is made. Returns 0 for empty input.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	return stat.Quantile(1-confidence, stat.Empirical, sorted, nil)
}

// ConditionalVaR calculates the mean of all observed returns at or below the
// historical VaR at the given confidence level. Falls back to the VaR itself
// when the tail set is empty.
func ConditionalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	varThreshold := HistoricalVaR(returns, confidence)

	var tail []float64
	for _, r := range returns {
		if r <= varThreshold {
			tail = append(tail, r)
		}
	}
	if len(tail) == 0 {
		return varThreshold
	}
	return Mean(tail)
}
