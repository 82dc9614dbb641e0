// Package concentration computes weight-based concentration and
// diversification metrics for a portfolio snapshot.
package concentration

import (
	"math"
	"sort"
)

// Concentration level thresholds on HHI. Policy constants, strict '>'
// comparisons: an HHI of exactly 0.25 is "Concentrated", not "Very
// Concentrated".
const (
	hhiVeryConcentrated       = 0.25
	hhiConcentrated           = 0.15
	hhiModeratelyConcentrated = 0.10

	// entropyEpsilon guards ln(0) for vanishing weights.
	entropyEpsilon = 1e-10
)

// Concentration labels.
const (
	LevelVeryConcentrated       = "Very Concentrated"
	LevelConcentrated           = "Concentrated"
	LevelModeratelyConcentrated = "Moderately Concentrated"
	LevelWellDiversified        = "Well Diversified"
	LevelIndeterminate          = "Indeterminate"
)

// Metrics bundles the concentration statistics for one weight vector.
type Metrics struct {
	HHI               float64 `json:"hhi"`
	EffectiveHoldings float64 `json:"effective_holdings"`
	Top3Concentration float64 `json:"top3_concentration"`
	EntropyRatio      float64 `json:"entropy_ratio"`
	Level             string  `json:"level"`
	Indeterminate     bool    `json:"indeterminate"`
}

// Analyze computes concentration metrics from instrument weights. Weights
// need not sum to 1; they are normalized defensively over the strictly
// positive entries. An empty or all-zero weight vector yields the
// indeterminate sentinel rather than an error: an empty portfolio is a
// normal operating condition, not a failure.
func Analyze(weights map[string]float64) Metrics {
	positive := make([]float64, 0, len(weights))
	var total float64
	for _, w := range weights {
		if w > 0 {
			positive = append(positive, w)
			total += w
		}
	}

	if len(positive) == 0 || total <= 0 {
		return Metrics{Level: LevelIndeterminate, Indeterminate: true}
	}

	for i := range positive {
		positive[i] /= total
	}

	var hhi float64
	for _, w := range positive {
		hhi += w * w
	}

	effective := 0.0
	if hhi > 0 {
		effective = 1 / hhi
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(positive)))
	topN := 3
	if len(positive) < topN {
		topN = len(positive)
	}
	var top3 float64
	for _, w := range positive[:topN] {
		top3 += w
	}

	entropyRatio := 0.0
	if n := len(positive); n > 1 {
		var entropy float64
		for _, w := range positive {
			entropy -= w * math.Log(w+entropyEpsilon)
		}
		entropyRatio = entropy / math.Log(float64(n))
	}

	return Metrics{
		HHI:               hhi,
		EffectiveHoldings: effective,
		Top3Concentration: top3,
		EntropyRatio:      entropyRatio,
		Level:             concentrationLevel(hhi),
	}
}

func concentrationLevel(hhi float64) string {
	switch {
	case hhi > hhiVeryConcentrated:
		return LevelVeryConcentrated
	case hhi > hhiConcentrated:
		return LevelConcentrated
	case hhi > hhiModeratelyConcentrated:
		return LevelModeratelyConcentrated
	default:
		return LevelWellDiversified
	}
}
