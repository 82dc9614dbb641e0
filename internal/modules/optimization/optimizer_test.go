package optimization

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoAssetModel builds a synthetic annualized risk model for solver tests.
func twoAssetModel(muA, muB, varA, varB, cov float64) *RiskModel {
	covMat := mat.NewSymDense(2, nil)
	covMat.SetSym(0, 0, varA)
	covMat.SetSym(1, 1, varB)
	covMat.SetSym(0, 1, cov)
	return &RiskModel{
		Symbols:      []string{"AAA", "BBB"},
		Mean:         []float64{muA, muB},
		Cov:          covMat,
		Observations: 250,
	}
}

func TestMaxSharpe_SymmetricAssetsSplitEvenly(t *testing.T) {
	// Identical means and variances with negative correlation: the optimum
	// is an even split by symmetry.
	model := twoAssetModel(0.10, 0.10, 0.04, 0.04, -0.02)

	result, err := MaxSharpe(model, 0.02, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, result.Success, "reason: %s", result.Reason)
	require.Len(t, result.Weights, 2)

	for _, w := range result.Weights {
		assert.InDelta(t, 0.5, w.Weight, 0.02, "symbol %s", w.Symbol)
	}
	assert.Greater(t, result.SharpeRatio, 0.0)
	assert.Greater(t, result.Volatility, 0.0)
	assert.InDelta(t, 0.10, result.ExpectedReturn, 1e-6)
}

func TestMaxSharpe_TiltsTowardHigherExcessReturn(t *testing.T) {
	// Equal risk, uncorrelated; tangency weights are proportional to excess
	// return over variance: (0.02/0.04, 0.18/0.04) -> (0.1, 0.9).
	model := twoAssetModel(0.04, 0.20, 0.04, 0.04, 0)

	result, err := MaxSharpe(model, 0.02, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, result.Success, "reason: %s", result.Reason)

	weights := make(map[string]float64, len(result.Weights))
	for _, w := range result.Weights {
		weights[w.Symbol] = w.Weight
	}
	assert.InDelta(t, 0.9, weights["BBB"], 0.05)
	assert.Greater(t, weights["BBB"], weights["AAA"])
}

func TestMaxSharpe_TooFewInstruments(t *testing.T) {
	model := &RiskModel{
		Symbols:      []string{"AAA"},
		Mean:         []float64{0.1},
		Cov:          mat.NewSymDense(1, []float64{0.04}),
		Observations: 250,
	}

	result, err := MaxSharpe(model, 0.02, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "at least 2 instruments")
}

func TestMaxSharpe_WeightsSumToOne(t *testing.T) {
	model := twoAssetModel(0.06, 0.14, 0.02, 0.06, 0.005)

	result, err := MaxSharpe(model, 0.02, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, result.Success, "reason: %s", result.Reason)

	var total float64
	for _, w := range result.Weights {
		total += w.Weight
		assert.GreaterOrEqual(t, w.Weight, minReportedWeight)
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestReportedWeights_FiltersDustAndSorts(t *testing.T) {
	entries := reportedWeights(
		[]string{"A", "B", "C", "D"},
		[]float64{0.001, 0.60, 0.399, 0.0},
	)

	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[0].Symbol, "heaviest first")
	var total float64
	for _, e := range entries {
		total += e.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, entries[0].Weight, 0.60, "renormalized upward after dust removal")
}

func TestProjectToBounds(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, projectToBounds([]float64{-0.3, 0.5, 1.7}))
}
