package optimization

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adurand/portanalyzer/internal/modules/universe"
	"github.com/adurand/portanalyzer/pkg/formulas"
)

// closeSeries builds n sequential daily closes starting 2026-01-02.
func closeSeries(n int, price func(i int) float64) []universe.DailyClose {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]universe.DailyClose, n)
	for i := range out {
		out[i] = universe.DailyClose{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Close: price(i),
		}
	}
	return out
}

func TestBuildAlignedReturns_AlignsOnCommonDates(t *testing.T) {
	flat := func(i int) float64 { return 100 + float64(i) }
	a := closeSeries(40, flat)
	b := closeSeries(40, flat)

	// Remove one mid-series date from A; it must disappear for B too.
	a = append(a[:20], a[21:]...)

	matrix, err := BuildAlignedReturns(map[string][]universe.DailyClose{"A": a, "B": b})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, matrix.Symbols)
	assert.Equal(t, 38, matrix.Observations, "39 common dates give 38 returns")
	assert.Len(t, matrix.Series["A"], 38)
	assert.Len(t, matrix.Series["B"], 38)
	assert.Empty(t, matrix.Dropped)
}

func TestBuildAlignedReturns_DropsSparseInstruments(t *testing.T) {
	flat := func(i int) float64 { return 100 + float64(i) }
	matrix, err := BuildAlignedReturns(map[string][]universe.DailyClose{
		"A": closeSeries(40, flat),
		"B": closeSeries(40, flat),
		"C": closeSeries(10, flat), // 75% missing
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, matrix.Symbols)
	assert.Equal(t, []string{"C"}, matrix.Dropped)
	assert.Equal(t, 39, matrix.Observations)
}

func TestBuildAlignedReturns_Errors(t *testing.T) {
	flat := func(i int) float64 { return 100 }

	_, err := BuildAlignedReturns(nil)
	assert.Error(t, err)

	_, err = BuildAlignedReturns(map[string][]universe.DailyClose{
		"A": closeSeries(40, flat),
	})
	assert.ErrorContains(t, err, "need at least 2")

	_, err = BuildAlignedReturns(map[string][]universe.DailyClose{
		"A": closeSeries(10, flat),
		"B": closeSeries(10, flat),
	})
	assert.ErrorContains(t, err, "common observations")
}

func TestBuildRiskModel_Annualizes(t *testing.T) {
	growth := func(rate float64) func(i int) float64 {
		return func(i int) float64 { return 100 * pow(1+rate, i) }
	}
	matrix, err := BuildAlignedReturns(map[string][]universe.DailyClose{
		"A": closeSeries(60, growth(0.001)),
		"B": closeSeries(60, growth(0.002)),
	})
	require.NoError(t, err)

	model, err := BuildRiskModel(matrix, 252)
	require.NoError(t, err)

	assert.InDelta(t, 0.001*252, model.Mean[0], 1e-9)
	assert.InDelta(t, 0.002*252, model.Mean[1], 1e-9)
	assert.InDelta(t, formulas.Covariance(matrix.Series["A"], matrix.Series["B"])*252, model.Cov.At(0, 1), 1e-12)
	assert.Equal(t, 59, model.Observations)
}

func TestBuildRiskModel_RejectsNonFinite(t *testing.T) {
	matrix := &ReturnMatrix{
		Symbols: []string{"A", "B"},
		Series: map[string][]float64{
			"A": {0.01, 0.02, math.NaN()},
			"B": {0.01, 0.02, 0.03},
		},
		Observations: 3,
	}
	_, err := BuildRiskModel(matrix, 252)
	assert.Error(t, err)
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

