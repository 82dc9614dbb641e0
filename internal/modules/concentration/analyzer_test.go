package concentration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adurand/portanalyzer/internal/modules/portfolio"
)

func TestAnalyze_KnownWeights(t *testing.T) {
	// [0.5, 0.3, 0.2] => HHI = 0.25+0.09+0.04 = 0.38
	metrics := Analyze(map[string]float64{"A": 0.5, "B": 0.3, "C": 0.2})

	assert.InDelta(t, 0.38, metrics.HHI, 1e-9)
	assert.InDelta(t, 1/0.38, metrics.EffectiveHoldings, 1e-9)
	assert.InDelta(t, 1.0, metrics.Top3Concentration, 1e-9)
	assert.Equal(t, LevelVeryConcentrated, metrics.Level)
	assert.False(t, metrics.Indeterminate)
}

func TestAnalyze_NormalizesDefensively(t *testing.T) {
	// Same proportions scaled by 10 must give identical metrics.
	a := Analyze(map[string]float64{"A": 0.5, "B": 0.3, "C": 0.2})
	b := Analyze(map[string]float64{"A": 5, "B": 3, "C": 2})

	assert.InDelta(t, a.HHI, b.HHI, 1e-9)
	assert.InDelta(t, a.EntropyRatio, b.EntropyRatio, 1e-9)
	assert.Equal(t, a.Level, b.Level)
}

func TestAnalyze_EffectiveHoldingsBounds(t *testing.T) {
	// 1/HHI lies in [1, n]; equals n iff all weights equal.
	equal := Analyze(map[string]float64{"A": 0.25, "B": 0.25, "C": 0.25, "D": 0.25})
	assert.InDelta(t, 4.0, equal.EffectiveHoldings, 1e-9)
	assert.InDelta(t, 1.0, equal.EntropyRatio, 1e-6)

	skewed := Analyze(map[string]float64{"A": 0.97, "B": 0.01, "C": 0.01, "D": 0.01})
	assert.GreaterOrEqual(t, skewed.EffectiveHoldings, 1.0)
	assert.Less(t, skewed.EffectiveHoldings, 4.0)
}

func TestAnalyze_LabelBoundariesAreStrict(t *testing.T) {
	// Thresholds use strict '>' comparisons: exact boundary values fall to
	// the lower label.
	tests := []struct {
		hhi  float64
		want string
	}{
		{0.26, LevelVeryConcentrated},
		{0.25, LevelConcentrated},
		{0.16, LevelConcentrated},
		{0.15, LevelModeratelyConcentrated},
		{0.11, LevelModeratelyConcentrated},
		{0.10, LevelWellDiversified},
		{0.05, LevelWellDiversified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, concentrationLevel(tt.hhi), "hhi=%v", tt.hhi)
	}
}

func TestAnalyze_IndeterminateSentinel(t *testing.T) {
	empty := Analyze(nil)
	assert.True(t, empty.Indeterminate)
	assert.Equal(t, LevelIndeterminate, empty.Level)
	assert.Equal(t, 0.0, empty.HHI)
	assert.Equal(t, 0.0, empty.EffectiveHoldings)

	allZero := Analyze(map[string]float64{"A": 0, "B": -0.1})
	assert.True(t, allZero.Indeterminate)
}

func TestAnalyze_SingleHolding(t *testing.T) {
	single := Analyze(map[string]float64{"A": 1.0})
	assert.InDelta(t, 1.0, single.HHI, 1e-9)
	assert.InDelta(t, 1.0, single.EffectiveHoldings, 1e-9)
	assert.Equal(t, 0.0, single.EntropyRatio, "entropy ratio is 0 for n <= 1")
	assert.Equal(t, LevelVeryConcentrated, single.Level)
}

func TestAnalyze_Top3WithFewerThanThree(t *testing.T) {
	metrics := Analyze(map[string]float64{"A": 0.7, "B": 0.3})
	assert.InDelta(t, 1.0, metrics.Top3Concentration, 1e-9)
}

func TestGroupBySectorAndRegion(t *testing.T) {
	snapshot := portfolio.Snapshot{Positions: []portfolio.Position{
		{Symbol: "AAPL", Quantity: 1, BuyingPrice: 100, LastPrice: 100, Sector: "Technology", Exchange: "NASDAQ"},
		{Symbol: "MSFT", Quantity: 1, BuyingPrice: 100, LastPrice: 100, Sector: "Technology", Exchange: "NASDAQ"},
		{Symbol: "MC.PA", Quantity: 1, BuyingPrice: 100, LastPrice: 200, Sector: "Consumer", Exchange: "Paris"},
	}}

	sectors := BySector(snapshot)
	require.Len(t, sectors, 2)
	assert.Equal(t, "Consumer", sectors[0].Name, "heaviest sector first")
	assert.InDelta(t, 0.5, sectors[0].Weight, 1e-9)

	regions := ByRegion(snapshot)
	require.Len(t, regions, 2)
	var total float64
	for _, r := range regions {
		total += r.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRegionForExchange(t *testing.T) {
	assert.Equal(t, "USA", regionForExchange("NasdaqGS"))
	assert.Equal(t, "Europe", regionForExchange("Paris"))
	assert.Equal(t, "Other", regionForExchange("Unknown"))
}

func TestRecommend_ConcentrationWarning(t *testing.T) {
	snapshot := portfolio.Snapshot{Positions: []portfolio.Position{
		{Symbol: "AAA", Quantity: 9, BuyingPrice: 100, LastPrice: 100},
		{Symbol: "BBB", Quantity: 1, BuyingPrice: 100, LastPrice: 100},
	}}
	metrics := Analyze(snapshot.Weights())
	require.Greater(t, metrics.HHI, 0.25)

	recs := Recommend(snapshot, metrics, nil, nil)

	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Excessive concentration")
	assert.Contains(t, titles, "Position count")
}

func TestRecommend_WellDiversifiedSuccess(t *testing.T) {
	positions := make([]portfolio.Position, 16)
	sectors := []string{"Tech", "Health", "Energy", "Finance", "Consumer", "Utilities"}
	for i := range positions {
		positions[i] = portfolio.Position{
			Symbol:      string(rune('A'+i)) + "X",
			Quantity:    1,
			BuyingPrice: 100,
			LastPrice:   100,
			Sector:      sectors[i%len(sectors)],
		}
	}
	snapshot := portfolio.Snapshot{Positions: positions}
	metrics := Analyze(snapshot.Weights())
	require.Less(t, metrics.HHI, 0.10)

	recs := Recommend(snapshot, metrics, BySector(snapshot), ByRegion(snapshot))

	var severities []string
	for _, r := range recs {
		severities = append(severities, r.Severity)
	}
	assert.Contains(t, severities, SeveritySuccess)
	assert.NotContains(t, severities, SeverityWarning)
}

func TestMath_EntropyRatioRange(t *testing.T) {
	metrics := Analyze(map[string]float64{"A": 0.6, "B": 0.25, "C": 0.15})
	assert.Greater(t, metrics.EntropyRatio, 0.0)
	assert.LessOrEqual(t, metrics.EntropyRatio, 1.0+1e-9)
	assert.False(t, math.IsNaN(metrics.EntropyRatio))
}
