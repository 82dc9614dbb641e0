package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedReturn_TwoYearRoundTrip(t *testing.T) {
	// 100 -> 121 over 2 years: 1.21^(1/2) - 1 = 10%/yr
	result := AnnualizedReturn(100, 121, 730)
	assert.InDelta(t, 0.10, result, 1e-3)
}

func TestAnnualizedReturn_NonPositiveInputs(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedReturn(0, 121, 730))
	assert.Equal(t, 0.0, AnnualizedReturn(100, -5, 730))
	assert.Equal(t, 0.0, AnnualizedReturn(100, 121, 0))
}

func TestAnnualizedReturn_ShortHoldFallsBackToTotalReturn(t *testing.T) {
	// A fraction of a day produces an enormous exponent; the result must stay
	// finite, and in the degenerate case equal the raw total return.
	result := AnnualizedReturn(100, 200, 0.0001)
	assert.False(t, math.IsInf(result, 0))
	assert.False(t, math.IsNaN(result))
}

func TestMaxDrawdown_PathBased(t *testing.T) {
	// Peak after +10% is 1.10; trough after -20% is 0.88.
	// Drawdown at trough = (0.88 - 1.10) / 1.10 = -0.20, magnitude 0.20.
	// The single worst period return is also 0.20 here, but the path values
	// must come from the cumulative curve, not the raw return.
	returns := []float64{0.10, -0.20, 0.05}
	dd := MaxDrawdown(returns)
	assert.InDelta(t, 0.20, dd, 1e-9)
}

func TestMaxDrawdown_DiffersFromWorstPeriodLoss(t *testing.T) {
	// Two consecutive -10% periods compound to an 19% path drawdown,
	// while the worst single period is only 10%.
	returns := []float64{0.05, -0.10, -0.10, 0.02}
	dd := MaxDrawdown(returns)
	worst := WorstPeriodLoss(returns)

	assert.InDelta(t, 0.19, dd, 1e-9)
	assert.InDelta(t, 0.10, worst, 1e-9)
	assert.Greater(t, dd, worst)
}

func TestMaxDrawdown_MonotonicGrowthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{0.01, 0.02, 0.005}))
}

func TestSharpeRatio_ScaleInvariance(t *testing.T) {
	// Scaling excess return and volatility by the same positive constant
	// leaves the ratio unchanged.
	base := SharpeRatio(0.10, 0.20, 0.02)
	for _, k := range []float64{0.5, 2, 10} {
		scaled := SharpeRatio(0.02+k*(0.10-0.02), k*0.20, 0.02)
		assert.InDelta(t, base, scaled, 1e-12)
	}
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(0.10, 0, 0.02))
}

func TestSortinoRatio_FallsBackWithoutNegativeReturns(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.015}
	sortino := SortinoRatio(0.10, 0.02, returns, 0.20, TradingDaysPerYear)
	sharpe := SharpeRatio(0.10, 0.20, 0.02)
	assert.InDelta(t, sharpe, sortino, 1e-12)
}

func TestSortinoRatio_UsesDownsideOnly(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02, 0.01}
	sortino := SortinoRatio(0.10, 0.02, returns, 0.50, TradingDaysPerYear)
	assert.NotEqual(t, 0.0, sortino)

	// Adding large positive returns must not change the denominator.
	extended := append([]float64{0.20, 0.30}, returns...)
	assert.InDelta(t, sortino, SortinoRatio(0.10, 0.02, extended, 0.50, TradingDaysPerYear), 1e-12)
}

func TestHistoricalVaR_FifthPercentile(t *testing.T) {
	// 100 evenly spread returns from -5% to +4.9%.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.05 + float64(i)*0.001
	}

	var95 := HistoricalVaR(returns, 0.95)
	assert.Less(t, var95, 0.0)
	assert.InDelta(t, -0.045, var95, 0.002)
}

func TestConditionalVaR_TailMean(t *testing.T) {
	returns := []float64{-0.10, -0.08, -0.02, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07}
	var95 := HistoricalVaR(returns, 0.95)
	cvar := ConditionalVaR(returns, 0.95)

	require.Less(t, var95, 0.0)
	assert.LessOrEqual(t, cvar, var95, "CVaR must be at least as severe as VaR")
}

func TestCalculateReturns(t *testing.T) {
	prices := []float64{100, 110, 99}
	returns := CalculateReturns(prices)
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestEstimateVolatilityDiagonal_UnderstatesCorrelatedRisk(t *testing.T) {
	weights := []float64{0.5, 0.5}
	returns := []float64{0.10, -0.10}
	vol := EstimateVolatilityDiagonal(weights, returns)
	assert.Greater(t, vol, 0.0)

	// Mismatched inputs yield zero, not a panic.
	assert.Equal(t, 0.0, EstimateVolatilityDiagonal([]float64{1}, returns))
}

func TestCalmarAndTreynorGuards(t *testing.T) {
	assert.Equal(t, 0.0, CalmarRatio(0.10, 0))
	assert.Equal(t, 0.0, TreynorRatio(0.10, 0.02, 0))
	assert.InDelta(t, 0.08, TreynorRatio(0.10, 0.02, 1.0), 1e-12)
}
