package optimization

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adurand/portanalyzer/internal/modules/universe"
)

type fakeHistory struct {
	series map[string][]universe.DailyClose
	from   time.Time
	to     time.Time
}

func (f *fakeHistory) EnsureHistory(_ context.Context, symbol string, from, to time.Time, _ int) ([]universe.DailyClose, error) {
	f.from, f.to = from, to
	closes, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("no history for %s", symbol)
	}
	return closes, nil
}

func testHistory() *fakeHistory {
	return &fakeHistory{series: map[string][]universe.DailyClose{
		"AAA": closeSeries(120, func(i int) float64 {
			return 100 * math.Exp(0.0006*float64(i)+0.01*math.Sin(float64(i)))
		}),
		"BBB": closeSeries(120, func(i int) float64 {
			return 100 * math.Exp(0.0004*float64(i)+0.01*math.Cos(float64(i)))
		}),
	}}
}

func testService() *Service {
	service, _ := testServiceWithHistory()
	return service
}

func testServiceWithHistory() (*Service, *fakeHistory) {
	history := testHistory()
	service := NewService(history, nil, Config{
		RiskFreeRate:       0.02,
		TradingDaysPerYear: 252,
		LookbackDays:       365,
	}, zerolog.Nop())
	return service, history
}

func TestService_OptimizeEndToEnd(t *testing.T) {
	result, err := testService().Optimize(context.Background(), []string{"AAA", "BBB"}, Window{})
	require.NoError(t, err)
	require.True(t, result.Success, "reason: %s", result.Reason)

	var total float64
	for _, w := range result.Weights {
		total += w.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 119, result.Observations)
	assert.Greater(t, result.Volatility, 0.0)
}

func TestService_SingleUsableSymbolFails(t *testing.T) {
	// ZZZ has no history and gets excluded, leaving one instrument.
	result, err := testService().Optimize(context.Background(), []string{"AAA", "ZZZ"}, Window{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Reason)
}

func TestService_NoSymbols(t *testing.T) {
	result, err := testService().Optimize(context.Background(), nil, Window{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "no symbols")
}

func TestService_FrontierUnknownStrategy(t *testing.T) {
	_, err := testService().Frontier(context.Background(), []string{"AAA", "BBB"}, "exhaustive", 10, Window{})
	assert.ErrorContains(t, err, "unknown frontier strategy")
}

func TestService_FrontierDefaultsToGrid(t *testing.T) {
	frontier, err := testService().Frontier(context.Background(), []string{"AAA", "BBB"}, "", 8, Window{})
	require.NoError(t, err)
	assert.Equal(t, "grid", frontier.Strategy)
	assert.NotEmpty(t, frontier.Points)
}

func TestService_WindowReachesHistoryProvider(t *testing.T) {
	service, history := testServiceWithHistory()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.Optimize(context.Background(), []string{"AAA", "BBB"}, Window{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, from, history.from)
	assert.Equal(t, to, history.to)
}

func TestService_WindowDefaultsToLookback(t *testing.T) {
	service, history := testServiceWithHistory()

	_, err := service.Optimize(context.Background(), []string{"AAA", "BBB"}, Window{})
	require.NoError(t, err)

	days := history.to.Sub(history.from).Hours() / 24
	assert.InDelta(t, 365, days, 1.5)
}

func TestService_RejectsInvertedWindow(t *testing.T) {
	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := testService().Optimize(context.Background(), []string{"AAA", "BBB"}, Window{From: from, To: to})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "not before")
}

func TestCachedModel_Roundtrip(t *testing.T) {
	model := twoAssetModel(0.06, 0.12, 0.03, 0.05, 0.01)

	restored, err := flatten(model, []string{"CCC"}).restore()
	require.NoError(t, err)

	assert.Equal(t, model.Symbols, restored.Symbols)
	assert.Equal(t, model.Mean, restored.Mean)
	assert.Equal(t, model.Observations, restored.Observations)
	assert.InDelta(t, model.Cov.At(0, 1), restored.Cov.At(0, 1), 1e-15)
}

func TestCachedModel_RejectsInconsistentDimensions(t *testing.T) {
	bad := cachedModel{Symbols: []string{"A", "B"}, Mean: []float64{0.1}, Cov: []float64{1, 2, 3, 4}}
	_, err := bad.restore()
	assert.Error(t, err)
}
