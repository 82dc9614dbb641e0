package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotWeights_SumToOne(t *testing.T) {
	snapshot := Snapshot{Positions: []Position{
		{Symbol: "AAA", Quantity: 10, BuyingPrice: 100, LastPrice: 120},
		{Symbol: "BBB", Quantity: 5, BuyingPrice: 200, LastPrice: 180},
		{Symbol: "CCC", Quantity: 2, BuyingPrice: 50, LastPrice: 55},
	}}

	weights := snapshot.Weights()
	require.Len(t, weights, 3)

	var sum float64
	for _, w := range weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSnapshotWeights_ExcludesNonPositiveAmounts(t *testing.T) {
	snapshot := Snapshot{Positions: []Position{
		{Symbol: "AAA", Quantity: 10, BuyingPrice: 100, LastPrice: 100},
		{Symbol: "ZZZ", Quantity: 3, BuyingPrice: 10, LastPrice: 0}, // worthless, stays in list
	}}

	weights := snapshot.Weights()
	assert.NotContains(t, weights, "ZZZ")
	assert.InDelta(t, 1.0, weights["AAA"], 1e-9)
	assert.Len(t, snapshot.Positions, 2)
}

func TestPositionPeriodReturn(t *testing.T) {
	assert.InDelta(t, 0.25, Position{BuyingPrice: 100, LastPrice: 125}.PeriodReturn(), 1e-9)
	assert.InDelta(t, -0.10, Position{BuyingPrice: 100, LastPrice: 90}.PeriodReturn(), 1e-9)

	// Non-positive buying price: return undefined, reported as 0.
	assert.Equal(t, 0.0, Position{BuyingPrice: 0, LastPrice: 90}.PeriodReturn())
}

func TestSnapshotWeightedPerformance(t *testing.T) {
	snapshot := Snapshot{Positions: []Position{
		{Symbol: "AAA", Quantity: 1, BuyingPrice: 100, LastPrice: 110}, // +10%, weight 110/200
		{Symbol: "BBB", Quantity: 1, BuyingPrice: 100, LastPrice: 90},  // -10%, weight 90/200
	}}

	// 0.55*0.10 + 0.45*(-0.10) = 0.01
	assert.InDelta(t, 0.01, snapshot.WeightedPerformance(), 1e-9)
}

func TestResolveColumns_Aliases(t *testing.T) {
	header := []string{"Nom", "Ticker", "Qty", "prix_achat", "current_price", "Secteur"}
	columns := resolveColumns(header)

	assert.Equal(t, 0, columns["name"])
	assert.Equal(t, 1, columns["symbol"])
	assert.Equal(t, 2, columns["quantity"])
	assert.Equal(t, 3, columns["buyingPrice"])
	assert.Equal(t, 4, columns["lastPrice"])
	assert.Equal(t, 5, columns["sector"])
}

func TestBuildPosition_DefaultsAndValidation(t *testing.T) {
	columns := map[string]int{"symbol": 0, "quantity": 1, "buyingPrice": 2}

	pos, err := buildPosition([]string{"AAPL", "10", "150.5"}, columns, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", pos.Symbol)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.Equal(t, 150.5, pos.BuyingPrice)
	assert.Equal(t, 150.5, pos.LastPrice, "last price defaults to buying price")
	assert.Equal(t, "EUR", pos.Currency)
	assert.Equal(t, "Stock", pos.AssetType)
	assert.Equal(t, "batch-1", pos.ImportBatch)

	_, err = buildPosition([]string{"AAPL", "0", "150.5"}, columns, "batch-1")
	assert.Error(t, err, "quantity below 1 is rejected")

	_, err = buildPosition([]string{"AAPL", "10", "-3"}, columns, "batch-1")
	assert.Error(t, err, "non-positive buying price is rejected")
}
