package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentBeta_RecoversSlope(t *testing.T) {
	market := marketSeries(100)
	asset := make([]float64, len(market))
	for i, m := range market {
		asset[i] = 0.0001 + 1.5*m
	}

	beta, ok := InstrumentBeta(asset, market)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, beta, 1e-9)
}

func TestInstrumentBeta_RejectsShortSeries(t *testing.T) {
	market := marketSeries(MinBetaObservations - 1)
	_, ok := InstrumentBeta(market, market)
	assert.False(t, ok)
}

func TestInstrumentBeta_RejectsMismatchedLengths(t *testing.T) {
	_, ok := InstrumentBeta(marketSeries(60), marketSeries(61))
	assert.False(t, ok)
}

func TestInstrumentBeta_RejectsDegenerateMarket(t *testing.T) {
	flat := make([]float64, 60)
	asset := marketSeries(60)
	_, ok := InstrumentBeta(asset, flat)
	assert.False(t, ok, "constant market has no defined slope")
}
