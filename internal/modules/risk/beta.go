package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinBetaObservations is the minimum number of aligned daily observations
// required for a regression beta. Below this the provider-supplied beta (or
// 1.0) is used instead.
const MinBetaObservations = 50

// InstrumentBeta runs an ordinary-least-squares regression of an
// instrument's daily returns against the market's daily returns over their
// common range and returns the slope. The second return value reports
// whether the regression was usable.
func InstrumentBeta(assetReturns, marketReturns []float64) (float64, bool) {
	n := len(assetReturns)
	if n != len(marketReturns) || n < MinBetaObservations {
		return 0, false
	}

	_, slope := stat.LinearRegression(marketReturns, assetReturns, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}
	return slope, true
}
