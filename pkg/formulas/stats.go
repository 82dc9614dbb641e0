package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization base for daily observations.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the covariance between two aligned series
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient between two aligned series
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// CalculateReturns converts a price series to consecutive fractional returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]. Entries with a zero
// predecessor are left at zero rather than propagating Inf.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// AnnualizedVolatility annualizes the standard deviation of periodic returns.
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// EstimateVolatilityDiagonal estimates portfolio volatility from point
// returns only: sqrt(sum(w_i^2 * dev_i^2)) where dev_i is the deviation of
// each position's return from the cross-sectional mean.
//
// This is an APPROXIMATION: it ignores covariances between positions and
// systematically understates risk when assets are positively correlated.
// The canonical figure is sqrt(w' Sigma w) over a covariance matrix of the
// instruments' historical return series. Callers receiving this value must
// flag it as approximate.
func EstimateVolatilityDiagonal(weights, returns []float64) float64 {
	if len(weights) == 0 || len(weights) != len(returns) {
		return 0
	}
	mean := Mean(returns)
	var variance float64
	for i, w := range weights {
		dev := returns[i] - mean
		variance += w * w * dev * dev
	}
	return math.Sqrt(variance)
}
