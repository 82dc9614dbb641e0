package formulas

import "math"

// SharpeRatio calculates the Sharpe ratio from annualized figures.
//
//	Sharpe = (Annualized Return - Risk-free Rate) / Annualized Volatility
//
// Returns 0 when volatility is 0 (a ratio over zero risk is meaningless).
func SharpeRatio(annualizedReturn, annualizedVolatility, riskFreeRate float64) float64 {
	if annualizedVolatility == 0 {
		return 0
	}
	return (annualizedReturn - riskFreeRate) / annualizedVolatility
}

// DownsideDeviation calculates the standard deviation of the subset of
// negative returns only. Returns 0 when fewer than one negative return exists.
func DownsideDeviation(returns []float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) == 0 {
		return 0
	}
	if len(negative) == 1 {
		// StdDev of a single observation is undefined; use its magnitude.
		return math.Abs(negative[0])
	}
	return StdDev(negative)
}

// SortinoRatio calculates the Sortino ratio: excess return over the
// annualized downside deviation of the periodic returns. Falls back to the
// supplied annualized volatility when no negative returns exist.
func SortinoRatio(annualizedReturn, riskFreeRate float64, returns []float64, annualizedVolatility float64, periodsPerYear int) float64 {
	downside := DownsideDeviation(returns)
	denominator := downside * math.Sqrt(float64(periodsPerYear))
	if downside == 0 {
		denominator = annualizedVolatility
	}
	if denominator == 0 {
		return 0
	}
	return (annualizedReturn - riskFreeRate) / denominator
}

// CalmarRatio calculates annualized return over maximum drawdown.
// Returns 0 when drawdown is 0 rather than reporting infinity.
func CalmarRatio(annualizedReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualizedReturn / maxDrawdown
}

// TreynorRatio calculates excess return per unit of beta.
func TreynorRatio(annualizedReturn, riskFreeRate, beta float64) float64 {
	if beta == 0 {
		return 0
	}
	return (annualizedReturn - riskFreeRate) / beta
}
