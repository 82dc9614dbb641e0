package formulas

// MaxDrawdown calculates the maximum drawdown from a series of periodic
// returns using the cumulative-path method:
//
//	C_t = product(1 + r_0 .. 1 + r_t)
//	M_t = max(C_0 .. C_t)
//	drawdown_t = (C_t - M_t) / M_t
//
// The result is the most negative drawdown on the path, reported as a
// positive magnitude (0.25 = 25% peak-to-trough loss). This is the canonical
// definition; do not substitute the single worst period return for it.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cumulative := 1.0
	peak := 1.0
	maxDrawdown := 0.0

	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			drawdown := (peak - cumulative) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}

// MaxDrawdownFromPrices calculates the maximum drawdown from a price series
// by tracking the running peak directly.
func MaxDrawdownFromPrices(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	peak := prices[0]
	maxDrawdown := 0.0

	for _, price := range prices {
		if price > peak {
			peak = price
		}
		if peak > 0 {
			drawdown := (peak - price) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}

// WorstPeriodLoss returns the absolute value of the single worst periodic
// return. This is NOT a drawdown: it is a non-path-dependent quantity and is
// materially different from MaxDrawdown. It exists only as an explicitly
// named cheap alternative and must never be reported as maximum drawdown.
func WorstPeriodLoss(returns []float64) float64 {
	worst := 0.0
	for _, r := range returns {
		if r < worst {
			worst = r
		}
	}
	return -worst
}
