package formulas

import "math"

// AnnualizedReturn converts a holding-period return into an annualized rate.
//
//	totalReturn      = finalValue/initialValue - 1
//	yearsHeld        = daysHeld / 365.25
//	annualizedReturn = (1 + totalReturn)^(1/yearsHeld) - 1
//
// Returns 0 when any input is non-positive. Falls back to the unannualized
// total return when the exponentiation produces a non-finite value (very
// short holding periods blow up the exponent).
func AnnualizedReturn(initialValue, finalValue, daysHeld float64) float64 {
	if initialValue <= 0 || finalValue <= 0 || daysHeld <= 0 {
		return 0
	}

	totalReturn := finalValue/initialValue - 1
	yearsHeld := daysHeld / 365.25

	annualized := math.Pow(1+totalReturn, 1/yearsHeld) - 1
	if math.IsNaN(annualized) || math.IsInf(annualized, 0) {
		return totalReturn
	}
	return annualized
}
