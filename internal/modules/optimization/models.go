// Package optimization solves long-only maximum-Sharpe portfolios and traces
// efficient frontiers over historical return series.
package optimization

import "context"

// WeightEntry is one allocated instrument in an optimization result.
type WeightEntry struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// Result is the outcome of a max-Sharpe solve. When Success is false, Reason
// carries a human-readable explanation and the numeric fields are zero.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`

	Weights        []WeightEntry `json:"weights,omitempty"`
	ExpectedReturn float64       `json:"expected_return"`
	Volatility     float64       `json:"volatility"`
	SharpeRatio    float64       `json:"sharpe_ratio"`

	Observations   int      `json:"observations"`
	DroppedSymbols []string `json:"dropped_symbols,omitempty"`
}

// FrontierPoint is one solved point on the efficient frontier.
type FrontierPoint struct {
	TargetReturn   float64 `json:"target_return"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// Frontier is a computed efficient frontier. Skipped counts target returns
// for which no feasible portfolio was found.
type Frontier struct {
	Strategy string          `json:"strategy"`
	Points   []FrontierPoint `json:"points"`
	Skipped  int             `json:"skipped"`
}

// FrontierStrategy computes an efficient frontier from a risk model. Two
// implementations exist: a deterministic per-target solver and a cheaper
// random-sampling approximation.
type FrontierStrategy interface {
	Name() string
	Compute(ctx context.Context, model *RiskModel, riskFreeRate float64, points int) (Frontier, error)
}
