package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
)

// Solver constants. The budget constraint (weights sum to 1) is enforced as a
// quadratic penalty, bounds as a hard clamp inside the objective.
const (
	penaltyWeight     = 1000.0
	minReportedWeight = 0.005
	maxIterations     = 1000
	gradientTolerance = 1e-9
)

// MaxSharpe solves the long-only maximum-Sharpe allocation over the risk
// model. On infeasible or non-converging inputs it returns a failed Result
// with a reason rather than an error; an error means a programming-level
// problem with the model itself.
func MaxSharpe(model *RiskModel, riskFreeRate float64, log zerolog.Logger) (Result, error) {
	n := len(model.Symbols)
	if n < minInstruments {
		return Result{
			Success: false,
			Reason:  fmt.Sprintf("optimization requires at least %d instruments, got %d", minInstruments, n),
		}, nil
	}

	objective := func(x []float64) float64 {
		w := projectToBounds(x)
		sigma := model.portfolioVolatility(w)
		if sigma == 0 {
			return math.Inf(1)
		}
		sharpe := (model.portfolioReturn(w) - riskFreeRate) / sigma
		return -sharpe + penaltyWeight*sumPenalty(w)
	}

	gradient := func(grad, x []float64) {
		w := projectToBounds(x)
		sigma := model.portfolioVolatility(w)
		if sigma == 0 {
			for i := range grad {
				grad[i] = 0
			}
			return
		}
		excess := model.portfolioReturn(w) - riskFreeRate
		sigmaW := model.covMul(w)
		sumDiff := sum(w) - 1
		for i := range grad {
			dSharpe := model.Mean[i]/sigma - excess*sigmaW[i]/(sigma*sigma*sigma)
			grad[i] = -dSharpe + 2*penaltyWeight*sumDiff
		}
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	initial := equalWeights(n)

	solution, err := solve(problem, initial, log)
	if err != nil {
		return Result{Success: false, Reason: err.Error()}, nil
	}

	weights := projectToBounds(solution)
	normalize(weights)

	entries := reportedWeights(model.Symbols, weights)
	if len(entries) == 0 {
		return Result{Success: false, Reason: "optimization produced an empty allocation"}, nil
	}

	// Recompute statistics on the reported (filtered, renormalized) vector.
	final := make([]float64, n)
	for _, e := range entries {
		for i, symbol := range model.Symbols {
			if symbol == e.Symbol {
				final[i] = e.Weight
			}
		}
	}

	expectedReturn := model.portfolioReturn(final)
	volatility := model.portfolioVolatility(final)
	sharpe := 0.0
	if volatility > 0 {
		sharpe = (expectedReturn - riskFreeRate) / volatility
	}

	return Result{
		Success:        true,
		Weights:        entries,
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
		SharpeRatio:    sharpe,
		Observations:   model.Observations,
	}, nil
}

// solve runs BFGS and retries with Nelder-Mead when the gradient-based method
// fails to converge.
func solve(problem optimize.Problem, initial []float64, log zerolog.Logger) ([]float64, error) {
	settings := &optimize.Settings{
		MajorIterations:   maxIterations,
		GradientThreshold: gradientTolerance,
	}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.BFGS{})
	if err == nil && acceptableStatus(result.Status) {
		return result.X, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("BFGS failed, retrying with Nelder-Mead")
	} else {
		log.Debug().Str("status", result.Status.String()).Msg("BFGS did not converge, retrying with Nelder-Mead")
	}

	result, err = optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	if !acceptableStatus(result.Status) {
		return nil, fmt.Errorf("optimization did not converge: %s", result.Status)
	}
	return result.X, nil
}

func acceptableStatus(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	default:
		return false
	}
}

// projectToBounds clamps every coordinate into [0, 1].
func projectToBounds(x []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < 0:
			w[i] = 0
		case v > 1:
			w[i] = 1
		default:
			w[i] = v
		}
	}
	return w
}

func sumPenalty(w []float64) float64 {
	d := sum(w) - 1
	return d * d
}

func sum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func normalize(w []float64) {
	s := sum(w)
	if s <= 0 {
		return
	}
	for i := range w {
		w[i] /= s
	}
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// reportedWeights drops dust allocations below minReportedWeight,
// renormalizes the survivors, and sorts them by weight descending.
func reportedWeights(symbols []string, weights []float64) []WeightEntry {
	var entries []WeightEntry
	var total float64
	for i, w := range weights {
		if w >= minReportedWeight {
			entries = append(entries, WeightEntry{Symbol: symbols[i], Weight: w})
			total += w
		}
	}
	if total <= 0 {
		return nil
	}
	for i := range entries {
		entries[i].Weight /= total
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight == entries[j].Weight {
			return entries[i].Symbol < entries[j].Symbol
		}
		return entries[i].Weight > entries[j].Weight
	})
	return entries
}
