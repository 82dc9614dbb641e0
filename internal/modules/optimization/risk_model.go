package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/adurand/portanalyzer/pkg/formulas"
)

// RiskModel carries the annualized mean vector and covariance matrix the
// solvers operate on. Index order follows Symbols.
type RiskModel struct {
	Symbols      []string
	Mean         []float64
	Cov          *mat.SymDense
	Observations int
}

// BuildRiskModel estimates annualized expected returns and the covariance
// matrix from an aligned return matrix.
func BuildRiskModel(matrix *ReturnMatrix, tradingDaysPerYear int) (*RiskModel, error) {
	n := len(matrix.Symbols)
	if n < minInstruments {
		return nil, fmt.Errorf("need at least %d instruments, got %d", minInstruments, n)
	}
	days := float64(tradingDaysPerYear)

	mean := make([]float64, n)
	for i, symbol := range matrix.Symbols {
		mean[i] = formulas.Mean(matrix.Series[symbol]) * days
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := formulas.Covariance(matrix.Series[matrix.Symbols[i]], matrix.Series[matrix.Symbols[j]]) * days
			cov.SetSym(i, j, c)
		}
	}

	model := &RiskModel{
		Symbols:      matrix.Symbols,
		Mean:         mean,
		Cov:          cov,
		Observations: matrix.Observations,
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func (m *RiskModel) validate() error {
	for i, v := range m.Mean {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite expected return for %s", m.Symbols[i])
		}
	}
	n := len(m.Symbols)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := m.Cov.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite covariance between %s and %s", m.Symbols[i], m.Symbols[j])
			}
		}
		if m.Cov.At(i, i) < 0 {
			return fmt.Errorf("negative variance for %s", m.Symbols[i])
		}
	}
	return nil
}

// portfolioReturn computes mu' w.
func (m *RiskModel) portfolioReturn(weights []float64) float64 {
	var r float64
	for i, w := range weights {
		r += w * m.Mean[i]
	}
	return r
}

// portfolioVariance computes w' Sigma w.
func (m *RiskModel) portfolioVariance(weights []float64) float64 {
	n := len(weights)
	var v float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v += weights[i] * weights[j] * m.Cov.At(i, j)
		}
	}
	return v
}

// portfolioVolatility computes sqrt(w' Sigma w), floored at 0.
func (m *RiskModel) portfolioVolatility(weights []float64) float64 {
	v := m.portfolioVariance(weights)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// covMul computes Sigma w.
func (m *RiskModel) covMul(weights []float64) []float64 {
	n := len(weights)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += m.Cov.At(i, j) * weights[j]
		}
		out[i] = s
	}
	return out
}
