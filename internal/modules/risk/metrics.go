// Package risk computes risk-adjusted performance metrics for a portfolio:
// Sharpe, Sortino, Calmar, historical VaR/CVaR, maximum drawdown, beta, alpha,
// Treynor and information ratio.
package risk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/pkg/formulas"
)

// Config carries the market assumptions used by the analyzer.
type Config struct {
	RiskFreeRate        float64
	AssumedMarketReturn float64
	TradingDaysPerYear  int
}

// PositionInput is one holding as seen by the analyzer: its normalized weight
// and the point return over the holding period.
type PositionInput struct {
	Symbol       string
	Weight       float64
	PeriodReturn float64
}

// Input is everything the analyzer can consume. ReturnSeries and MarketSeries
// are optional; when absent the analyzer degrades to approximate figures and
// flags them as such in the snapshot.
type Input struct {
	Positions []PositionInput

	// ReturnSeries holds aligned daily returns per symbol. All series
	// present must have the same length and date alignment.
	ReturnSeries map[string][]float64

	// MarketSeries holds daily returns of the market index, aligned with
	// ReturnSeries when both are present.
	MarketSeries []float64
}

// Snapshot is the full set of computed metrics. A zero-value Snapshot means
// the input was not computable (no positions or zero total weight); callers
// must treat it as "no data", not as a genuinely flat portfolio.
type Snapshot struct {
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	MaxDrawdown float64 `json:"max_drawdown"`
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`

	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	TreynorRatio     float64 `json:"treynor_ratio"`
	TrackingError    float64 `json:"tracking_error"`
	InformationRatio float64 `json:"information_ratio"`

	PerformanceGrade string `json:"performance_grade"`

	// Approximation flags. True when the corresponding figure was derived
	// without historical series and must not be presented as measured.
	VolatilityApproximate    bool `json:"volatility_approximate"`
	TrackingErrorApproximate bool `json:"tracking_error_approximate"`
}

// BetaProvider supplies a fallback beta for a symbol, typically sourced from
// the market-data provider's key statistics. Nil means unknown.
type BetaProvider interface {
	ProviderBeta(symbol string) *float64
}

// trackingErrorFraction approximates tracking error as a fraction of total
// volatility when no market series is available.
const trackingErrorFraction = 0.5

const defaultBeta = 1.0

// Analyzer computes risk snapshots from portfolio inputs.
type Analyzer struct {
	cfg   Config
	betas BetaProvider
	log   zerolog.Logger
}

// NewAnalyzer creates a risk analyzer. betas may be nil, in which case
// positions without a regression beta default to 1.0.
func NewAnalyzer(cfg Config, betas BetaProvider, log zerolog.Logger) *Analyzer {
	if cfg.TradingDaysPerYear <= 0 {
		cfg.TradingDaysPerYear = formulas.TradingDaysPerYear
	}
	return &Analyzer{
		cfg:   cfg,
		betas: betas,
		log:   log.With().Str("component", "risk").Logger(),
	}
}

// Compute derives the full metric snapshot from the input. Missing optional
// inputs never produce an error; they degrade individual metrics instead.
func (a *Analyzer) Compute(input Input) Snapshot {
	weights, pointReturns, ok := normalizeInput(input.Positions)
	if !ok {
		a.log.Debug().Msg("risk input not computable, returning zero snapshot")
		return Snapshot{}
	}

	snap := Snapshot{}
	days := a.cfg.TradingDaysPerYear

	// Point portfolio return, annualized by scaling to a full trading year.
	var portfolioReturn float64
	for i, w := range weights {
		portfolioReturn += w * pointReturns[i]
	}
	snap.AnnualizedReturn = portfolioReturn * float64(days)

	portfolioSeries := buildPortfolioSeries(input.Positions, weights, input.ReturnSeries)

	if len(portfolioSeries) >= 2 {
		snap.AnnualizedVolatility = formulas.AnnualizedVolatility(portfolioSeries, days)
	} else {
		snap.AnnualizedVolatility = formulas.EstimateVolatilityDiagonal(weights, pointReturns) * math.Sqrt(float64(days))
		snap.VolatilityApproximate = true
	}

	// Distribution metrics run on the portfolio's daily series when present,
	// else on the cross-section of position point returns.
	distribution := portfolioSeries
	if len(distribution) == 0 {
		distribution = pointReturns
	}

	snap.SharpeRatio = formulas.SharpeRatio(snap.AnnualizedReturn, snap.AnnualizedVolatility, a.cfg.RiskFreeRate)
	snap.SortinoRatio = formulas.SortinoRatio(snap.AnnualizedReturn, a.cfg.RiskFreeRate, distribution, snap.AnnualizedVolatility, days)

	if len(portfolioSeries) >= 2 {
		snap.MaxDrawdown = formulas.MaxDrawdown(portfolioSeries)
	}
	snap.CalmarRatio = formulas.CalmarRatio(snap.AnnualizedReturn, snap.MaxDrawdown)

	snap.VaR95 = formulas.HistoricalVaR(distribution, 0.95)
	snap.CVaR95 = formulas.ConditionalVaR(distribution, 0.95)

	snap.Beta = a.portfolioBeta(input.Positions, weights, input.ReturnSeries, input.MarketSeries)

	marketReturn := a.cfg.AssumedMarketReturn
	if len(input.MarketSeries) >= 2 {
		marketReturn = formulas.Mean(input.MarketSeries) * float64(days)
	}
	snap.Alpha = snap.AnnualizedReturn - (a.cfg.RiskFreeRate + snap.Beta*(marketReturn-a.cfg.RiskFreeRate))

	snap.TreynorRatio = formulas.TreynorRatio(snap.AnnualizedReturn, a.cfg.RiskFreeRate, snap.Beta)

	if len(portfolioSeries) >= 2 && len(input.MarketSeries) == len(portfolioSeries) {
		diffs := make([]float64, len(portfolioSeries))
		for i := range portfolioSeries {
			diffs[i] = portfolioSeries[i] - input.MarketSeries[i]
		}
		snap.TrackingError = formulas.AnnualizedVolatility(diffs, days)
	} else {
		snap.TrackingError = trackingErrorFraction * snap.AnnualizedVolatility
		snap.TrackingErrorApproximate = true
	}

	if snap.TrackingError > 0 {
		snap.InformationRatio = snap.Alpha / snap.TrackingError
	}

	snap.PerformanceGrade = gradeFor(snap.SharpeRatio, snap.SortinoRatio)
	return snap
}

// normalizeInput extracts positive weights and their point returns, scaled to
// sum to 1. Reports false when nothing is computable.
func normalizeInput(positions []PositionInput) (weights, returns []float64, ok bool) {
	var total float64
	for _, p := range positions {
		if p.Weight > 0 {
			total += p.Weight
		}
	}
	if total <= 0 {
		return nil, nil, false
	}

	for _, p := range positions {
		if p.Weight > 0 {
			weights = append(weights, p.Weight/total)
			returns = append(returns, p.PeriodReturn)
		}
	}
	return weights, returns, true
}

// buildPortfolioSeries composes the weighted daily return series of the whole
// portfolio. Requires every weighted position to carry an aligned series of
// identical length; otherwise returns nil and the caller degrades to
// approximations.
func buildPortfolioSeries(positions []PositionInput, weights []float64, series map[string][]float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	length := -1
	rows := make([][]float64, 0, len(weights))
	for _, p := range positions {
		if p.Weight <= 0 {
			continue
		}
		s, ok := series[p.Symbol]
		if !ok {
			return nil
		}
		if length == -1 {
			length = len(s)
		} else if len(s) != length {
			return nil
		}
		rows = append(rows, s)
	}
	if length < 2 {
		return nil
	}

	out := make([]float64, length)
	for t := 0; t < length; t++ {
		for i, row := range rows {
			out[t] += weights[i] * row[t]
		}
	}
	return out
}

// portfolioBeta is the weight-average of per-instrument betas. Regression
// betas are preferred, then provider betas, then the market default of 1.0.
func (a *Analyzer) portfolioBeta(positions []PositionInput, weights []float64, series map[string][]float64, market []float64) float64 {
	var beta float64
	i := 0
	for _, p := range positions {
		if p.Weight <= 0 {
			continue
		}
		beta += weights[i] * a.instrumentBeta(p.Symbol, series, market)
		i++
	}
	return beta
}

func (a *Analyzer) instrumentBeta(symbol string, series map[string][]float64, market []float64) float64 {
	if assetReturns, ok := series[symbol]; ok && len(market) > 0 {
		if b, ok := InstrumentBeta(assetReturns, market); ok {
			return b
		}
	}
	if a.betas != nil {
		if b := a.betas.ProviderBeta(symbol); b != nil && !math.IsNaN(*b) {
			return *b
		}
	}
	return defaultBeta
}

// gradeFor maps the Sharpe/Sortino pair to a letter grade. The table is
// ordered from best to worst; the first row whose thresholds are both met
// wins.
func gradeFor(sharpe, sortino float64) string {
	switch {
	case sharpe >= 2.0 && sortino >= 2.5:
		return "A+ (Excellent)"
	case sharpe >= 1.5 && sortino >= 2.0:
		return "A (Very Good)"
	case sharpe >= 1.0 && sortino >= 1.5:
		return "B+ (Good)"
	case sharpe >= 0.5 && sortino >= 0.75:
		return "B (Fair)"
	case sharpe >= 0.0:
		return "C (Poor)"
	default:
		return "D (Insufficient)"
	}
}
