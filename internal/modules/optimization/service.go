package optimization

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/adurand/portanalyzer/internal/modules/calculations"
	"github.com/adurand/portanalyzer/internal/modules/universe"
)

// Config carries the optimizer's market assumptions and history window.
type Config struct {
	RiskFreeRate       float64
	TradingDaysPerYear int
	LookbackDays       int
	FrontierSamples    int
}

// HistoryProvider supplies daily close series, fetching from the market-data
// provider when the local store falls short.
type HistoryProvider interface {
	EnsureHistory(ctx context.Context, symbol string, from, to time.Time, minObservations int) ([]universe.DailyClose, error)
}

// Window bounds the price history used to estimate the risk model. Zero
// values fall back to the configured lookback ending today.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) resolve(lookbackDays int) (from, to time.Time, err error) {
	to = w.To
	if to.IsZero() {
		to = time.Now()
	}
	from = w.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -lookbackDays)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("history window start %s is not before end %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return from, to, nil
}

// Service builds risk models from price history and runs the solvers. Risk
// models are cached: covariance estimation over a year of closes dominates
// the request cost.
type Service struct {
	history    HistoryProvider
	cache      *calculations.Cache
	cfg        Config
	strategies map[string]FrontierStrategy
	log        zerolog.Logger
}

// NewService creates the optimization service with both frontier strategies
// registered.
func NewService(history HistoryProvider, cache *calculations.Cache, cfg Config, log zerolog.Logger) *Service {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if cfg.TradingDaysPerYear <= 0 {
		cfg.TradingDaysPerYear = 252
	}
	componentLog := log.With().Str("component", "optimization").Logger()

	grid := NewGridFrontier(componentLog)
	sampling := NewSamplingFrontier(cfg.FrontierSamples, 0, componentLog)

	return &Service{
		history: history,
		cache:   cache,
		cfg:     cfg,
		strategies: map[string]FrontierStrategy{
			grid.Name():     grid,
			sampling.Name(): sampling,
		},
		log: componentLog,
	}
}

// Optimize solves the max-Sharpe allocation for the given symbols over the
// given history window. Domain failures (too few instruments, not enough
// history, no convergence) come back as a failed Result with a reason;
// errors are reserved for storage and provider problems.
func (s *Service) Optimize(ctx context.Context, symbols []string, window Window) (Result, error) {
	model, dropped, err := s.buildModel(ctx, symbols, window)
	if err != nil {
		s.log.Warn().Err(err).Strs("symbols", symbols).Msg("Risk model construction failed")
		return Result{Success: false, Reason: err.Error()}, nil
	}

	result, err := MaxSharpe(model, s.cfg.RiskFreeRate, s.log)
	if err != nil {
		return Result{}, err
	}
	result.DroppedSymbols = dropped

	s.log.Info().
		Bool("success", result.Success).
		Int("instruments", len(model.Symbols)).
		Int("observations", model.Observations).
		Float64("sharpe", result.SharpeRatio).
		Msg("Max-Sharpe optimization finished")
	return result, nil
}

// Frontier computes the efficient frontier with the named strategy ("grid" or
// "sampling"; empty selects grid) over the given history window.
func (s *Service) Frontier(ctx context.Context, symbols []string, strategy string, points int, window Window) (Frontier, error) {
	if strategy == "" {
		strategy = "grid"
	}
	impl, ok := s.strategies[strategy]
	if !ok {
		return Frontier{}, fmt.Errorf("unknown frontier strategy %q", strategy)
	}

	model, _, err := s.buildModel(ctx, symbols, window)
	if err != nil {
		return Frontier{}, err
	}
	return impl.Compute(ctx, model, s.cfg.RiskFreeRate, points)
}

// cachedModel is the msgpack shape of a RiskModel. The covariance matrix is
// flattened row-major.
type cachedModel struct {
	Symbols      []string  `msgpack:"symbols"`
	Mean         []float64 `msgpack:"mean"`
	Cov          []float64 `msgpack:"cov"`
	Observations int       `msgpack:"observations"`
	Dropped      []string  `msgpack:"dropped"`
}

func (s *Service) buildModel(ctx context.Context, symbols []string, window Window) (*RiskModel, []string, error) {
	if len(symbols) == 0 {
		return nil, nil, fmt.Errorf("no symbols supplied")
	}

	from, to, err := window.resolve(s.cfg.LookbackDays)
	if err != nil {
		return nil, nil, err
	}
	key := s.modelCacheKey(symbols, from, to)

	if s.cache != nil {
		var cached cachedModel
		if s.cache.Get("risk_model", key, &cached) {
			model, err := cached.restore()
			if err == nil {
				return model, cached.Dropped, nil
			}
			s.log.Warn().Err(err).Msg("Discarding unusable cached risk model")
		}
	}

	history := make(map[string][]universe.DailyClose, len(symbols))
	for _, symbol := range symbols {
		closes, err := s.history.EnsureHistory(ctx, symbol, from, to, minObservations)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("No usable history, excluding from optimization")
			continue
		}
		history[symbol] = closes
	}

	matrix, err := BuildAlignedReturns(history)
	if err != nil {
		return nil, nil, err
	}
	model, err := BuildRiskModel(matrix, s.cfg.TradingDaysPerYear)
	if err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set("risk_model", key, flatten(model, matrix.Dropped), calculations.TTLCovariance); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache risk model")
		}
	}
	return model, matrix.Dropped, nil
}

func (s *Service) modelCacheKey(symbols []string, from, to time.Time) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%s|%s", from.Format("2006-01-02"), to.Format("2006-01-02"), strings.Join(sorted, ","))
}

func flatten(model *RiskModel, dropped []string) cachedModel {
	n := len(model.Symbols)
	cov := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cov = append(cov, model.Cov.At(i, j))
		}
	}
	return cachedModel{
		Symbols:      model.Symbols,
		Mean:         model.Mean,
		Cov:          cov,
		Observations: model.Observations,
		Dropped:      dropped,
	}
}

func (c cachedModel) restore() (*RiskModel, error) {
	n := len(c.Symbols)
	if n < minInstruments || len(c.Mean) != n || len(c.Cov) != n*n {
		return nil, fmt.Errorf("cached risk model has inconsistent dimensions")
	}
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, c.Cov[i*n+j])
		}
	}
	model := &RiskModel{
		Symbols:      c.Symbols,
		Mean:         c.Mean,
		Cov:          cov,
		Observations: c.Observations,
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return model, nil
}
