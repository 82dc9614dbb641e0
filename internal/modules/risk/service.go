package risk

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/internal/modules/optimization"
	"github.com/adurand/portanalyzer/internal/modules/portfolio"
	"github.com/adurand/portanalyzer/internal/modules/universe"
)

// Service assembles analyzer inputs from the portfolio and the local price
// history. Missing history is never fatal; the analyzer falls back to
// approximate figures.
type Service struct {
	analyzer     *Analyzer
	portfolio    *portfolio.Service
	history      optimization.HistoryProvider
	marketSymbol string
	lookbackDays int
	log          zerolog.Logger
}

// NewService creates a new risk service. marketSymbol is the index used for
// beta and tracking error, typically ^GSPC.
func NewService(analyzer *Analyzer, portfolioSvc *portfolio.Service, history optimization.HistoryProvider, marketSymbol string, lookbackDays int, log zerolog.Logger) *Service {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	return &Service{
		analyzer:     analyzer,
		portfolio:    portfolioSvc,
		history:      history,
		marketSymbol: marketSymbol,
		lookbackDays: lookbackDays,
		log:          log.With().Str("component", "risk_service").Logger(),
	}
}

// Snapshot computes the current portfolio's risk metrics.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.portfolio.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}

	weights := snap.Weights()
	input := Input{}
	for _, p := range snap.Positions {
		w, ok := weights[p.Symbol]
		if !ok {
			continue
		}
		input.Positions = append(input.Positions, PositionInput{
			Symbol:       p.Symbol,
			Weight:       w,
			PeriodReturn: p.PeriodReturn(),
		})
	}

	input.ReturnSeries, input.MarketSeries = s.loadSeries(ctx, input.Positions)
	return s.analyzer.Compute(input), nil
}

// loadSeries fetches and aligns daily return series for the positions and
// the market index. Any failure degrades to nil series rather than an error.
func (s *Service) loadSeries(ctx context.Context, positions []PositionInput) (map[string][]float64, []float64) {
	if len(positions) == 0 {
		return nil, nil
	}

	to := time.Now()
	from := to.AddDate(0, 0, -s.lookbackDays)

	history := make(map[string][]universe.DailyClose, len(positions)+1)
	for _, p := range positions {
		closes, err := s.history.EnsureHistory(ctx, p.Symbol, from, to, MinBetaObservations)
		if err != nil {
			s.log.Debug().Err(err).Str("symbol", p.Symbol).Msg("No history for risk series")
			continue
		}
		history[p.Symbol] = closes
	}
	if s.marketSymbol != "" {
		closes, err := s.history.EnsureHistory(ctx, s.marketSymbol, from, to, MinBetaObservations)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", s.marketSymbol).Msg("No market index history")
		} else {
			history[s.marketSymbol] = closes
		}
	}

	matrix, err := optimization.BuildAlignedReturns(history)
	if err != nil {
		s.log.Debug().Err(err).Msg("Return alignment failed, using approximate metrics")
		return nil, nil
	}

	series := make(map[string][]float64, len(matrix.Series))
	var market []float64
	for symbol, returns := range matrix.Series {
		if symbol == s.marketSymbol {
			market = returns
			continue
		}
		series[symbol] = returns
	}
	return series, market
}
