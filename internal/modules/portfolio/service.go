package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/internal/modules/universe"
)

// Service owns the position lifecycle: add, refresh, remove, snapshot.
type Service struct {
	repo     *PositionRepository
	universe *universe.Service
	log      zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(repo *PositionRepository, universeSvc *universe.Service, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		universe: universeSvc,
		log:      log.With().Str("component", "portfolio").Logger(),
	}
}

// Snapshot returns the current portfolio as an immutable value.
func (s *Service) Snapshot() (Snapshot, error) {
	positions, err := s.repo.GetAll()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Positions: positions}, nil
}

// AddPosition validates the symbol against the market-data provider and
// stores a new position bought at the current price.
func (s *Service) AddPosition(ctx context.Context, symbol string, quantity int64) (*Position, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	inst, err := s.universe.Validate(ctx, symbol)
	if err != nil {
		return nil, err
	}

	pos := Position{
		Symbol:       inst.Symbol,
		Name:         inst.Name,
		Quantity:     quantity,
		BuyingPrice:  inst.Price,
		LastPrice:    inst.Price,
		PurchaseDate: time.Now().UTC().Format("2006-01-02"),
		Currency:     inst.Currency,
		Exchange:     inst.Exchange,
		Sector:       inst.Sector,
		Industry:     inst.Industry,
		AssetType:    inst.AssetType,
	}

	if err := s.repo.Upsert(pos); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", pos.Symbol).
		Int64("quantity", quantity).
		Float64("price", pos.BuyingPrice).
		Msg("Added position")

	return &pos, nil
}

// HeldSymbols lists the symbols of all stored positions.
func (s *Service) HeldSymbols() ([]string, error) {
	positions, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(positions))
	for _, p := range positions {
		symbols = append(symbols, p.Symbol)
	}
	return symbols, nil
}

// RemovePosition deletes a position.
func (s *Service) RemovePosition(symbol string) error {
	return s.repo.Delete(symbol)
}

// RefreshPrices updates last prices for all positions from the market-data
// provider. Symbols that fail to refresh are skipped and counted; a partial
// refresh is not an error.
func (s *Service) RefreshPrices(ctx context.Context) (updated, failed int, err error) {
	positions, err := s.repo.GetAll()
	if err != nil {
		return 0, 0, err
	}

	for _, pos := range positions {
		price, err := s.universe.LastPrice(ctx, pos.Symbol)
		if err != nil || price <= 0 {
			s.log.Warn().
				Str("symbol", pos.Symbol).
				Err(err).
				Msg("Failed to refresh price, keeping previous")
			failed++
			continue
		}
		if err := s.repo.UpdateLastPrice(pos.Symbol, price); err != nil {
			failed++
			continue
		}
		updated++
	}

	s.log.Info().
		Int("updated", updated).
		Int("failed", failed).
		Msg("Refreshed position prices")

	return updated, failed, nil
}

// Summarize computes headline figures and top/worst holdings for display.
func (s *Service) Summarize(snapshot Snapshot, topN int) Summary {
	if topN <= 0 {
		topN = 5
	}

	weights := snapshot.Weights()
	holdings := make([]Holding, 0, len(snapshot.Positions))
	for _, p := range snapshot.Positions {
		holdings = append(holdings, Holding{
			Symbol:       p.Symbol,
			Name:         p.Name,
			Weight:       weights[p.Symbol],
			PeriodReturn: p.PeriodReturn(),
		})
	}

	byWeight := make([]Holding, len(holdings))
	copy(byWeight, holdings)
	sort.Slice(byWeight, func(i, j int) bool { return byWeight[i].Weight > byWeight[j].Weight })

	byReturn := make([]Holding, len(holdings))
	copy(byReturn, holdings)
	sort.Slice(byReturn, func(i, j int) bool { return byReturn[i].PeriodReturn < byReturn[j].PeriodReturn })

	if topN > len(holdings) {
		topN = len(holdings)
	}

	return Summary{
		TotalValue:          snapshot.TotalValue(),
		PositionCount:       len(snapshot.Positions),
		WeightedPerformance: snapshot.WeightedPerformance(),
		TopPositions:        byWeight[:topN],
		WorstPositions:      byReturn[:topN],
	}
}
