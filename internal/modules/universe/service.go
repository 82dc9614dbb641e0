package universe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/internal/clients/yahoo"
)

// Service resolves symbols, caches instrument metadata, and keeps the local
// price history current. It is the single place that talks to the market-data
// provider; analyzers only ever see stored series and Instrument values.
type Service struct {
	client    *yahoo.Client
	historyDB *HistoryDB
	db        *sql.DB
	log       zerolog.Logger
}

// NewService creates a new universe service
func NewService(client *yahoo.Client, historyDB *HistoryDB, db *sql.DB, log zerolog.Logger) *Service {
	return &Service{
		client:    client,
		historyDB: historyDB,
		db:        db,
		log:       log.With().Str("component", "universe").Logger(),
	}
}

// Search returns deduplicated symbol search results.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]yahoo.SearchResult, error) {
	results, err := s.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(results))
	unique := results[:0]
	for _, r := range results {
		if seen[r.Symbol] {
			continue
		}
		seen[r.Symbol] = true
		unique = append(unique, r)
	}
	return unique, nil
}

// Validate fetches and stores instrument metadata for a symbol.
func (s *Service) Validate(ctx context.Context, symbol string) (*Instrument, error) {
	profile, err := s.client.GetProfile(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", symbol, err)
	}

	inst := &Instrument{
		Symbol:       profile.Symbol,
		Name:         profile.Name,
		Price:        profile.Price,
		Currency:     profile.Currency,
		Exchange:     profile.Exchange,
		Sector:       profile.Sector,
		Industry:     profile.Industry,
		AssetType:    ClassifyAssetType(profile.Symbol, profile.Name, profile.Sector),
		ProviderBeta: profile.Beta,
	}

	if err := s.saveInstrument(inst); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist instrument metadata")
	}
	return inst, nil
}

// GetInstrument returns stored metadata for a symbol, or nil when unknown.
func (s *Service) GetInstrument(symbol string) (*Instrument, error) {
	var inst Instrument
	var beta sql.NullFloat64

	err := s.db.QueryRow(
		`SELECT symbol, name, sector, industry, exchange, currency, asset_type, provider_beta
		 FROM instruments WHERE symbol = ?`, symbol,
	).Scan(&inst.Symbol, &inst.Name, &inst.Sector, &inst.Industry,
		&inst.Exchange, &inst.Currency, &inst.AssetType, &beta)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query instrument: %w", err)
	}
	if beta.Valid {
		inst.ProviderBeta = &beta.Float64
	}
	return &inst, nil
}

// ProviderBeta returns the provider-supplied beta for a symbol, if stored.
func (s *Service) ProviderBeta(symbol string) *float64 {
	inst, err := s.GetInstrument(symbol)
	if err != nil || inst == nil {
		return nil
	}
	return inst.ProviderBeta
}

// EnsureHistory guarantees that at least minObservations daily closes exist
// locally for the symbol over the date range, fetching from the provider
// when the store falls short. Returns the stored series.
func (s *Service) EnsureHistory(ctx context.Context, symbol string, from, to time.Time, minObservations int) ([]DailyClose, error) {
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")

	count, err := s.historyDB.CountCloses(symbol, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	if count < minObservations {
		points, err := s.client.GetDailyHistory(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
		}

		closes := make([]DailyClose, len(points))
		for i, p := range points {
			closes[i] = DailyClose{Date: p.Date, Close: p.Close}
		}
		if err := s.historyDB.SaveDailyCloses(symbol, closes); err != nil {
			return nil, err
		}
	}

	return s.historyDB.GetDailyCloses(symbol, fromDate, toDate)
}

// LastPrice returns the most recent close for a symbol, fetching the profile
// as a fallback when no history is stored.
func (s *Service) LastPrice(ctx context.Context, symbol string) (float64, error) {
	if latest, err := s.historyDB.LatestClose(symbol); err == nil {
		return latest.Close, nil
	}

	profile, err := s.client.GetProfile(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return profile.Price, nil
}

func (s *Service) saveInstrument(inst *Instrument) error {
	var beta interface{}
	if inst.ProviderBeta != nil {
		beta = *inst.ProviderBeta
	}

	_, err := s.db.Exec(
		`INSERT INTO instruments (symbol, name, sector, industry, exchange, currency, asset_type, provider_beta, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			exchange = excluded.exchange,
			currency = excluded.currency,
			asset_type = excluded.asset_type,
			provider_beta = excluded.provider_beta,
			updated_at = excluded.updated_at`,
		inst.Symbol, inst.Name, inst.Sector, inst.Industry,
		inst.Exchange, inst.Currency, inst.AssetType, beta)
	return err
}
