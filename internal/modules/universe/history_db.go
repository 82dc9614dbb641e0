package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// HistoryDB provides access to stored daily close prices.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// SaveDailyCloses upserts a batch of close prices for a symbol.
func (h *HistoryDB) SaveDailyCloses(symbol string, closes []DailyClose) error {
	if len(closes) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)
		 ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range closes {
		if _, err := stmt.Exec(symbol, c.Date, c.Close); err != nil {
			return fmt.Errorf("failed to upsert price %s/%s: %w", symbol, c.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}

	h.log.Debug().
		Str("symbol", symbol).
		Int("rows", len(closes)).
		Msg("Stored daily closes")

	return nil
}

// GetDailyCloses fetches stored closes for a symbol between fromDate and
// toDate (inclusive, YYYY-MM-DD), ordered by date ascending.
func (h *HistoryDB) GetDailyCloses(symbol, fromDate, toDate string) ([]DailyClose, error) {
	rows, err := h.db.Query(
		`SELECT date, close FROM daily_prices
		 WHERE symbol = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		symbol, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily closes: %w", err)
	}
	defer rows.Close()

	var closes []DailyClose
	for rows.Next() {
		var c DailyClose
		if err := rows.Scan(&c.Date, &c.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily close: %w", err)
		}
		closes = append(closes, c)
	}
	return closes, rows.Err()
}

// CountCloses returns the number of stored observations for a symbol in a range.
func (h *HistoryDB) CountCloses(symbol, fromDate, toDate string) (int, error) {
	var count int
	err := h.db.QueryRow(
		`SELECT COUNT(*) FROM daily_prices WHERE symbol = ? AND date >= ? AND date <= ?`,
		symbol, fromDate, toDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count closes: %w", err)
	}
	return count, nil
}

// LatestClose returns the most recent stored close for a symbol, or sql.ErrNoRows.
func (h *HistoryDB) LatestClose(symbol string) (DailyClose, error) {
	var c DailyClose
	err := h.db.QueryRow(
		`SELECT date, close FROM daily_prices WHERE symbol = ? ORDER BY date DESC LIMIT 1`,
		symbol).Scan(&c.Date, &c.Close)
	if err != nil {
		return DailyClose{}, err
	}
	return c, nil
}
