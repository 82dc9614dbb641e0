package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// PositionRepository handles position database operations.
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

const positionColumns = `symbol, name, isin, quantity, buying_price, last_price,
	purchase_date, currency, exchange, sector, industry, asset_type, import_batch`

// GetAll returns all positions ordered by symbol.
func (r *PositionRepository) GetAll() ([]Position, error) {
	rows, err := r.db.Query(`SELECT ` + positionColumns + ` FROM positions ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// Get returns one position by symbol, or sql.ErrNoRows.
func (r *PositionRepository) Get(symbol string) (Position, error) {
	row := r.db.QueryRow(`SELECT `+positionColumns+` FROM positions WHERE symbol = ?`, symbol)
	return scanPositionRow(row)
}

// Upsert inserts or replaces a position.
func (r *PositionRepository) Upsert(p Position) error {
	_, err := r.db.Exec(
		`INSERT INTO positions (symbol, name, isin, quantity, buying_price, last_price,
			purchase_date, currency, exchange, sector, industry, asset_type, import_batch, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			isin = excluded.isin,
			quantity = excluded.quantity,
			buying_price = excluded.buying_price,
			last_price = excluded.last_price,
			purchase_date = excluded.purchase_date,
			currency = excluded.currency,
			exchange = excluded.exchange,
			sector = excluded.sector,
			industry = excluded.industry,
			asset_type = excluded.asset_type,
			import_batch = excluded.import_batch,
			updated_at = excluded.updated_at`,
		p.Symbol, p.Name, p.ISIN, p.Quantity, p.BuyingPrice, p.LastPrice,
		p.PurchaseDate, p.Currency, p.Exchange, p.Sector, p.Industry,
		p.AssetType, p.ImportBatch)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", p.Symbol, err)
	}
	return nil
}

// UpdateLastPrice updates the last price of a position; derived fields are
// computed on read, never stored.
func (r *PositionRepository) UpdateLastPrice(symbol string, lastPrice float64) error {
	result, err := r.db.Exec(
		`UPDATE positions SET last_price = ?, updated_at = datetime('now') WHERE symbol = ?`,
		lastPrice, symbol)
	if err != nil {
		return fmt.Errorf("failed to update price for %s: %w", symbol, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("position %s not found", symbol)
	}
	return nil
}

// Delete removes a position.
func (r *PositionRepository) Delete(symbol string) error {
	result, err := r.db.Exec(`DELETE FROM positions WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position %s: %w", symbol, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("position %s not found", symbol)
	}
	return nil
}

// DeleteAll clears the portfolio.
func (r *PositionRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(rows *sql.Rows) (Position, error) {
	return scanPositionRow(rows)
}

func scanPositionRow(row rowScanner) (Position, error) {
	var p Position
	err := row.Scan(&p.Symbol, &p.Name, &p.ISIN, &p.Quantity, &p.BuyingPrice,
		&p.LastPrice, &p.PurchaseDate, &p.Currency, &p.Exchange, &p.Sector,
		&p.Industry, &p.AssetType, &p.ImportBatch)
	return p, err
}
