package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// columnAliases maps canonical column names to accepted spellings.
// Matching is case-insensitive. Normalization happens here, at the import
// boundary; analyzers never see raw column names.
var columnAliases = map[string][]string{
	"name":         {"name", "nom", "title", "security", "instrument"},
	"symbol":       {"symbol", "ticker", "symbole"},
	"isin":         {"isin"},
	"quantity":     {"quantity", "qty", "quantite", "shares", "units"},
	"buyingPrice":  {"buyingprice", "buying_price", "prix_achat", "purchase_price", "cost"},
	"lastPrice":    {"lastprice", "last_price", "prix_actuel", "current_price", "market_price"},
	"purchaseDate": {"purchasedate", "purchase_date", "date_achat", "buy_date"},
	"currency":     {"currency", "devise"},
	"exchange":     {"exchange", "place"},
	"sector":       {"sector", "secteur"},
	"assetType":    {"assettype", "asset_type", "type"},
}

// ImportResult reports the outcome of a CSV import.
type ImportResult struct {
	BatchID  string   `json:"batch_id"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer reads normalized position tables from CSV.
type Importer struct {
	repo *PositionRepository
	log  zerolog.Logger
}

// NewImporter creates a new CSV importer
func NewImporter(repo *PositionRepository, log zerolog.Logger) *Importer {
	return &Importer{
		repo: repo,
		log:  log.With().Str("component", "importer").Logger(),
	}
}

// ImportCSV parses a CSV stream, normalizes column names, fills defaults,
// and upserts the resulting positions under a fresh batch ID. Rows missing
// required fields are skipped with a recorded reason, not fatal.
func (im *Importer) ImportCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := resolveColumns(header)
	for _, required := range []string{"quantity", "buyingPrice"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q (or an alias)", required)
		}
	}
	if _, hasSymbol := columns["symbol"]; !hasSymbol {
		if _, hasName := columns["name"]; !hasName {
			return nil, fmt.Errorf("CSV needs a symbol or name column")
		}
	}

	result := &ImportResult{BatchID: uuid.NewString()}

	// Rows are numbered by record, not physical line: quoted fields may
	// span several lines.
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}

		pos, err := buildPosition(record, columns, result.BatchID)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		if err := im.repo.Upsert(pos); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}
		result.Imported++
	}

	im.log.Info().
		Str("batch", result.BatchID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("CSV import complete")

	return result, nil
}

// ExportCSV writes the current positions as a CSV report.
func (im *Importer) ExportCSV(w io.Writer) error {
	positions, err := im.repo.GetAll()
	if err != nil {
		return err
	}

	snapshot := Snapshot{Positions: positions}
	weights := snapshot.Weights()

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"name", "symbol", "quantity", "buyingPrice", "lastPrice",
		"amount", "weight_pct", "perf_pct", "sector", "asset_type",
	}); err != nil {
		return err
	}

	for _, p := range positions {
		row := []string{
			p.Name,
			p.Symbol,
			strconv.FormatInt(p.Quantity, 10),
			strconv.FormatFloat(p.BuyingPrice, 'f', 2, 64),
			strconv.FormatFloat(p.LastPrice, 'f', 2, 64),
			strconv.FormatFloat(p.Amount(), 'f', 2, 64),
			strconv.FormatFloat(weights[p.Symbol]*100, 'f', 1, 64),
			strconv.FormatFloat(p.PeriodReturn()*100, 'f', 2, 64),
			p.Sector,
			p.AssetType,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolveColumns maps canonical names to column indices using the alias table.
func resolveColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		for canonical, aliases := range columnAliases {
			if _, taken := columns[canonical]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					columns[canonical] = i
					break
				}
			}
		}
	}
	return columns
}

func buildPosition(record []string, columns map[string]int, batchID string) (Position, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	quantity, err := strconv.ParseInt(field("quantity"), 10, 64)
	if err != nil || quantity < 1 {
		return Position{}, fmt.Errorf("invalid quantity %q", field("quantity"))
	}

	buyingPrice, err := strconv.ParseFloat(field("buyingPrice"), 64)
	if err != nil || buyingPrice <= 0 {
		return Position{}, fmt.Errorf("invalid buying price %q", field("buyingPrice"))
	}

	lastPrice := buyingPrice
	if raw := field("lastPrice"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			lastPrice = parsed
		}
	}

	symbol := field("symbol")
	name := field("name")
	if symbol == "" && name == "" {
		return Position{}, fmt.Errorf("row has neither symbol nor name")
	}
	if symbol == "" {
		symbol = name
	}
	if name == "" {
		name = symbol
	}

	return Position{
		Symbol:       symbol,
		Name:         name,
		ISIN:         field("isin"),
		Quantity:     quantity,
		BuyingPrice:  buyingPrice,
		LastPrice:    lastPrice,
		PurchaseDate: field("purchaseDate"),
		Currency:     orDefault(field("currency"), "EUR"),
		Exchange:     orDefault(field("exchange"), "Unknown"),
		Sector:       orDefault(field("sector"), "Unknown"),
		Industry:     "Unknown",
		AssetType:    orDefault(field("assetType"), "Stock"),
		ImportBatch:  batchID,
	}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
