// Package yahoo implements the market-data provider client: symbol search,
// instrument profiles, and daily close-price history. It is a thin
// collaborator: it performs no retries and no caching, and returns errors
// for the calling layer to handle.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the Yahoo Finance public endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a new market-data client
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "yahoo_client").Logger(),
	}
}

// SearchResult is one hit from the symbol search endpoint.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
}

// Profile holds static instrument attributes plus the provider-supplied beta.
type Profile struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Exchange string   `json:"exchange"`
	Sector   string   `json:"sector"`
	Industry string   `json:"industry"`
	Beta     *float64 `json:"beta,omitempty"`
}

// PricePoint is one daily close observation.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// Search queries the symbol search endpoint and returns up to limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=%d",
		c.baseURL, url.QueryEscape(query), limit)

	var payload struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			TypeDisp  string `json:"typeDisp"`
			Exchange  string `json:"exchange"`
		} `json:"quotes"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.Symbol == "" || q.ShortName == "" {
			continue
		}
		typ := q.TypeDisp
		if typ == "" {
			typ = "Stock"
		}
		exch := q.Exchange
		if exch == "" {
			exch = "Unknown"
		}
		results = append(results, SearchResult{
			Symbol:   q.Symbol,
			Name:     q.ShortName,
			Type:     typ,
			Exchange: exch,
		})
	}
	return results, nil
}

// GetProfile fetches static attributes and the current price for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*Profile, error) {
	endpoint := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=assetProfile,price,defaultKeyStatistics",
		c.baseURL, url.PathEscape(symbol))

	var payload struct {
		QuoteSummary struct {
			Result []struct {
				AssetProfile struct {
					Sector   string `json:"sector"`
					Industry string `json:"industry"`
				} `json:"assetProfile"`
				Price struct {
					ShortName          string `json:"shortName"`
					Currency           string `json:"currency"`
					ExchangeName       string `json:"exchangeName"`
					RegularMarketPrice struct {
						Raw float64 `json:"raw"`
					} `json:"regularMarketPrice"`
				} `json:"price"`
				DefaultKeyStatistics struct {
					Beta struct {
						Raw *float64 `json:"raw"`
					} `json:"beta"`
				} `json:"defaultKeyStatistics"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteSummary"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("quote summary for %s failed: %w", symbol, err)
	}
	if payload.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary for %s: %s", symbol, payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary data for %s", symbol)
	}

	r := payload.QuoteSummary.Result[0]
	profile := &Profile{
		Symbol:   symbol,
		Name:     r.Price.ShortName,
		Price:    r.Price.RegularMarketPrice.Raw,
		Currency: orDefault(r.Price.Currency, "USD"),
		Exchange: orDefault(r.Price.ExchangeName, "Unknown"),
		Sector:   orDefault(r.AssetProfile.Sector, "Unknown"),
		Industry: orDefault(r.AssetProfile.Industry, "Unknown"),
		Beta:     r.DefaultKeyStatistics.Beta.Raw,
	}
	if profile.Price <= 0 {
		return nil, fmt.Errorf("no price available for %s", symbol)
	}
	return profile, nil
}

// GetDailyHistory fetches daily close prices for a symbol between from and to.
// Days where the provider reports no close are skipped.
func (c *Client) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	var payload struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("price history for %s failed: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("price history for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	result := payload.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	points := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("points", len(points)).
		Msg("Fetched daily history")

	return points, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "portanalyzer/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
