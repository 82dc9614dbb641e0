package universe

// Instrument represents validated static attributes for one tradable symbol.
type Instrument struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Exchange     string   `json:"exchange"`
	Sector       string   `json:"sector"`
	Industry     string   `json:"industry"`
	AssetType    string   `json:"asset_type"`
	ProviderBeta *float64 `json:"provider_beta,omitempty"`
}

// DailyClose is one stored close-price observation.
type DailyClose struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}
