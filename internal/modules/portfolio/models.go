package portfolio

// Position represents one held instrument.
type Position struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	ISIN         string  `json:"isin"`
	Quantity     int64   `json:"quantity"`
	BuyingPrice  float64 `json:"buyingPrice"`
	LastPrice    float64 `json:"lastPrice"`
	PurchaseDate string  `json:"purchaseDate"` // YYYY-MM-DD, may be empty on import
	Currency     string  `json:"currency"`
	Exchange     string  `json:"exchange"`
	Sector       string  `json:"sector"`
	Industry     string  `json:"industry"`
	AssetType    string  `json:"assetType"`
	ImportBatch  string  `json:"importBatch,omitempty"`
}

// Amount is the current market value of the position.
func (p Position) Amount() float64 {
	return float64(p.Quantity) * p.LastPrice
}

// PeriodReturn is the fractional return since purchase. Undefined (0) when
// the buying price is not positive.
func (p Position) PeriodReturn() float64 {
	if p.BuyingPrice <= 0 {
		return 0
	}
	return (p.LastPrice - p.BuyingPrice) / p.BuyingPrice
}

// Snapshot is an immutable, caller-owned view of a portfolio at a point in
// time. All analytics take a Snapshot (or values derived from one); nothing
// reads ambient portfolio state.
type Snapshot struct {
	Positions []Position `json:"positions"`
}

// TotalValue sums the market value of all positions.
func (s Snapshot) TotalValue() float64 {
	var total float64
	for _, p := range s.Positions {
		total += p.Amount()
	}
	return total
}

// Weights returns normalized portfolio weights keyed by symbol. Positions
// with a non-positive amount are excluded from the weight base (they stay in
// the position list, they just carry no weight).
func (s Snapshot) Weights() map[string]float64 {
	var total float64
	for _, p := range s.Positions {
		if amt := p.Amount(); amt > 0 {
			total += amt
		}
	}

	weights := make(map[string]float64)
	if total <= 0 {
		return weights
	}
	for _, p := range s.Positions {
		if amt := p.Amount(); amt > 0 {
			weights[p.Symbol] = amt / total
		}
	}
	return weights
}

// WeightedPerformance is the weight-sum of per-position period returns.
func (s Snapshot) WeightedPerformance() float64 {
	weights := s.Weights()
	var perf float64
	for _, p := range s.Positions {
		perf += weights[p.Symbol] * p.PeriodReturn()
	}
	return perf
}

// Summary bundles headline portfolio figures for the presentation layer.
type Summary struct {
	TotalValue          float64   `json:"total_value"`
	PositionCount       int       `json:"position_count"`
	WeightedPerformance float64   `json:"weighted_performance"`
	TopPositions        []Holding `json:"top_positions"`
	WorstPositions      []Holding `json:"worst_positions"`
}

// Holding is a display row: one position with its weight and return.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	PeriodReturn float64 `json:"period_return"`
}
