package concentration

import (
	"sort"
	"strings"

	"github.com/adurand/portanalyzer/internal/modules/portfolio"
)

// GroupShare is the aggregated weight of one category (sector, region, ...).
type GroupShare struct {
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	Amount         float64 `json:"amount"`
	AvgPerformance float64 `json:"avg_performance"`
	Count          int     `json:"count"`
}

// exchangeRegions maps exchange-name substrings to a coarse region label.
var exchangeRegions = map[string]string{
	"nyse":      "USA",
	"nasdaq":    "USA",
	"nysearca":  "USA",
	"paris":     "Europe",
	"london":    "Europe",
	"frankfurt": "Europe",
	"milan":     "Europe",
	"amsterdam": "Europe",
	"swiss":     "Europe",
	"tokyo":     "Asia",
	"hong kong": "Asia",
	"shanghai":  "Asia",
	"toronto":   "North America",
	"tsx":       "North America",
}

// BySector aggregates portfolio weight per sector, sorted by weight descending.
func BySector(snapshot portfolio.Snapshot) []GroupShare {
	return groupBy(snapshot, func(p portfolio.Position) string {
		if p.Sector == "" {
			return "Unknown"
		}
		return p.Sector
	})
}

// ByRegion aggregates portfolio weight per region, derived from each
// position's exchange name. Unmapped exchanges land in "Other".
func ByRegion(snapshot portfolio.Snapshot) []GroupShare {
	return groupBy(snapshot, func(p portfolio.Position) string {
		return regionForExchange(p.Exchange)
	})
}

// ByAssetType aggregates portfolio weight per asset type.
func ByAssetType(snapshot portfolio.Snapshot) []GroupShare {
	return groupBy(snapshot, func(p portfolio.Position) string {
		if p.AssetType == "" {
			return "Stock"
		}
		return p.AssetType
	})
}

func regionForExchange(exchange string) string {
	lower := strings.ToLower(exchange)
	for marker, region := range exchangeRegions {
		if strings.Contains(lower, marker) {
			return region
		}
	}
	return "Other"
}

func groupBy(snapshot portfolio.Snapshot, key func(portfolio.Position) string) []GroupShare {
	weights := snapshot.Weights()

	groups := make(map[string]*GroupShare)
	for _, p := range snapshot.Positions {
		name := key(p)
		g, ok := groups[name]
		if !ok {
			g = &GroupShare{Name: name}
			groups[name] = g
		}
		g.Weight += weights[p.Symbol]
		g.Amount += p.Amount()
		g.AvgPerformance += p.PeriodReturn()
		g.Count++
	}

	shares := make([]GroupShare, 0, len(groups))
	for _, g := range groups {
		if g.Count > 0 {
			g.AvgPerformance /= float64(g.Count)
		}
		shares = append(shares, *g)
	}

	sort.Slice(shares, func(i, j int) bool { return shares[i].Weight > shares[j].Weight })
	return shares
}
