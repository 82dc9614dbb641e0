package universe

import "strings"

// Asset types recognized by the classifier.
const (
	AssetTypeStock  = "Stock"
	AssetTypeETF    = "ETF"
	AssetTypeCrypto = "Cryptocurrency"
	AssetTypeREIT   = "REIT"
)

var sectorAssetTypes = []struct {
	keyword string
	label   string
}{
	{"technology", "Tech Stock"},
	{"healthcare", "Healthcare Stock"},
	{"financial", "Financial Stock"},
	{"energy", "Energy Stock"},
	{"consumer", "Consumer Stock"},
	{"industrial", "Industrial Stock"},
	{"utilities", "Utility Stock"},
	{"materials", "Materials Stock"},
	{"telecommunication", "Telecom Stock"},
}

// ClassifyAssetType derives an asset type from instrument attributes.
// Order matters: crypto and fund markers beat the sector mapping.
func ClassifyAssetType(symbol, name, sector string) string {
	upperSymbol := strings.ToUpper(symbol)
	lowerName := strings.ToLower(name)
	lowerSector := strings.ToLower(sector)

	if strings.Contains(upperSymbol, "-USD") || strings.Contains(upperSymbol, "-EUR") ||
		strings.Contains(lowerName, "crypto") {
		return AssetTypeCrypto
	}

	for _, marker := range []string{"etf", "fund", "index"} {
		if strings.Contains(lowerName, marker) {
			return AssetTypeETF
		}
	}

	if strings.Contains(lowerSector, "real estate") || strings.Contains(lowerName, "reit") {
		return AssetTypeREIT
	}

	for _, m := range sectorAssetTypes {
		if strings.Contains(lowerSector, m.keyword) {
			return m.label
		}
	}

	return AssetTypeStock
}
