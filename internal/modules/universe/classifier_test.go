package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAssetType(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		instName string
		sector   string
		want     string
	}{
		{"crypto by symbol suffix", "BTC-USD", "Bitcoin USD", "", AssetTypeCrypto},
		{"crypto by euro pair", "ETH-EUR", "Ethereum EUR", "", AssetTypeCrypto},
		{"etf by name", "VWCE.DE", "Vanguard FTSE All-World ETF", "", AssetTypeETF},
		{"index fund by name", "SWDA.MI", "iShares Core MSCI World Index", "", AssetTypeETF},
		{"reit by sector", "O", "Realty Income", "Real Estate", AssetTypeREIT},
		{"tech stock by sector", "AAPL", "Apple Inc.", "Technology", "Tech Stock"},
		{"healthcare stock", "SAN.PA", "Sanofi", "Healthcare", "Healthcare Stock"},
		{"plain stock fallback", "XYZ", "Xyz Corp", "Something Else", AssetTypeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAssetType(tt.symbol, tt.instName, tt.sector))
		})
	}
}

func TestClassifyAssetType_CryptoBeatsSector(t *testing.T) {
	// Crypto marker wins even when a sector is reported.
	assert.Equal(t, AssetTypeCrypto, ClassifyAssetType("SOL-USD", "Solana USD", "Technology"))
}
