package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	// Market data provider
	MarketDataBaseURL string
	MarketIndexSymbol string

	// Analytics policy constants
	RiskFreeRate        float64 // annual, decimal (0.02 = 2%/yr)
	AssumedMarketReturn float64 // annual, used when no benchmark series is supplied
	TradingDaysPerYear  int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8090),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/portfolio.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MarketDataBaseURL:   getEnv("MARKET_DATA_BASE_URL", "https://query2.finance.yahoo.com"),
		MarketIndexSymbol:   getEnv("MARKET_INDEX_SYMBOL", "^GSPC"),
		RiskFreeRate:        getEnvAsFloat("RISK_FREE_RATE", 0.02),
		AssumedMarketReturn: getEnvAsFloat("ASSUMED_MARKET_RETURN", 0.08),
		TradingDaysPerYear:  getEnvAsInt("TRADING_DAYS_PER_YEAR", 252),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("TRADING_DAYS_PER_YEAR must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
