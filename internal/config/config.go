// Package config provides configuration management functionality.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Directory holding portfolio.db (always absolute)
	LogLevel     string
	LogPretty    bool
	BaseCurrency string // Currency aggregates are normalized into

	ExchangeRateAPIURL string // exchangerate-api.com compatible "latest" endpoint
	AlphaVantageAPIKey string
	AlphaVantageURL    string
	GeminiAPIKey       string
	GeminiModel        string
	HTTPTimeout        time.Duration

	ImportOnStart         string // Optional workbook imported once at startup
	RatesRefreshSchedule  string // cron spec, empty disables the job
	PricesRefreshSchedule string // cron spec, empty disables the job
}

// SettingsReader is the subset of the settings repository used for overrides.
type SettingsReader interface {
	Get(ctx context.Context, key string) (*string, error)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("NETWORTH_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:               absDataDir,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPretty:             getEnvAsBool("LOG_PRETTY", true),
		BaseCurrency:          strings.ToUpper(getEnv("BASE_CURRENCY", "AUD")),
		ExchangeRateAPIURL:    getEnv("EXCHANGE_RATE_API_URL", "https://api.exchangerate-api.com/v4/latest"),
		AlphaVantageAPIKey:    getEnv("ALPHA_VANTAGE_API_KEY", ""),
		AlphaVantageURL:       getEnv("ALPHA_VANTAGE_URL", "https://www.alphavantage.co/query"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		HTTPTimeout:           time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		ImportOnStart:         getEnv("IMPORT_ON_START", ""),
		RatesRefreshSchedule:  getEnv("RATES_REFRESH_SCHEDULE", "@daily"),
		PricesRefreshSchedule: getEnv("PRICES_REFRESH_SCHEDULE", "@daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the location of the portfolio database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// UpdateFromSettings lets values stored in app_settings override the environment.
// Empty stored values are ignored so the environment stays the fallback.
func (c *Config) UpdateFromSettings(ctx context.Context, settings SettingsReader) error {
	overrides := []struct {
		key    string
		target *string
	}{
		{"base_currency", &c.BaseCurrency},
		{"alpha_vantage_api_key", &c.AlphaVantageAPIKey},
		{"gemini_api_key", &c.GeminiAPIKey},
	}

	for _, o := range overrides {
		value, err := settings.Get(ctx, o.key)
		if err != nil {
			return fmt.Errorf("failed to get %s from settings: %w", o.key, err)
		}
		if value != nil && strings.TrimSpace(*value) != "" {
			*o.target = strings.TrimSpace(*value)
		}
	}

	c.BaseCurrency = strings.ToUpper(c.BaseCurrency)
	return c.Validate()
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if len(c.BaseCurrency) != 3 {
		return fmt.Errorf("base currency must be a 3-letter code, got %q", c.BaseCurrency)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	// API keys are optional: without them the price refresh and insights are unavailable.
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
