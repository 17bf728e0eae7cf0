package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSettings map[string]string

func (m mapSettings) Get(_ context.Context, key string) (*string, error) {
	if v, ok := m[key]; ok {
		return &v, nil
	}
	return nil, nil
}

type failingSettings struct{}

func (failingSettings) Get(context.Context, string) (*string, error) {
	return nil, errors.New("database is locked")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NETWORTH_DATA_DIR", t.TempDir())
	t.Setenv("BASE_CURRENCY", "")
	t.Setenv("RATES_REFRESH_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "AUD", cfg.BaseCurrency)
	assert.Equal(t, "@daily", cfg.RatesRefreshSchedule)
	assert.Contains(t, cfg.DatabasePath(), "portfolio.db")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NETWORTH_DATA_DIR", t.TempDir())
	t.Setenv("BASE_CURRENCY", "usd")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, "5s", cfg.HTTPTimeout.String())
	assert.False(t, cfg.LogPretty)
}

func TestLoad_InvalidBaseCurrency(t *testing.T) {
	t.Setenv("NETWORTH_DATA_DIR", t.TempDir())
	t.Setenv("BASE_CURRENCY", "EURO")

	_, err := Load()
	assert.Error(t, err)
}

func TestUpdateFromSettings(t *testing.T) {
	cfg := &Config{BaseCurrency: "AUD", AlphaVantageAPIKey: "env-key"}

	err := cfg.UpdateFromSettings(context.Background(), mapSettings{
		"base_currency":         "sgd",
		"alpha_vantage_api_key": "",
		"gemini_api_key":        "stored-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "SGD", cfg.BaseCurrency)
	assert.Equal(t, "env-key", cfg.AlphaVantageAPIKey, "empty stored value keeps env fallback")
	assert.Equal(t, "stored-key", cfg.GeminiAPIKey)
}

func TestUpdateFromSettings_Error(t *testing.T) {
	cfg := &Config{BaseCurrency: "AUD"}
	err := cfg.UpdateFromSettings(context.Background(), failingSettings{})
	assert.ErrorContains(t, err, "base_currency")
}
