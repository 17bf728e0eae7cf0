package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aristath/networth/internal/config"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/aristath/networth/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:               t.TempDir(),
		BaseCurrency:          "AUD",
		GeminiModel:           "gemini-2.5-flash",
		RatesRefreshSchedule:  "@daily",
		PricesRefreshSchedule: "@daily",
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	sched := scheduler.New(0, zerolog.Nop())

	container, jobs, err := Wire(context.Background(), cfg, sched, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.FileExists(t, filepath.Join(cfg.DataDir, "portfolio.db"))
	assert.NotNil(t, container.PositionRepo)
	assert.NotNil(t, container.ImportService)
	assert.NotNil(t, container.AggregationService)
	assert.NotNil(t, container.InsightService)
	assert.Nil(t, container.GeminiClient)

	require.NotNil(t, jobs)
	assert.Equal(t, "refresh_rates", jobs.RefreshRates.Name())
	assert.Equal(t, "refresh_prices", jobs.RefreshPrices.Name())
	assert.NoError(t, sched.RunNow(jobs.CheckDatabase))
}

func TestWire_StoredSettingsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })
	require.NoError(t, InitializeRepositories(container, zerolog.Nop()))
	require.NoError(t, container.SettingsRepo.Set(context.Background(), settings.KeyBaseCurrency, "eur"))

	require.NoError(t, InitializeServices(context.Background(), container, cfg, zerolog.Nop()))
	assert.Equal(t, "EUR", cfg.BaseCurrency)
}

func TestWire_WithGeminiKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.GeminiAPIKey = "test-key"

	container, _, err := Wire(context.Background(), cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.GeminiClient)
}

func TestRegisterJobs_BadScheduleFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.RatesRefreshSchedule = "whenever"

	_, _, err := Wire(context.Background(), cfg, scheduler.New(0, zerolog.Nop()), zerolog.Nop())
	assert.Error(t, err)
}

func TestRegisterJobs_NilContainer(t *testing.T) {
	_, err := RegisterJobs(nil, testConfig(t), nil, zerolog.Nop())
	assert.Error(t, err)
}
