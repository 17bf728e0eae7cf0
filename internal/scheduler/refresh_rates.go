package scheduler

import (
	"context"
	"strings"

	"github.com/aristath/networth/internal/modules/settings"
	"github.com/rs/zerolog"
)

// RefreshRatesJob refreshes every exchange rate the portfolio needs.
// The base currency is read from settings on each run so a change of
// preference takes effect without a restart.
type RefreshRatesJob struct {
	log         zerolog.Logger
	rates       RatesRefresher
	settings    SettingsReader
	defaultBase string
}

// NewRefreshRatesJob creates a new RefreshRatesJob
func NewRefreshRatesJob(rates RatesRefresher, settingsRepo SettingsReader, defaultBase string) *RefreshRatesJob {
	return &RefreshRatesJob{
		log:         zerolog.Nop(),
		rates:       rates,
		settings:    settingsRepo,
		defaultBase: defaultBase,
	}
}

// SetLogger sets the logger for the job
func (j *RefreshRatesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *RefreshRatesJob) Name() string {
	return "refresh_rates"
}

// Run executes the refresh rates job
func (j *RefreshRatesJob) Run(ctx context.Context) error {
	base := j.defaultBase
	if j.settings != nil {
		stored, err := j.settings.GetOrDefault(ctx, settings.KeyBaseCurrency)
		if err != nil {
			j.log.Warn().Err(err).Msg("Failed to read base currency, using default")
		} else if strings.TrimSpace(stored) != "" {
			base = stored
		}
	}

	result, err := j.rates.RefreshAll(ctx, base)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("base", base).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Rates refreshed")
	return nil
}
