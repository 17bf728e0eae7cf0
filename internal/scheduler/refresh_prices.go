package scheduler

import (
	"context"

	"github.com/rs/zerolog"
)

// RefreshPricesJob revalues every auto-update position from the quote source
type RefreshPricesJob struct {
	log    zerolog.Logger
	prices PricesRefresher
}

// NewRefreshPricesJob creates a new RefreshPricesJob
func NewRefreshPricesJob(prices PricesRefresher) *RefreshPricesJob {
	return &RefreshPricesJob{
		log:    zerolog.Nop(),
		prices: prices,
	}
}

// SetLogger sets the logger for the job
func (j *RefreshPricesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Run executes the refresh prices job
func (j *RefreshPricesJob) Run(ctx context.Context) error {
	result, err := j.prices.RefreshAll(ctx)
	if err != nil {
		return err
	}

	ev := j.log.Info()
	if len(result.Failed) > 0 {
		ev = j.log.Warn()
	}
	ev.Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Prices refreshed")
	return nil
}
