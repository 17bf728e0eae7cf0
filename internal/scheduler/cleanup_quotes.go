package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultQuoteRetention is how long a cached rate or price is kept after its last update
const DefaultQuoteRetention = 30 * 24 * time.Hour

// CleanupQuotesJob drops cached rates and prices nobody has refreshed for a long time
type CleanupQuotesJob struct {
	log       zerolog.Logger
	quotes    QuoteCleaner
	retention time.Duration
	now       func() time.Time
}

// NewCleanupQuotesJob creates a new CleanupQuotesJob
func NewCleanupQuotesJob(quotes QuoteCleaner, retention time.Duration) *CleanupQuotesJob {
	if retention <= 0 {
		retention = DefaultQuoteRetention
	}
	return &CleanupQuotesJob{
		log:       zerolog.Nop(),
		quotes:    quotes,
		retention: retention,
		now:       time.Now,
	}
}

// SetLogger sets the logger for the job
func (j *CleanupQuotesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CleanupQuotesJob) Name() string {
	return "cleanup_quotes"
}

// Run executes the cleanup job
func (j *CleanupQuotesJob) Run(ctx context.Context) error {
	removed, err := j.quotes.DeleteStale(ctx, j.now().Add(-j.retention))
	if err != nil {
		return fmt.Errorf("failed to delete stale quotes: %w", err)
	}

	j.log.Info().Int64("removed", removed).Msg("Stale quotes removed")
	return nil
}
