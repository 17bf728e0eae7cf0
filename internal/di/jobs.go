// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/networth/internal/config"
	"github.com/aristath/networth/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	cleanupQuotesSchedule = "0 30 3 * * SUN"
	checkDatabaseSchedule = "0 0 4 * * *"
)

// RegisterJobs creates every job and registers it with sched.
// A nil scheduler only builds the jobs. An empty refresh schedule disables
// that job's schedule; it can still be run manually.
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		RefreshRates:  scheduler.NewRefreshRatesJob(container.RateCache, container.SettingsRepo, cfg.BaseCurrency),
		RefreshPrices: scheduler.NewRefreshPricesJob(container.PriceCache),
		CleanupQuotes: scheduler.NewCleanupQuotesJob(container.QuotesRepo, scheduler.DefaultQuoteRetention),
		CheckDatabase: scheduler.NewCheckDatabaseJob(container.PortfolioDB),
	}
	instances.RefreshRates.SetLogger(log.With().Str("job", "refresh_rates").Logger())
	instances.RefreshPrices.SetLogger(log.With().Str("job", "refresh_prices").Logger())
	instances.CleanupQuotes.SetLogger(log.With().Str("job", "cleanup_quotes").Logger())
	instances.CheckDatabase.SetLogger(log.With().Str("job", "check_database").Logger())

	if sched == nil {
		return instances, nil
	}

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.RatesRefreshSchedule, instances.RefreshRates},
		{cfg.PricesRefreshSchedule, instances.RefreshPrices},
		{cleanupQuotesSchedule, instances.CleanupQuotes},
		{checkDatabaseSchedule, instances.CheckDatabase},
	}
	for _, s := range schedules {
		if s.spec == "" {
			log.Info().Str("job", s.job.Name()).Msg("Job schedule disabled")
			continue
		}
		if err := sched.AddJob(s.spec, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	return instances, nil
}
