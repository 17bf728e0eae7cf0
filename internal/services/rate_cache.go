package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/quotes"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/rs/zerolog"
)

// RateRefreshDelay separates consecutive currencies during RefreshAll
const RateRefreshDelay = 100 * time.Millisecond

// RateCache provides exchange rates backed by the exchange_rates table.
// A cached entry is served while it is younger than the staleness window;
// otherwise the rate source is queried and the cache updated.
type RateCache struct {
	source    domain.RateSource
	store     *quotes.Repository
	positions *portfolio.PositionRepository
	settings  *settings.Repository
	log       zerolog.Logger

	now   func() time.Time
	sleep sleepFunc
	delay time.Duration
}

// NewRateCache creates a new rate cache
func NewRateCache(
	source domain.RateSource,
	store *quotes.Repository,
	positions *portfolio.PositionRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *RateCache {
	return &RateCache{
		source:    source,
		store:     store,
		positions: positions,
		settings:  settingsRepo,
		log:       log.With().Str("service", "rate_cache").Logger(),
		now:       time.Now,
		sleep:     time.Sleep,
		delay:     RateRefreshDelay,
	}
}

// GetRate returns the from→to rate, serving a fresh cached entry when there is one
func (c *RateCache) GetRate(ctx context.Context, from, to string) (float64, error) {
	from, to = normalizeCurrency(from), normalizeCurrency(to)
	if from == to {
		return 1, nil
	}

	cached, err := c.store.GetRate(ctx, from, to)
	if err != nil {
		c.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("Failed to read cached rate")
	} else if cached != nil && domain.IsFresh(cached.LastUpdated, c.now(), staleness(ctx, c.settings)) {
		return cached.Rate, nil
	}

	return c.FetchRate(ctx, from, to)
}

// FetchRate bypasses the cache, queries the rate source and stores the result
func (c *RateCache) FetchRate(ctx context.Context, from, to string) (float64, error) {
	from, to = normalizeCurrency(from), normalizeCurrency(to)
	if from == to {
		return 1, nil
	}

	c.log.Debug().Str("from", from).Str("to", to).Msg("Fetching fresh rate")
	rates, err := c.source.LatestRates(ctx, from)
	if err != nil {
		return 0, &domain.RateFetchError{From: from, To: to, Err: err}
	}

	rate, ok := rates[to]
	if !ok || rate <= 0 {
		return 0, &domain.RateNotFoundError{From: from, To: to}
	}

	if err := c.store.UpsertRate(ctx, from, to, rate, c.now()); err != nil {
		c.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("Failed to cache rate")
	}
	return rate, nil
}

// RefreshAll force-fetches base→c and c→base for every currency held.
// Each direction is recorded separately. last_rates_update is stamped even
// when every lookup failed.
func (c *RateCache) RefreshAll(ctx context.Context, base string) (RefreshResult, error) {
	base = normalizeCurrency(base)
	var result RefreshResult

	currencies, err := c.positions.DistinctCurrencies(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list currencies: %w", err)
	}

	c.log.Info().
		Str("base", base).
		Strs("currencies", currencies).
		Msg("Refreshing exchange rates")

	first := true
	for _, currency := range currencies {
		currency = normalizeCurrency(currency)
		if currency == base {
			continue
		}
		if !first {
			c.sleep(c.delay)
		}
		first = false

		for _, pair := range [][2]string{{base, currency}, {currency, base}} {
			key := pair[0] + "/" + pair[1]
			rate, err := c.FetchRate(ctx, pair[0], pair[1])
			if err != nil {
				c.log.Error().Err(err).Str("from", pair[0]).Str("to", pair[1]).Msg("Failed to refresh rate")
				result.fail(key, err)
				continue
			}
			result.succeed(key, rate)
		}
	}

	if err := c.settings.SetTime(ctx, settings.KeyLastRatesUpdate, c.now()); err != nil {
		c.log.Warn().Err(err).Msg("Failed to stamp rates refresh")
	}

	c.log.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Exchange rate refresh completed")
	return result, nil
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
