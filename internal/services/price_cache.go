package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/quotes"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/rs/zerolog"
)

// PriceRefreshDelay separates consecutive quote lookups during RefreshAll
const PriceRefreshDelay = 500 * time.Millisecond

// PriceCache provides ticker prices backed by the stock_prices table
type PriceCache struct {
	source    domain.QuoteSource
	store     *quotes.Repository
	positions *portfolio.PositionRepository
	settings  *settings.Repository
	log       zerolog.Logger

	now   func() time.Time
	sleep sleepFunc
	delay time.Duration
}

// NewPriceCache creates a new price cache
func NewPriceCache(
	source domain.QuoteSource,
	store *quotes.Repository,
	positions *portfolio.PositionRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *PriceCache {
	return &PriceCache{
		source:    source,
		store:     store,
		positions: positions,
		settings:  settingsRepo,
		log:       log.With().Str("service", "price_cache").Logger(),
		now:       time.Now,
		sleep:     time.Sleep,
		delay:     PriceRefreshDelay,
	}
}

// GetPrice returns the latest price of symbol, serving a fresh cached entry when there is one
func (c *PriceCache) GetPrice(ctx context.Context, symbol string) (*domain.PriceEntry, error) {
	symbol = strings.TrimSpace(symbol)
	if !domain.IsUsableSymbol(symbol) {
		return nil, &domain.InvalidSymbolError{Symbol: symbol}
	}

	cached, err := c.store.GetPrice(ctx, symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to read cached price")
	} else if cached != nil && domain.IsFresh(cached.LastUpdated, c.now(), staleness(ctx, c.settings)) {
		c.log.Debug().Str("symbol", symbol).Float64("price", cached.Price).Msg("Using cached price")
		return cached, nil
	}

	return c.FetchPrice(ctx, symbol)
}

// FetchPrice bypasses the cache, queries the quote source and stores the result
func (c *PriceCache) FetchPrice(ctx context.Context, symbol string) (*domain.PriceEntry, error) {
	symbol = strings.TrimSpace(symbol)
	if !domain.IsUsableSymbol(symbol) {
		return nil, &domain.InvalidSymbolError{Symbol: symbol}
	}

	quote, err := c.source.LatestQuote(ctx, symbol)
	if err != nil {
		var notFound *domain.PriceNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &domain.PriceFetchError{Symbol: symbol, Err: err}
	}
	if quote == nil {
		return nil, &domain.PriceNotFoundError{Symbol: symbol}
	}

	entry := domain.PriceEntry{
		TickerSymbol: symbol,
		Price:        quote.Price,
		Currency:     quote.Currency,
		LastUpdated:  c.now(),
	}
	if entry.Currency == "" {
		entry.Currency = "USD"
	}
	if err := c.store.UpsertPrice(ctx, entry); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price")
	}
	return &entry, nil
}

// RefreshAll force-fetches a price for every auto-update position with a
// usable ticker. Positions with a quantity get current amount price×quantity,
// a recomputed profit/loss and today's updated date. The quote is applied in
// the currency the source reports it in, without conversion.
func (c *PriceCache) RefreshAll(ctx context.Context) (RefreshResult, error) {
	var result RefreshResult

	candidates, err := c.positions.GetAutoUpdateCandidates(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list auto-update positions: %w", err)
	}

	c.log.Info().Int("positions", len(candidates)).Msg("Refreshing stock prices")

	first := true
	for _, p := range candidates {
		if !p.HasUsableTicker() {
			continue
		}
		symbol := strings.TrimSpace(*p.TickerSymbol)
		if !first {
			c.sleep(c.delay)
		}
		first = false

		entry, err := c.FetchPrice(ctx, symbol)
		if err != nil {
			c.log.Error().Err(err).Str("symbol", symbol).Str("position", p.ID).Msg("Failed to refresh price")
			result.fail(symbol, err)
			continue
		}

		if p.Quantity != nil && *p.Quantity > 0 {
			current := entry.Price * *p.Quantity
			today := c.now().Format(time.DateOnly)
			if err := c.positions.UpdateCurrentAmount(ctx, p.ID, current, today); err != nil {
				c.log.Error().Err(err).Str("position", p.ID).Msg("Failed to update current amount")
				result.fail(symbol, err)
				continue
			}
		}
		result.succeed(symbol, entry.Price)
	}

	if err := c.settings.SetTime(ctx, settings.KeyLastPricesUpdate, c.now()); err != nil {
		c.log.Warn().Err(err).Msg("Failed to stamp price refresh")
	}

	c.log.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Stock price refresh completed")
	return result, nil
}
