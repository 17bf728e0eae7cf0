package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/settings"
	testingpkg "github.com/aristath/networth/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCache_RejectsUnusableSymbols(t *testing.T) {
	env := newTestEnv(t)

	for _, symbol := range []string{"", "  ", domain.TickerPlaceholder} {
		_, err := env.prices.GetPrice(context.Background(), symbol)
		var invalid *domain.InvalidSymbolError
		assert.ErrorAs(t, err, &invalid, "symbol %q", symbol)
	}
	assert.Zero(t, env.quoteSource.Calls(domain.TickerPlaceholder))
}

func TestPriceCache_CachesWithinWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.quoteSource.SetPrice("VTI", 250)

	entry, err := env.prices.GetPrice(ctx, "VTI")
	require.NoError(t, err)
	assert.Equal(t, 250.0, entry.Price)
	assert.Equal(t, "USD", entry.Currency)

	env.advance(12 * time.Hour)
	_, err = env.prices.GetPrice(ctx, "VTI")
	require.NoError(t, err)
	assert.Equal(t, 1, env.quoteSource.Calls("VTI"))

	env.advance(13 * time.Hour)
	_, err = env.prices.GetPrice(ctx, "VTI")
	require.NoError(t, err)
	assert.Equal(t, 2, env.quoteSource.Calls("VTI"))
}

func TestPriceCache_ErrorKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.quoteSource.SetError("DOWN", errors.New("503"))

	_, err := env.prices.FetchPrice(ctx, "MISSING")
	var notFound *domain.PriceNotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = env.prices.FetchPrice(ctx, "DOWN")
	var fetchErr *domain.PriceFetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "DOWN", fetchErr.Symbol)
}

func TestPriceCache_RefreshAllPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	auto := func(id, ticker string, qty *float64) domain.Position {
		p := position(id, "USD", testingpkg.Float(100), testingpkg.Float(100))
		p.TickerSymbol = testingpkg.String(ticker)
		p.Quantity = qty
		p.AutoUpdate = true
		return p
	}
	env.seed(t,
		auto("A", "AAA", testingpkg.Float(2)),
		auto("B", "BBB", nil),
		auto("C", "CCC", testingpkg.Float(1)),
		auto("D", domain.TickerPlaceholder, testingpkg.Float(1)),
	)
	env.quoteSource.SetPrice("AAA", 75)
	env.quoteSource.SetPrice("BBB", 10)
	env.quoteSource.SetError("CCC", errors.New("rate limited"))

	result, err := env.prices.RefreshAll(ctx)
	require.NoError(t, err)

	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "CCC", result.Failed[0].Key)
	assert.Equal(t, []time.Duration{PriceRefreshDelay, PriceRefreshDelay}, env.sleeps)
	assert.Zero(t, env.quoteSource.Calls(domain.TickerPlaceholder))

	a, err := env.positions.GetByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 150.0, *a.CurrentAmount)
	assert.Equal(t, 50.0, *a.ProfitLoss)
	assert.Equal(t, "2024-06-01", *a.UpdatedDate)

	// no quantity: valuation untouched
	b, err := env.positions.GetByID(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 100.0, *b.CurrentAmount)

	stamp, err := env.settings.GetTime(ctx, settings.KeyLastPricesUpdate)
	require.NoError(t, err)
	assert.NotNil(t, stamp)
}
