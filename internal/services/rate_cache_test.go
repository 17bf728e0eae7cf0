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

func TestRateCache_SameCurrencyIsIdentity(t *testing.T) {
	env := newTestEnv(t)

	rate, err := env.rates.GetRate(context.Background(), "AUD", "aud")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Zero(t, env.rateSource.TotalCalls())
}

func TestRateCache_FreshEntryIsServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rateSource.SetRate("AUD", "USD", 0.66)

	rate, err := env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.66, rate)

	env.advance(23 * time.Hour)
	env.rateSource.SetRate("AUD", "USD", 0.70)
	rate, err = env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.66, rate)
	assert.Equal(t, 1, env.rateSource.Calls("AUD"))

	env.advance(2 * time.Hour)
	rate, err = env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.70, rate)
	assert.Equal(t, 2, env.rateSource.Calls("AUD"))
}

func TestRateCache_StalenessWindowFromSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rateSource.SetRate("AUD", "USD", 0.66)
	require.NoError(t, env.settings.Set(ctx, settings.KeyMaxQuoteAgeHours, "1"))

	_, err := env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)
	env.advance(90 * time.Minute)
	_, err = env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)

	assert.Equal(t, 2, env.rateSource.Calls("AUD"))
}

func TestRateCache_ReverseRateIsNeverDerived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rateSource.SetRate("AUD", "USD", 0.66)

	_, err := env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)

	_, err = env.rates.GetRate(ctx, "USD", "AUD")
	var notFound *domain.RateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "USD", notFound.From)
	assert.Equal(t, "AUD", notFound.To)
}

func TestRateCache_FetchErrorIsWrapped(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("connection refused")
	env.rateSource.SetError("AUD", boom)

	_, err := env.rates.FetchRate(context.Background(), "AUD", "EUR")

	var fetchErr *domain.RateFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, boom)
}

func TestRateCache_FetchRateBypassesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rateSource.SetRate("AUD", "USD", 0.66)

	_, err := env.rates.GetRate(ctx, "AUD", "USD")
	require.NoError(t, err)
	_, err = env.rates.FetchRate(ctx, "AUD", "USD")
	require.NoError(t, err)

	assert.Equal(t, 2, env.rateSource.Calls("AUD"))
}

func TestRateCache_RefreshAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, testingpkg.NewPositionFixtures()...)
	env.seed(t, position("INV-010", "EUR", testingpkg.Float(10), testingpkg.Float(11)))

	env.rateSource.SetRate("AUD", "USD", 0.66)
	env.rateSource.SetRate("AUD", "EUR", 0.61)
	env.rateSource.SetRate("USD", "AUD", 1.52)
	env.rateSource.SetError("EUR", errors.New("timeout"))

	result, err := env.rates.RefreshAll(ctx, "aud")
	require.NoError(t, err)

	assert.Len(t, result.Succeeded, 3)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "EUR/AUD", result.Failed[0].Key)

	// one pause between the two non-base currencies
	assert.Equal(t, []time.Duration{RateRefreshDelay}, env.sleeps)

	stamp, err := env.settings.GetTime(ctx, settings.KeyLastRatesUpdate)
	require.NoError(t, err)
	require.NotNil(t, stamp)
	assert.True(t, stamp.Equal(env.clock))

	cached, err := env.quotes.GetRate(ctx, "USD", "AUD")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 1.52, cached.Rate)
}

func TestRateCache_RefreshAllStampsEvenWhenEverythingFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, position("INV-1", "USD", testingpkg.Float(1), testingpkg.Float(2)))
	env.rateSource.SetError("AUD", errors.New("down"))
	env.rateSource.SetError("USD", errors.New("down"))

	result, err := env.rates.RefreshAll(ctx, "AUD")
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)

	stamp, err := env.settings.GetTime(ctx, settings.KeyLastRatesUpdate)
	require.NoError(t, err)
	assert.NotNil(t, stamp)
}

func TestCurrencyConverter_Convert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rateSource.SetRate("USD", "AUD", 1.5)

	for _, amount := range []float64{0, 1, -42.5, 1234567.89} {
		got, err := env.converter.Convert(ctx, amount, "AUD", "AUD")
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
	assert.Zero(t, env.rateSource.TotalCalls())

	got, err := env.converter.Convert(ctx, 100, "USD", "AUD")
	require.NoError(t, err)
	assert.Equal(t, 150.0, got)
}
