package services

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/insights"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/quotes"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/aristath/networth/internal/modules/spreadsheet"
	testingpkg "github.com/aristath/networth/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testEnv wires every service against one temp database and mock sources
type testEnv struct {
	db        *database.DB
	positions *portfolio.PositionRepository
	returns   *portfolio.ReturnRepository
	settings  *settings.Repository
	quotes    *quotes.Repository
	insights  *insights.Repository

	rateSource  *testingpkg.MockRateSource
	quoteSource *testingpkg.MockQuoteSource
	generator   *testingpkg.MockTextGenerator

	rates       *RateCache
	prices      *PriceCache
	converter   *CurrencyConverter
	importer    *ImportService
	aggregation *AggregationService
	insight     *InsightService

	clock  time.Time
	sleeps []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	conn := db.Conn()
	env := &testEnv{
		db:          db,
		positions:   portfolio.NewPositionRepository(conn, log),
		returns:     portfolio.NewReturnRepository(conn, log),
		settings:    settings.NewRepository(conn, log),
		quotes:      quotes.NewRepository(conn, log),
		insights:    insights.NewRepository(conn, log),
		rateSource:  testingpkg.NewMockRateSource(),
		quoteSource: testingpkg.NewMockQuoteSource(),
		generator:   testingpkg.NewMockTextGenerator("Looks balanced."),
		clock:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	now := func() time.Time { return env.clock }
	sleep := func(d time.Duration) { env.sleeps = append(env.sleeps, d) }

	env.rates = NewRateCache(env.rateSource, env.quotes, env.positions, env.settings, log)
	env.rates.now, env.rates.sleep = now, sleep
	env.prices = NewPriceCache(env.quoteSource, env.quotes, env.positions, env.settings, log)
	env.prices.now, env.prices.sleep = now, sleep
	env.converter = NewCurrencyConverter(env.rates)
	env.importer = NewImportService(conn, spreadsheet.NewReader(log), env.positions, env.returns, env.settings, log)
	env.importer.now = now
	env.aggregation = NewAggregationService(env.positions, env.converter, log)
	env.insight = NewInsightService(env.aggregation, env.generator, env.insights, log)
	env.insight.now = now
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) seed(t *testing.T, positions ...domain.Position) {
	t.Helper()
	for _, p := range positions {
		require.NoError(t, e.positions.Upsert(context.Background(), p))
	}
}

func position(id, currency string, invested, current *float64) domain.Position {
	return domain.Position{
		ID:             id,
		Platform:       "Broker",
		InvestmentType: "Stock",
		AssetName:      id,
		InvestedAmount: invested,
		CurrentAmount:  current,
		Currency:       testingpkg.String(currency),
	}
}
