/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all component instances; there
 * are no package-level singletons, so tests can build isolated containers.
 */
package di

import (
	"github.com/aristath/networth/internal/clients/alphavantage"
	"github.com/aristath/networth/internal/clients/exchangerate"
	"github.com/aristath/networth/internal/clients/gemini"
	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/modules/insights"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/quotes"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/aristath/networth/internal/modules/spreadsheet"
	"github.com/aristath/networth/internal/scheduler"
	"github.com/aristath/networth/internal/services"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Database: one SQLite file (portfolio.db) holding every table
 * - Clients: exchange rates, equity quotes, optional language model
 * - Repositories: positions, return events, settings, quote caches, insights
 * - Services: caches, converter, import pipeline, aggregation, insights
 */
type Container struct {
	// Database
	PortfolioDB *database.DB

	// Clients
	ExchangeRateClient *exchangerate.Client
	AlphaVantageClient *alphavantage.Client
	GeminiClient       *gemini.Client // nil when no API key is configured

	// Repositories
	PositionRepo *portfolio.PositionRepository
	ReturnRepo   *portfolio.ReturnRepository
	SettingsRepo *settings.Repository
	QuotesRepo   *quotes.Repository
	InsightsRepo *insights.Repository

	// Services
	SpreadsheetReader  *spreadsheet.Reader
	RateCache          *services.RateCache
	PriceCache         *services.PriceCache
	CurrencyConverter  *services.CurrencyConverter
	ImportService      *services.ImportService
	AggregationService *services.AggregationService
	InsightService     *services.InsightService
}

// JobInstances holds every background job for manual triggering
type JobInstances struct {
	RefreshRates  *scheduler.RefreshRatesJob
	RefreshPrices *scheduler.RefreshPricesJob
	CleanupQuotes *scheduler.CleanupQuotesJob
	CheckDatabase *scheduler.CheckDatabaseJob
}

// Close releases the database
func (c *Container) Close() error {
	if c == nil || c.PortfolioDB == nil {
		return nil
	}
	return c.PortfolioDB.Close()
}
