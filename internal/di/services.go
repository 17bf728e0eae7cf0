// Package di provides dependency injection for clients and services.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/networth/internal/clients/alphavantage"
	"github.com/aristath/networth/internal/clients/exchangerate"
	"github.com/aristath/networth/internal/clients/gemini"
	"github.com/aristath/networth/internal/config"
	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/spreadsheet"
	"github.com/aristath/networth/internal/services"
	"github.com/rs/zerolog"
)

// InitializeServices creates the clients and services. Stored settings may
// override the base currency and API keys before any client is built.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.SettingsRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	if err := cfg.UpdateFromSettings(ctx, container.SettingsRepo); err != nil {
		return fmt.Errorf("failed to apply stored settings: %w", err)
	}

	// Clients
	container.ExchangeRateClient = exchangerate.NewClient(cfg.ExchangeRateAPIURL, cfg.HTTPTimeout, log)
	container.AlphaVantageClient = alphavantage.NewClient(cfg.AlphaVantageAPIKey, log).
		WithBaseURL(cfg.AlphaVantageURL).
		WithTimeout(cfg.HTTPTimeout)
	if cfg.AlphaVantageAPIKey == "" {
		log.Warn().Msg("ALPHA_VANTAGE_API_KEY not set, price refresh will fail")
	}

	var generator domain.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.HTTPTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		container.GeminiClient = client
		generator = client
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, insights disabled")
	}

	// Services
	container.SpreadsheetReader = spreadsheet.NewReader(log)
	container.RateCache = services.NewRateCache(
		container.ExchangeRateClient,
		container.QuotesRepo,
		container.PositionRepo,
		container.SettingsRepo,
		log,
	)
	container.PriceCache = services.NewPriceCache(
		container.AlphaVantageClient,
		container.QuotesRepo,
		container.PositionRepo,
		container.SettingsRepo,
		log,
	)
	container.CurrencyConverter = services.NewCurrencyConverter(container.RateCache)
	container.ImportService = services.NewImportService(
		container.PortfolioDB.Conn(),
		container.SpreadsheetReader,
		container.PositionRepo,
		container.ReturnRepo,
		container.SettingsRepo,
		log,
	)
	container.AggregationService = services.NewAggregationService(container.PositionRepo, container.CurrencyConverter, log)
	container.InsightService = services.NewInsightService(container.AggregationService, generator, container.InsightsRepo, log)

	log.Debug().Msg("Services initialized")
	return nil
}
