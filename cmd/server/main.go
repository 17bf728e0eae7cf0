// Package main is the entry point for the networth portfolio tracker daemon.
// It keeps a SQLite copy of a spreadsheet-maintained portfolio, refreshes
// exchange rates and stock prices on a schedule, and exposes the services the
// outer layers call into.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/networth/internal/config"
	"github.com/aristath/networth/internal/di"
	"github.com/aristath/networth/internal/scheduler"
	"github.com/aristath/networth/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires all dependencies (database, repositories, clients, services, jobs)
// 4. Imports the startup workbook when IMPORT_ON_START is set
// 5. Starts the scheduler
// 6. Waits for a shutdown signal and stops gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	logger.SetGlobalLogger(log)
	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting networth")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(0, log)

	container, _, err := di.Wire(ctx, cfg, sched, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing flushes the WAL
	defer container.Close()

	log.Info().Str("base_currency", cfg.BaseCurrency).Msg("Configuration loaded")

	if cfg.ImportOnStart != "" {
		result, err := container.ImportService.ImportSpreadsheet(ctx, cfg.ImportOnStart)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.ImportOnStart).Msg("Startup import failed")
		} else {
			log.Info().
				Str("run_id", result.RunID).
				Int("positions", result.PositionsCount).
				Int("events", result.EventsCount).
				Msg("Startup import completed")
		}
	}

	sched.Start()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	sched.Stop()
	log.Info().Msg("Shutdown complete")
}
