// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/networth/internal/config"
	"github.com/aristath/networth/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens portfolio.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	portfolioDB, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "portfolio",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
	}

	if err := portfolioDB.Migrate(); err != nil {
		portfolioDB.Close()
		return nil, fmt.Errorf("failed to migrate portfolio database: %w", err)
	}
	container.PortfolioDB = portfolioDB

	log.Info().Str("path", portfolioDB.Path()).Msg("Database initialized")
	return container, nil
}
