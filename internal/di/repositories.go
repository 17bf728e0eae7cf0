// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/aristath/networth/internal/modules/insights"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/quotes"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates every repository on the portfolio database
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.PortfolioDB == nil {
		return fmt.Errorf("container database not initialized")
	}

	conn := container.PortfolioDB.Conn()
	container.PositionRepo = portfolio.NewPositionRepository(conn, log)
	container.ReturnRepo = portfolio.NewReturnRepository(conn, log)
	container.SettingsRepo = settings.NewRepository(conn, log)
	container.QuotesRepo = quotes.NewRepository(conn, log)
	container.InsightsRepo = insights.NewRepository(conn, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
