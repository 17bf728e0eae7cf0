package scheduler

import (
	"context"
	"time"

	"github.com/aristath/networth/internal/services"
)

// RatesRefresher is satisfied by services.RateCache
type RatesRefresher interface {
	RefreshAll(ctx context.Context, base string) (services.RefreshResult, error)
}

// PricesRefresher is satisfied by services.PriceCache
type PricesRefresher interface {
	RefreshAll(ctx context.Context) (services.RefreshResult, error)
}

// SettingsReader is satisfied by settings.Repository
type SettingsReader interface {
	GetOrDefault(ctx context.Context, key string) (string, error)
}

// QuoteCleaner is satisfied by quotes.Repository
type QuoteCleaner interface {
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// DatabaseChecker is satisfied by database.DB
type DatabaseChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
	WALCheckpoint(mode string) error
}
