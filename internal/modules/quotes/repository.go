// Package quotes stores the cached exchange rates and stock prices.
package quotes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles exchange_rates and stock_prices operations
type Repository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewRepository creates a new quotes repository
func NewRepository(db database.Querier, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "quotes").Logger(),
	}
}

// UpsertRate stores the rate for one ordered pair, replacing any previous value
func (r *Repository) UpsertRate(ctx context.Context, from, to string, rate float64, at time.Time) error {
	from, to = normalizeCode(from), normalizeCode(to)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency) DO UPDATE SET
			rate = excluded.rate,
			last_updated = excluded.last_updated
	`, from, to, rate, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}

	r.log.Debug().
		Str("from", from).
		Str("to", to).
		Float64("rate", rate).
		Msg("Upserted exchange rate")
	return nil
}

// GetRate returns the cached rate for from -> to.
// Returns nil if no rate found (not an error)
func (r *Repository) GetRate(ctx context.Context, from, to string) (*domain.RateEntry, error) {
	var e domain.RateEntry
	var updatedUnix int64

	err := r.db.QueryRowContext(ctx, `
		SELECT from_currency, to_currency, rate, last_updated
		FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ?
	`, normalizeCode(from), normalizeCode(to)).Scan(&e.FromCurrency, &e.ToCurrency, &e.Rate, &updatedUnix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	e.LastUpdated = time.Unix(updatedUnix, 0).UTC()
	return &e, nil
}

// ListRates returns every cached pair
func (r *Repository) ListRates(ctx context.Context) ([]domain.RateEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT from_currency, to_currency, rate, last_updated
		FROM exchange_rates
		ORDER BY from_currency, to_currency
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.RateEntry
	for rows.Next() {
		var e domain.RateEntry
		var updatedUnix int64
		if err := rows.Scan(&e.FromCurrency, &e.ToCurrency, &e.Rate, &updatedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		e.LastUpdated = time.Unix(updatedUnix, 0).UTC()
		rates = append(rates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return rates, nil
}

// UpsertPrice stores the latest price of a ticker
func (r *Repository) UpsertPrice(ctx context.Context, e domain.PriceEntry) error {
	symbol := strings.ToUpper(strings.TrimSpace(e.TickerSymbol))
	currency := normalizeCode(e.Currency)
	if currency == "" {
		currency = "USD"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_prices (ticker_symbol, price, currency, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker_symbol) DO UPDATE SET
			price = excluded.price,
			currency = excluded.currency,
			last_updated = excluded.last_updated
	`, symbol, e.Price, currency, e.LastUpdated.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert stock price: %w", err)
	}

	r.log.Debug().Str("symbol", symbol).Float64("price", e.Price).Msg("Upserted stock price")
	return nil
}

// GetPrice returns the cached price of symbol.
// Returns nil if no price found (not an error)
func (r *Repository) GetPrice(ctx context.Context, symbol string) (*domain.PriceEntry, error) {
	var e domain.PriceEntry
	var updatedUnix int64

	err := r.db.QueryRowContext(ctx, `
		SELECT ticker_symbol, price, currency, last_updated
		FROM stock_prices
		WHERE ticker_symbol = ?
	`, strings.ToUpper(strings.TrimSpace(symbol))).Scan(&e.TickerSymbol, &e.Price, &e.Currency, &updatedUnix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock price: %w", err)
	}

	e.LastUpdated = time.Unix(updatedUnix, 0).UTC()
	return &e, nil
}

// DeleteStale removes rates and prices last updated before olderThan.
// Used by the cleanup job to keep abandoned pairs and tickers from piling up.
func (r *Repository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"exchange_rates", "stock_prices"} {
		result, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE last_updated < ?", olderThan.Unix())
		if err != nil {
			return total, fmt.Errorf("failed to delete stale rows from %s: %w", table, err)
		}
		n, _ := result.RowsAffected()
		total += n
	}

	if total > 0 {
		r.log.Info().Int64("rows_affected", total).Time("older_than", olderThan).Msg("Deleted stale quotes")
	}
	return total, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
