package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
)

// ReturnSummary is a total of return events for one key and currency.
// Key is the return type or the YYYY-MM month, depending on the summary.
type ReturnSummary struct {
	Key      string  `json:"key"`
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// ReturnRepository handles return event database operations
type ReturnRepository struct {
	db  database.Querier
	log zerolog.Logger
	now func() time.Time
}

// NewReturnRepository creates a new return event repository
func NewReturnRepository(db database.Querier, log zerolog.Logger) *ReturnRepository {
	return &ReturnRepository{
		db:  db,
		log: log.With().Str("repo", "investment_returns").Logger(),
		now: time.Now,
	}
}

// WithTx returns a repository bound to tx
func (r *ReturnRepository) WithTx(tx *sql.Tx) *ReturnRepository {
	return &ReturnRepository{db: tx, log: r.log, now: r.now}
}

// ReplaceAll deletes every stored event and inserts events in its place.
// On a transaction-bound repository the caller's transaction covers both steps;
// otherwise a transaction of its own is used.
func (r *ReturnRepository) ReplaceAll(ctx context.Context, events []domain.ReturnEvent) error {
	if db, ok := r.db.(*sql.DB); ok {
		return database.WithTransaction(db, func(tx *sql.Tx) error {
			return r.WithTx(tx).replaceAll(ctx, events)
		})
	}
	return r.replaceAll(ctx, events)
}

func (r *ReturnRepository) replaceAll(ctx context.Context, events []domain.ReturnEvent) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM investment_returns")
	if err != nil {
		return fmt.Errorf("failed to delete return events: %w", err)
	}
	deleted, _ := result.RowsAffected()

	query := `
		INSERT INTO investment_returns
		(investment_id, instrument, return_type, date, amount, currency, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range events {
		returnType := e.ReturnType
		if returnType == "" {
			returnType = domain.ReturnOther
		}
		_, err := r.db.ExecContext(ctx, query,
			e.InvestmentID,
			e.Instrument,
			string(returnType),
			nullString(e.Date),
			nullFloat64(e.Amount),
			nullString(e.Currency),
			e.Notes,
		)
		if err != nil {
			if database.IsConstraintError(err) {
				return &domain.ConstraintError{Table: "investment_returns", Key: e.InvestmentID, Err: err}
			}
			return fmt.Errorf("failed to insert return event for %s: %w", e.InvestmentID, err)
		}
	}

	r.log.Debug().
		Int64("deleted", deleted).
		Int("inserted", len(events)).
		Msg("Return events replaced")
	return nil
}

// GetAll returns every return event, newest first
func (r *ReturnRepository) GetAll(ctx context.Context) ([]domain.ReturnEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT investment_id, instrument, return_type, date, amount, currency, notes
		FROM investment_returns
		ORDER BY date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query return events: %w", err)
	}
	defer rows.Close()

	var events []domain.ReturnEvent
	for rows.Next() {
		var e domain.ReturnEvent
		var instrument sql.NullString
		var returnType string
		var date, currency sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&e.InvestmentID, &instrument, &returnType, &date, &amount, &currency, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan return event: %w", err)
		}
		e.Instrument = instrument.String
		e.ReturnType = domain.ReturnType(returnType)
		e.Date = stringPtr(date)
		e.Amount = floatPtr(amount)
		e.Currency = stringPtr(currency)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return events: %w", err)
	}
	return events, nil
}

// SummaryByType totals events per return type and currency
func (r *ReturnRepository) SummaryByType(ctx context.Context) ([]ReturnSummary, error) {
	return r.summarize(ctx, `
		SELECT return_type, COALESCE(currency, ''), COALESCE(SUM(amount), 0), COUNT(*)
		FROM investment_returns
		GROUP BY return_type, currency
		ORDER BY return_type, currency
	`)
}

// SummaryByMonth totals events per calendar month and currency over the last months
func (r *ReturnRepository) SummaryByMonth(ctx context.Context, months int) ([]ReturnSummary, error) {
	since := r.now().AddDate(0, -months, 0).Format(time.DateOnly)
	return r.summarize(ctx, `
		SELECT strftime('%Y-%m', date) AS month, COALESCE(currency, ''), COALESCE(SUM(amount), 0), COUNT(*)
		FROM investment_returns
		WHERE date IS NOT NULL AND date >= ?
		GROUP BY month, currency
		ORDER BY month DESC, currency
	`, since)
}

func (r *ReturnRepository) summarize(ctx context.Context, query string, args ...any) ([]ReturnSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query return summary: %w", err)
	}
	defer rows.Close()

	var summaries []ReturnSummary
	for rows.Next() {
		var s ReturnSummary
		var key sql.NullString
		if err := rows.Scan(&key, &s.Currency, &s.Total, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan return summary: %w", err)
		}
		s.Key = key.String
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return summary: %w", err)
	}
	return summaries, nil
}
