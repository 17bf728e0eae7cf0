// Package portfolio provides the relational store for positions and return events.
package portfolio

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

const positionColumns = `id, platform, investment_type, ticker_symbol, asset_name,
	invested_amount, current_amount, profit_loss, currency, updated_date,
	purchase_date, quantity, auto_update, notes, modified_at`

// PositionRepository handles position database operations
type PositionRepository struct {
	db  database.Querier
	log zerolog.Logger
	now func() time.Time
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db database.Querier, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
		now: time.Now,
	}
}

// WithTx returns a repository bound to tx. Writes through it commit or roll
// back with the transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{db: tx, log: r.log, now: r.now}
}

// Upsert inserts a position or replaces every column of the existing row with the same ID.
// Profit/loss is always derived from the amounts, whatever the caller passed in.
func (r *PositionRepository) Upsert(ctx context.Context, p domain.Position) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("position ID is required for upsert")
	}
	p.ProfitLoss = domain.ProfitLoss(p)

	query := `
		INSERT INTO investments (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			platform = excluded.platform,
			investment_type = excluded.investment_type,
			ticker_symbol = excluded.ticker_symbol,
			asset_name = excluded.asset_name,
			invested_amount = excluded.invested_amount,
			current_amount = excluded.current_amount,
			profit_loss = excluded.profit_loss,
			currency = excluded.currency,
			updated_date = excluded.updated_date,
			purchase_date = excluded.purchase_date,
			quantity = excluded.quantity,
			auto_update = excluded.auto_update,
			notes = excluded.notes,
			modified_at = excluded.modified_at
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Platform,
		p.InvestmentType,
		nullString(p.TickerSymbol),
		p.AssetName,
		nullFloat64(p.InvestedAmount),
		nullFloat64(p.CurrentAmount),
		nullFloat64(p.ProfitLoss),
		nullString(p.Currency),
		nullString(p.UpdatedDate),
		nullString(p.PurchaseDate),
		nullFloat64(p.Quantity),
		domain.FormatAutoUpdate(p.AutoUpdate),
		p.Notes,
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if database.IsConstraintError(err) {
			return &domain.ConstraintError{Table: "investments", Key: p.ID, Err: err}
		}
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	r.log.Debug().Str("id", p.ID).Msg("Position upserted")
	return nil
}

// GetAll returns all positions
func (r *PositionRepository) GetAll(ctx context.Context) ([]domain.Position, error) {
	return r.query(ctx, `SELECT `+positionColumns+` FROM investments ORDER BY id`)
}

// GetByID returns the position with id, or nil if it does not exist
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*domain.Position, error) {
	positions, err := r.query(ctx, `SELECT `+positionColumns+` FROM investments WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}
	return &positions[0], nil
}

// GetAutoUpdateCandidates returns auto-update positions with a usable ticker
func (r *PositionRepository) GetAutoUpdateCandidates(ctx context.Context) ([]domain.Position, error) {
	return r.query(ctx, `SELECT `+positionColumns+` FROM investments
		WHERE auto_update = 'YES'
		  AND ticker_symbol IS NOT NULL
		  AND TRIM(ticker_symbol) != ''
		  AND ticker_symbol != ?
		ORDER BY id`, domain.TickerPlaceholder)
}

// DistinctCurrencies returns every currency code used by at least one position
func (r *PositionRepository) DistinctCurrencies(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT currency FROM investments
		WHERE currency IS NOT NULL AND currency != '' ORDER BY currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return currencies, nil
}

// UpdateCurrentAmount stores a new valuation and recomputes profit/loss.
// Returns an error if the position does not exist.
func (r *PositionRepository) UpdateCurrentAmount(ctx context.Context, id string, current float64, updatedDate string) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("position %q not found", id)
	}

	p.CurrentAmount = &current
	profitLoss := domain.ProfitLoss(*p)

	_, err = r.db.ExecContext(ctx, `
		UPDATE investments
		SET current_amount = ?, profit_loss = ?, updated_date = ?, modified_at = ?
		WHERE id = ?
	`, current, nullFloat64(profitLoss), updatedDate, r.now().UTC().Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update current amount: %w", err)
	}

	r.log.Debug().Str("id", p.ID).Float64("current_amount", current).Msg("Position valuation updated")
	return nil
}

// Delete deletes a specific position by ID. Deleting a missing ID is not an error.
func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM investments WHERE id = ?", strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Str("id", id).Int64("rows_affected", rowsAffected).Msg("Position deleted")
	return nil
}

// Count returns the number of stored positions
func (r *PositionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM investments").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}

func (r *PositionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

// scanPosition scans a database row into a Position struct
func scanPosition(rows *sql.Rows) (domain.Position, error) {
	var p domain.Position
	var platform, investmentType, assetName, notes sql.NullString
	var ticker, currency, updatedDate, purchaseDate sql.NullString
	var invested, current, profitLoss, quantity sql.NullFloat64
	var autoUpdate, modifiedAt string

	err := rows.Scan(
		&p.ID,
		&platform,
		&investmentType,
		&ticker,
		&assetName,
		&invested,
		&current,
		&profitLoss,
		&currency,
		&updatedDate,
		&purchaseDate,
		&quantity,
		&autoUpdate,
		&notes,
		&modifiedAt,
	)
	if err != nil {
		return p, err
	}

	p.Platform = platform.String
	p.InvestmentType = investmentType.String
	p.AssetName = assetName.String
	p.Notes = notes.String
	p.TickerSymbol = stringPtr(ticker)
	p.Currency = stringPtr(currency)
	p.UpdatedDate = stringPtr(updatedDate)
	p.PurchaseDate = stringPtr(purchaseDate)
	p.InvestedAmount = floatPtr(invested)
	p.CurrentAmount = floatPtr(current)
	p.ProfitLoss = floatPtr(profitLoss)
	p.Quantity = floatPtr(quantity)
	p.AutoUpdate = domain.ParseAutoUpdate(autoUpdate)
	if t, err := time.Parse(time.RFC3339, modifiedAt); err == nil {
		p.ModifiedAt = &t
	}

	return p, nil
}

func nullFloat64(val *float64) sql.NullFloat64 {
	if val == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *val, Valid: true}
}

func nullString(val *string) sql.NullString {
	if val == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *val, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
