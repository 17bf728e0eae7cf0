// Package insights stores generated portfolio analyses as an append-only log.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles ai_insights operations. Records are never updated.
type Repository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewRepository creates a new insights repository
func NewRepository(db database.Querier, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "insights").Logger(),
	}
}

// Append stores rec and returns its ID
func (r *Repository) Append(ctx context.Context, rec domain.InsightRecord) (int64, error) {
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_insights (insight_type, content, portfolio_snapshot, generated_at)
		VALUES (?, ?, ?, ?)
	`, rec.Type, rec.Content, rec.PortfolioSnapshot, rec.GeneratedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to append insight: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insight id: %w", err)
	}

	r.log.Info().Int64("id", id).Str("type", rec.Type).Msg("Insight stored")
	return id, nil
}

// Recent returns up to limit insights, newest first.
// An empty kind matches every insight type.
func (r *Repository) Recent(ctx context.Context, kind string, limit int) ([]domain.InsightRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, insight_type, content, portfolio_snapshot, generated_at
		FROM ai_insights
		WHERE ? = '' OR insight_type = ?
		ORDER BY generated_at DESC, id DESC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var records []domain.InsightRecord
	for rows.Next() {
		var rec domain.InsightRecord
		var generatedUnix int64
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Content, &rec.PortfolioSnapshot, &generatedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		rec.GeneratedAt = time.Unix(generatedUnix, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}
	return records, nil
}
