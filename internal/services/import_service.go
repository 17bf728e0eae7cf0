package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/aristath/networth/internal/modules/settings"
	"github.com/aristath/networth/internal/modules/spreadsheet"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImportResult summarizes one spreadsheet import
type ImportResult struct {
	RunID          string `json:"run_id"`
	PositionsCount int    `json:"positions_count"`
	EventsCount    int    `json:"events_count"`
	SkippedRows    int    `json:"skipped_rows"`
}

// ImportService loads a workbook into the store.
// Both sheets are parsed before anything is written; the writes then run in a
// single transaction so a failed import leaves the store untouched.
type ImportService struct {
	db        *sql.DB
	reader    *spreadsheet.Reader
	positions *portfolio.PositionRepository
	returns   *portfolio.ReturnRepository
	settings  *settings.Repository
	log       zerolog.Logger
	now       func() time.Time
}

// NewImportService creates a new import service
func NewImportService(
	db *sql.DB,
	reader *spreadsheet.Reader,
	positions *portfolio.PositionRepository,
	returns *portfolio.ReturnRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		db:        db,
		reader:    reader,
		positions: positions,
		returns:   returns,
		settings:  settingsRepo,
		log:       log.With().Str("service", "import").Logger(),
		now:       time.Now,
	}
}

// ImportSpreadsheet upserts every position of the workbook at path and
// replaces the stored return events with the workbook's.
func (s *ImportService) ImportSpreadsheet(ctx context.Context, path string) (*ImportResult, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Str("path", path).Logger()
	start := time.Now()

	log.Info().Msg("Starting spreadsheet import")

	positions, events, skipped, err := s.parse(path)
	if err != nil {
		log.Error().Err(err).Msg("Spreadsheet parse failed")
		return nil, err
	}

	err = database.WithTransaction(s.db, func(tx *sql.Tx) error {
		positionRepo := s.positions.WithTx(tx)
		for _, raw := range positions {
			if err := positionRepo.Upsert(ctx, raw.Position()); err != nil {
				return &domain.InsertionError{
					Sheet: spreadsheet.PositionsSheet,
					Row:   raw.Row,
					ID:    raw.ID,
					Err:   err,
				}
			}
		}

		domainEvents := make([]domain.ReturnEvent, 0, len(events))
		for _, raw := range events {
			domainEvents = append(domainEvents, raw.ReturnEvent())
		}
		if err := s.returns.WithTx(tx).ReplaceAll(ctx, domainEvents); err != nil {
			return fmt.Errorf("failed to replace return events: %w", err)
		}

		return s.settings.WithTx(tx).SetTime(ctx, settings.KeyLastExcelImport, s.now())
	})
	if err != nil {
		log.Error().Err(err).Msg("Spreadsheet import rolled back")
		return nil, err
	}

	result := &ImportResult{
		RunID:          runID,
		PositionsCount: len(positions),
		EventsCount:    len(events),
		SkippedRows:    skipped,
	}

	log.Info().
		Int("positions", result.PositionsCount).
		Int("events", result.EventsCount).
		Int("skipped", result.SkippedRows).
		Dur("elapsed", time.Since(start)).
		Msg("Spreadsheet import completed")
	return result, nil
}

func (s *ImportService) parse(path string) ([]spreadsheet.PositionRaw, []spreadsheet.ReturnEventRaw, int, error) {
	w, err := s.reader.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer w.Close()

	var positions []spreadsheet.PositionRaw
	for p, err := range w.Positions() {
		if err != nil {
			return nil, nil, 0, err
		}
		positions = append(positions, p)
	}

	var events []spreadsheet.ReturnEventRaw
	for e, err := range w.ReturnEvents() {
		if err != nil {
			return nil, nil, 0, err
		}
		events = append(events, e)
	}

	return positions, events, w.Skipped(), nil
}
