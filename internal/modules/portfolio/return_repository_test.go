package portfolio

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/aristath/networth/internal/domain"
	testingpkg "github.com/aristath/networth/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

const returnsTestSchema = `
CREATE TABLE investment_returns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investment_id TEXT NOT NULL,
	instrument TEXT,
	return_type TEXT NOT NULL CHECK (return_type IN ('DIVIDEND', 'INTEREST', 'BOND', 'CAPITAL_GAIN', 'OTHER')),
	date TEXT,
	amount REAL,
	currency TEXT,
	notes TEXT NOT NULL DEFAULT ''
)`

func setupReturnsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // every :memory: connection is a separate database
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(returnsTestSchema)
	require.NoError(t, err)
	return db
}

func TestReturnRepository_ReplaceAll(t *testing.T) {
	db := setupReturnsDB(t)
	repo := NewReturnRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
	ctx := context.Background()

	events := testingpkg.NewReturnEventFixtures()
	require.NoError(t, repo.ReplaceAll(ctx, events))
	require.NoError(t, repo.ReplaceAll(ctx, events))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(events), "replace, never append")
	assert.Equal(t, "2024-03-10", *all[0].Date)
	assert.Equal(t, "not imported yet", all[0].Notes)
}

func TestReturnRepository_ReplaceAllRollsBack(t *testing.T) {
	db := setupReturnsDB(t)
	repo := NewReturnRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, testingpkg.NewReturnEventFixtures()))

	bad := []domain.ReturnEvent{
		{InvestmentID: "INV-001", ReturnType: domain.ReturnDividend},
		{InvestmentID: "INV-002", ReturnType: "BONUS"},
	}
	err := repo.ReplaceAll(ctx, bad)
	require.Error(t, err)

	var constraintErr *domain.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "INV-002", constraintErr.Key)
	assert.Equal(t, 3, testingpkg.CountRows(t, db, "investment_returns"), "old events survive a failed replace")
}

func TestReturnRepository_WithTxSharesTransaction(t *testing.T) {
	db := setupReturnsDB(t)
	repo := NewReturnRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
	ctx := context.Background()

	err := database.WithTransaction(db, func(tx *sql.Tx) error {
		if err := repo.WithTx(tx).ReplaceAll(ctx, testingpkg.NewReturnEventFixtures()); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 0, testingpkg.CountRows(t, db, "investment_returns"))
}

func TestReturnRepository_Summaries(t *testing.T) {
	db := setupReturnsDB(t)
	repo := NewReturnRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
	repo.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	events := append(testingpkg.NewReturnEventFixtures(), domain.ReturnEvent{
		InvestmentID: "INV-001", ReturnType: domain.ReturnDividend,
		Date: testingpkg.String("2022-01-01"), Amount: testingpkg.Float(10), Currency: testingpkg.String("AUD"),
	})
	require.NoError(t, repo.ReplaceAll(ctx, events))

	byType, err := repo.SummaryByType(ctx)
	require.NoError(t, err)
	require.Len(t, byType, 3)
	assert.Equal(t, ReturnSummary{Key: "BOND", Currency: "USD", Total: 75, Count: 1}, byType[0])
	assert.Equal(t, ReturnSummary{Key: "DIVIDEND", Currency: "AUD", Total: 52.5, Count: 2}, byType[1])

	byMonth, err := repo.SummaryByMonth(ctx, 12)
	require.NoError(t, err)
	require.Len(t, byMonth, 3, "the 2022 dividend is outside the window")
	assert.Equal(t, "2024-03", byMonth[0].Key)
}
