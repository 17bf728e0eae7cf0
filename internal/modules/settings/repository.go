// Package settings provides the key/value store for application settings.
// Settings hold user preferences (base currency, quote age) and the stamps
// written after imports and refreshes. Values are strings; typed getters
// convert on read.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/aristath/networth/internal/database"
	"github.com/rs/zerolog"
)

// Repository handles settings database operations.
// Writes are last-writer-wins; the stamps it stores are idempotent.
type Repository struct {
	db  database.Querier // portfolio.db - app_settings table
	log zerolog.Logger   // Structured logger
	now func() time.Time
}

// NewRepository creates a new settings repository.
//
// Parameters:
//   - db: Connection (or transaction) on the portfolio database
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db database.Querier, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "settings").Logger(),
		now: time.Now,
	}
}

// WithTx returns a repository whose writes belong to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx, log: r.log, now: r.now}
}

// Get retrieves a setting value by key.
// Returns nil if the setting doesn't exist (not an error).
//
// Parameters:
//   - key: Setting key (e.g., "base_currency", "last_rates_update")
//
// Returns:
//   - *string: Setting value if found, nil if not found
//   - error: Error if query fails
func (r *Repository) Get(ctx context.Context, key string) (*string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM app_settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// GetOrDefault retrieves a setting, falling back to SettingDefaults.
//
// Returns:
//   - string: Stored value, the default, or "" when neither exists
//   - error: Error if query fails
func (r *Repository) GetOrDefault(ctx context.Context, key string) (string, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if value != nil {
		return *value, nil
	}
	return SettingDefaults[key], nil
}

// Set sets a setting value.
// Uses INSERT ... ON CONFLICT so insert and update are one statement.
//
// Parameters:
//   - key: Setting key
//   - value: Setting value (stored as string)
//
// Returns:
//   - error: Error if database operation fails
func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	r.log.Debug().Str("key", key).Msg("Setting updated")
	return nil
}

// GetAll retrieves all settings as a map.
//
// Returns:
//   - map[string]string: Map of setting keys to values
//   - error: Error if query fails
func (r *Repository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM app_settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return result, nil
}

// GetFloat retrieves a setting value as float64.
// Returns defaultValue if the setting doesn't exist or parsing fails.
//
// Parameters:
//   - key: Setting key
//   - defaultValue: Default value to return if setting not found or invalid
//
// Returns:
//   - float64: Setting value as float, or defaultValue
//   - error: Error if query fails (parsing errors are logged but not returned)
func (r *Repository) GetFloat(ctx context.Context, key string, defaultValue float64) (float64, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse float setting")
		return defaultValue, nil
	}

	return floatVal, nil
}

// GetTime retrieves an RFC 3339 stamp.
//
// Returns:
//   - *time.Time: Parsed stamp, nil if unset or unparseable
//   - error: Error if query fails
func (r *Repository) GetTime(ctx context.Context, key string) (*time.Time, error) {
	value, err := r.Get(ctx, key)
	if err != nil || value == nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Failed to parse time setting")
		return nil, nil
	}
	return &t, nil
}

// SetTime stores t as an RFC 3339 stamp in UTC.
func (r *Repository) SetTime(ctx context.Context, key string, t time.Time) error {
	return r.Set(ctx, key, t.UTC().Format(time.RFC3339))
}

// MaxQuoteAge returns the validity window of cached rates and prices.
// Non-positive stored values fall back to 24 hours.
func (r *Repository) MaxQuoteAge(ctx context.Context) (time.Duration, error) {
	hours, err := r.GetFloat(ctx, KeyMaxQuoteAgeHours, 24)
	if err != nil {
		return 24 * time.Hour, err
	}
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours * float64(time.Hour)), nil
}

// Delete deletes a setting.
// This operation is idempotent - it does not error if the setting doesn't exist.
func (r *Repository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM app_settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
