package repository

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// ConfigRepository reads and writes the app_config key-value table, which
// holds the last-sync timestamps as ISO-8601 strings.
type ConfigRepository struct {
	db *Database
}

// Get returns the raw value for key
func (r *ConfigRepository) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	var value string
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM app_config WHERE key = $1`, key).Scan(&value)
	if err == pgx.ErrNoRows {
		observe("get", "app_config", start, nil)
		return "", false, nil
	}
	observe("get", "app_config", start, err)
	if err != nil {
		return "", false, fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return value, true, nil
}

// GetSyncTimestamp returns the last sync of kind for (season, week)
func (r *ConfigRepository) GetSyncTimestamp(ctx context.Context, kind models.SyncKind, season string, week int) (time.Time, bool, error) {
	key := models.SyncKey(kind, season, week)
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid timestamp in %s: %w", key, err)
	}
	return ts, true, nil
}

// SetSyncTimestamp records a sync. An older timestamp never replaces a newer one.
func (r *ConfigRepository) SetSyncTimestamp(ctx context.Context, ts models.SyncTimestamp) error {
	query := `
		INSERT INTO app_config (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
		WHERE app_config.value::timestamptz < EXCLUDED.value::timestamptz
	`

	start := time.Now()
	_, err := r.db.Pool.Exec(ctx, query, ts.Key(), ts.SyncedAt.UTC().Format(time.RFC3339Nano))
	observe("upsert", "app_config", start, err)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", ts.Key(), err)
	}
	return nil
}
