package repository

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// UpsertTeams inserts or updates teams keyed by team_key
func (r *TeamRepository) UpsertTeams(ctx context.Context, teams []models.Team) (int, error) {
	if len(teams) == 0 {
		return 0, nil
	}
	start := time.Now()

	query := `
		INSERT INTO teams (team_key, city, name, conference, division)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_key) DO UPDATE SET
			city = EXCLUDED.city,
			name = EXCLUDED.name,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i := range teams {
		t := &teams[i]
		batch.Queue(query, t.TeamKey, t.City, t.Name, t.Conference, t.Division)
	}

	err := r.db.Pool.SendBatch(ctx, batch).Close()
	observe("upsert", "teams", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert teams: %w", err)
	}

	log.Debug().Int("count", len(teams)).Msg("Teams upserted")
	return len(teams), nil
}

// GetByKey retrieves a team by its abbreviation
func (r *TeamRepository) GetByKey(ctx context.Context, key string) (*models.Team, error) {
	query := `
		SELECT id, team_key, city, name, conference, division, created_at, updated_at
		FROM teams
		WHERE team_key = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(
		&team.ID, &team.TeamKey, &team.City, &team.Name,
		&team.Conference, &team.Division, &team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: team_key=%s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
