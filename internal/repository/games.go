package repository

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `
	id, score_id, season, week, home_team, away_team, start_time, status,
	home_score, away_score, created_at, updated_at`

// statusRank mirrors models.GameStatus.Rank for use inside upserts
const statusRank = `
	CASE %s WHEN 'scheduled' THEN 0 WHEN 'live' THEN 1 WHEN 'final' THEN 2 ELSE -1 END`

var (
	// start_time is written once; status never moves backwards
	upsertGameQuery = fmt.Sprintf(`
		INSERT INTO games (
			score_id, season, week, home_team, away_team, start_time, status,
			home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (score_id) DO UPDATE SET
			season = EXCLUDED.season,
			week = EXCLUDED.week,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			start_time = COALESCE(games.start_time, EXCLUDED.start_time),
			status = CASE
				WHEN %s >= %s THEN EXCLUDED.status
				ELSE games.status
			END,
			home_score = COALESCE(EXCLUDED.home_score, games.home_score),
			away_score = COALESCE(EXCLUDED.away_score, games.away_score),
			updated_at = NOW()
	`, fmt.Sprintf(statusRank, "EXCLUDED.status"), fmt.Sprintf(statusRank, "games.status"))

	applyScoreQuery = fmt.Sprintf(`
		UPDATE games SET
			status = CASE
				WHEN %s >= %s THEN $2
				ELSE status
			END,
			home_score = COALESCE($3, home_score),
			away_score = COALESCE($4, away_score),
			updated_at = NOW()
		WHERE score_id = $1
	`, fmt.Sprintf(statusRank, "$2::text"), fmt.Sprintf(statusRank, "status"))
)

// UpsertGames inserts or updates a week's games in one batch
func (r *GameRepository) UpsertGames(ctx context.Context, games []models.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}
	start := time.Now()

	batch := &pgx.Batch{}
	for i := range games {
		g := &games[i]
		var startTime *time.Time
		if !g.StartTime.IsZero() {
			startTime = &g.StartTime
		}
		batch.Queue(upsertGameQuery,
			g.ScoreID, g.Season, g.Week, g.HomeTeam, g.AwayTeam, startTime, string(g.Status),
			g.HomeScore, g.AwayScore,
		)
	}

	err := r.db.Pool.SendBatch(ctx, batch).Close()
	observe("upsert", "games", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert games: %w", err)
	}

	log.Debug().Int("count", len(games)).Msg("Games upserted")
	return len(games), nil
}

// ApplyScores updates status and scores of existing games. Unknown games are ignored.
func (r *GameRepository) ApplyScores(ctx context.Context, updates []models.ScoreUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	start := time.Now()

	batch := &pgx.Batch{}
	for i := range updates {
		u := &updates[i]
		batch.Queue(applyScoreQuery, u.ScoreID, string(u.Status), u.HomeScore, u.AwayScore)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	applied := 0
	var err error
	for range updates {
		tag, execErr := results.Exec()
		if execErr != nil {
			err = execErr
			break
		}
		applied += int(tag.RowsAffected())
	}
	if closeErr := results.Close(); err == nil {
		err = closeErr
	}

	observe("update", "games", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to apply scores: %w", err)
	}

	return applied, nil
}

// ListBySeason retrieves every game of a season
func (r *GameRepository) ListBySeason(ctx context.Context, season string) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1
		ORDER BY week, start_time
	`
	return r.list(ctx, "list_season", query, season)
}

// ListByWeek retrieves games for a specific season and week
func (r *GameRepository) ListByWeek(ctx context.Context, season string, week int) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1 AND week = $2
		ORDER BY start_time
	`
	return r.list(ctx, "list_week", query, season, week)
}

// GetByScoreID retrieves a game by its SportsDataIO ScoreID
func (r *GameRepository) GetByScoreID(ctx context.Context, scoreID int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE score_id = $1
	`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, scoreID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: score_id=%d", scoreID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (r *GameRepository) list(ctx context.Context, operation, query string, args ...any) ([]models.Game, error) {
	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		observe(operation, "games", start, err)
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			observe(operation, "games", start, err)
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}

	err = rows.Err()
	observe(operation, "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		game      models.Game
		status    string
		startTime *time.Time
	)
	err := row.Scan(
		&game.ID, &game.ScoreID, &game.Season, &game.Week, &game.HomeTeam, &game.AwayTeam,
		&startTime, &status, &game.HomeScore, &game.AwayScore, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.Status, err = models.ParseGameStatus(status)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", game.ScoreID, err)
	}
	if startTime != nil {
		game.StartTime = startTime.UTC()
	}
	return &game, nil
}
