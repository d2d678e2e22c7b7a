package repository

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// OddsRepository handles odds database operations. One row is kept per
// game and sportsbook holding the latest pregame line.
type OddsRepository struct {
	db *Database
}

// UpsertOdds inserts or refreshes lines keyed by (score_id, sportsbook)
func (r *OddsRepository) UpsertOdds(ctx context.Context, odds []models.Odds) (int, error) {
	if len(odds) == 0 {
		return 0, nil
	}
	start := time.Now()

	query := `
		INSERT INTO odds (
			score_id, sportsbook, home_spread, away_spread, over_under,
			home_moneyline, away_moneyline, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (score_id, sportsbook) DO UPDATE SET
			home_spread = EXCLUDED.home_spread,
			away_spread = EXCLUDED.away_spread,
			over_under = EXCLUDED.over_under,
			home_moneyline = EXCLUDED.home_moneyline,
			away_moneyline = EXCLUDED.away_moneyline,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = NOW()
		WHERE odds.fetched_at <= EXCLUDED.fetched_at
	`

	batch := &pgx.Batch{}
	for i := range odds {
		o := &odds[i]
		batch.Queue(query,
			o.ScoreID, o.Sportsbook, o.HomeSpread, o.AwaySpread, o.OverUnder,
			o.HomeMoneyline, o.AwayMoneyline, o.FetchedAt,
		)
	}

	err := r.db.Pool.SendBatch(ctx, batch).Close()
	observe("upsert", "odds", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert odds: %w", err)
	}

	return len(odds), nil
}

// ListForGame retrieves the latest line from every sportsbook for a game
func (r *OddsRepository) ListForGame(ctx context.Context, scoreID int) ([]models.Odds, error) {
	query := `
		SELECT id, score_id, sportsbook, home_spread, away_spread, over_under,
		       home_moneyline, away_moneyline, fetched_at, created_at, updated_at
		FROM odds
		WHERE score_id = $1
		ORDER BY sportsbook
	`

	rows, err := r.db.Pool.Query(ctx, query, scoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to get odds for game: %w", err)
	}
	defer rows.Close()

	var list []models.Odds
	for rows.Next() {
		var o models.Odds
		err := rows.Scan(
			&o.ID, &o.ScoreID, &o.Sportsbook, &o.HomeSpread, &o.AwaySpread, &o.OverUnder,
			&o.HomeMoneyline, &o.AwayMoneyline, &o.FetchedAt, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		list = append(list, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating odds: %w", err)
	}

	return list, nil
}
