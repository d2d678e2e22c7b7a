package models

import (
	"database/sql"
	"time"
)

// Odds represents the latest pregame line for a game from a specific sportsbook
type Odds struct {
	ID         int    `db:"id"`
	ScoreID    int    `db:"score_id"`
	Sportsbook string `db:"sportsbook"`

	// Line values
	HomeSpread    sql.NullFloat64 `db:"home_spread"`
	AwaySpread    sql.NullFloat64 `db:"away_spread"`
	OverUnder     sql.NullFloat64 `db:"over_under"`
	HomeMoneyline sql.NullInt32   `db:"home_moneyline"`
	AwayMoneyline sql.NullInt32   `db:"away_moneyline"`

	FetchedAt time.Time `db:"fetched_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OddsInput is a single sportsbook line from the SportsDataIO odds API
type OddsInput struct {
	Sportsbook string `json:"Sportsbook"`

	HomeSpread    *float64 `json:"HomePointSpread"`
	AwaySpread    *float64 `json:"AwayPointSpread"`
	OverUnder     *float64 `json:"OverUnder"`
	HomeMoneyline *int     `json:"HomeMoneyLine"`
	AwayMoneyline *int     `json:"AwayMoneyLine"`
}

// GameOddsResponse represents the game-level response from SportsDataIO odds API
type GameOddsResponse struct {
	ScoreID     int         `json:"ScoreId"`
	Season      int         `json:"Season"`
	Week        int         `json:"Week"`
	PregameOdds []OddsInput `json:"PregameOdds"`
}

// ToOdds converts OddsInput (from API) to Odds model
func (oi *OddsInput) ToOdds(scoreID int, fetchedAt time.Time) *Odds {
	odds := &Odds{
		ScoreID:    scoreID,
		Sportsbook: oi.Sportsbook,
		FetchedAt:  fetchedAt,
	}

	if oi.HomeSpread != nil {
		odds.HomeSpread = sql.NullFloat64{Float64: *oi.HomeSpread, Valid: true}
	}
	if oi.AwaySpread != nil {
		odds.AwaySpread = sql.NullFloat64{Float64: *oi.AwaySpread, Valid: true}
	}
	if oi.OverUnder != nil {
		odds.OverUnder = sql.NullFloat64{Float64: *oi.OverUnder, Valid: true}
	}
	if oi.HomeMoneyline != nil {
		odds.HomeMoneyline = sql.NullInt32{Int32: int32(*oi.HomeMoneyline), Valid: true}
	}
	if oi.AwayMoneyline != nil {
		odds.AwayMoneyline = sql.NullInt32{Int32: int32(*oi.AwayMoneyline), Valid: true}
	}

	return odds
}
