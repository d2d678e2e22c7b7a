package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// GameStatus is the lifecycle state of a game. Transitions only move forward:
// scheduled -> live -> final.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// ParseGameStatus parses a stored status value
func ParseGameStatus(s string) (GameStatus, error) {
	switch GameStatus(s) {
	case StatusScheduled, StatusLive, StatusFinal:
		return GameStatus(s), nil
	}
	return "", fmt.Errorf("unknown game status %q", s)
}

// StatusFromProvider maps a SportsDataIO game status onto the three lifecycle states
func StatusFromProvider(s string) (GameStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled", "postponed", "delayed", "suspended":
		return StatusScheduled, nil
	case "inprogress":
		return StatusLive, nil
	case "final", "f/ot", "canceled", "cancelled", "forfeit":
		return StatusFinal, nil
	}
	return "", fmt.Errorf("unknown provider game status %q", s)
}

// Rank orders statuses along the lifecycle
func (s GameStatus) Rank() int {
	switch s {
	case StatusScheduled:
		return 0
	case StatusLive:
		return 1
	case StatusFinal:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic
func (s GameStatus) CanTransitionTo(next GameStatus) bool {
	return next.Rank() >= s.Rank() && next.Rank() >= 0
}

// Game represents a single NFL game
type Game struct {
	ID        int           `db:"id"`
	ScoreID   int           `db:"score_id"`
	Season    string        `db:"season"`
	Week      int           `db:"week"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	StartTime time.Time     `db:"start_time"`
	Status    GameStatus    `db:"status"`
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameInput is a game as returned by the SportsDataIO scores endpoints
type GameInput struct {
	ScoreID   int    `json:"ScoreID"`
	Season    int    `json:"Season"`
	Week      int    `json:"Week"`
	HomeTeam  string `json:"HomeTeam"`
	AwayTeam  string `json:"AwayTeam"`
	DateTime  string `json:"DateTimeUTC"`
	Status    string `json:"Status"`
	HomeScore *int   `json:"HomeScore,omitempty"`
	AwayScore *int   `json:"AwayScore,omitempty"`
}

// providerTimeLayout is the zone-less layout SportsDataIO uses for DateTimeUTC
const providerTimeLayout = "2006-01-02T15:04:05"

// ToGame converts GameInput (from API) to Game model
func (gi *GameInput) ToGame(season string) (*Game, error) {
	status, err := StatusFromProvider(gi.Status)
	if err != nil {
		return nil, err
	}

	game := &Game{
		ScoreID:  gi.ScoreID,
		Season:   season,
		Week:     gi.Week,
		HomeTeam: gi.HomeTeam,
		AwayTeam: gi.AwayTeam,
		Status:   status,
	}

	if gi.DateTime != "" {
		startTime, err := parseProviderTime(gi.DateTime)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", gi.ScoreID, err)
		}
		game.StartTime = startTime
	}

	if gi.HomeScore != nil {
		game.HomeScore = sql.NullInt32{Int32: int32(*gi.HomeScore), Valid: true}
	}
	if gi.AwayScore != nil {
		game.AwayScore = sql.NullInt32{Int32: int32(*gi.AwayScore), Valid: true}
	}

	return game, nil
}

// ToScoreUpdate converts GameInput (from API) to a score-only update
func (gi *GameInput) ToScoreUpdate() (*ScoreUpdate, error) {
	game, err := gi.ToGame("")
	if err != nil {
		return nil, err
	}
	return &ScoreUpdate{
		ScoreID:   game.ScoreID,
		Status:    game.Status,
		HomeScore: game.HomeScore,
		AwayScore: game.AwayScore,
	}, nil
}

func parseProviderTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(providerTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", s, err)
	}
	return t, nil
}

// ScoreUpdate carries the fields a score sync is allowed to change
type ScoreUpdate struct {
	ScoreID   int
	Status    GameStatus
	HomeScore sql.NullInt32
	AwayScore sql.NullInt32
}

// IsLive returns true if the game is currently in progress
func (g *Game) IsLive() bool {
	return g.Status == StatusLive
}

// IsScheduled returns true if the game is scheduled but not started
func (g *Game) IsScheduled() bool {
	return g.Status == StatusScheduled
}

// IsFinal returns true if the game is completed
func (g *Game) IsFinal() bool {
	return g.Status == StatusFinal
}
