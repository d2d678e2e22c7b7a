// Package testutil provides in-memory stand-ins for the upstream provider and
// the Postgres stores.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nfl_pickem/ingestion/internal/models"
)

// NewGame builds a game fixture
func NewGame(scoreID int, season string, week int, status models.GameStatus, start time.Time) models.Game {
	return models.Game{
		ScoreID:   scoreID,
		Season:    season,
		Week:      week,
		HomeTeam:  fmt.Sprintf("H%d", scoreID),
		AwayTeam:  fmt.Sprintf("A%d", scoreID),
		StartTime: start,
		Status:    status,
	}
}

// GameStore is an in-memory game table
type GameStore struct {
	mu sync.Mutex

	Games     []models.Game
	ListErr   error
	UpsertErr error
	ScoresErr error
	ListCalls int
}

func (s *GameStore) ListBySeason(_ context.Context, season string) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.Game
	for _, g := range s.Games {
		if g.Season == season {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *GameStore) ListByWeek(_ context.Context, season string, week int) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.Game
	for _, g := range s.Games {
		if g.Season == season && g.Week == week {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *GameStore) UpsertGames(_ context.Context, games []models.Game) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertErr != nil {
		return 0, s.UpsertErr
	}
	for _, g := range games {
		if i := s.indexOf(g.ScoreID); i >= 0 {
			existing := &s.Games[i]
			if !existing.StartTime.IsZero() {
				g.StartTime = existing.StartTime
			}
			if !existing.Status.CanTransitionTo(g.Status) {
				g.Status = existing.Status
			}
			*existing = g
			continue
		}
		s.Games = append(s.Games, g)
	}
	return len(games), nil
}

func (s *GameStore) ApplyScores(_ context.Context, updates []models.ScoreUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ScoresErr != nil {
		return 0, s.ScoresErr
	}
	applied := 0
	for _, u := range updates {
		i := s.indexOf(u.ScoreID)
		if i < 0 {
			continue
		}
		g := &s.Games[i]
		if g.Status.CanTransitionTo(u.Status) {
			g.Status = u.Status
		}
		g.HomeScore = u.HomeScore
		g.AwayScore = u.AwayScore
		applied++
	}
	return applied, nil
}

func (s *GameStore) indexOf(scoreID int) int {
	for i := range s.Games {
		if s.Games[i].ScoreID == scoreID {
			return i
		}
	}
	return -1
}

// SyncStore is an in-memory app_config table holding sync timestamps
type SyncStore struct {
	mu sync.Mutex

	Values map[string]time.Time
	GetErr error
	SetErr error
}

// NewSyncStore creates an empty sync store
func NewSyncStore() *SyncStore {
	return &SyncStore{Values: make(map[string]time.Time)}
}

func (s *SyncStore) GetSyncTimestamp(_ context.Context, kind models.SyncKind, season string, week int) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return time.Time{}, false, s.GetErr
	}
	v, ok := s.Values[models.SyncKey(kind, season, week)]
	return v, ok, nil
}

func (s *SyncStore) SetSyncTimestamp(_ context.Context, ts models.SyncTimestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	if s.Values == nil {
		s.Values = make(map[string]time.Time)
	}
	if prev, ok := s.Values[ts.Key()]; ok && prev.After(ts.SyncedAt) {
		return nil
	}
	s.Values[ts.Key()] = ts.SyncedAt
	return nil
}

// OddsStore is an in-memory odds table
type OddsStore struct {
	mu sync.Mutex

	Odds []models.Odds
	Err  error
}

func (s *OddsStore) UpsertOdds(_ context.Context, odds []models.Odds) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.Odds = append(s.Odds, odds...)
	return len(odds), nil
}

// TeamStore is an in-memory teams table
type TeamStore struct {
	mu sync.Mutex

	Teams []models.Team
	Err   error
}

func (s *TeamStore) UpsertTeams(_ context.Context, teams []models.Team) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.Teams = append(s.Teams, teams...)
	return len(teams), nil
}

// Provider is a scripted upstream sports-data source
type Provider struct {
	mu sync.Mutex

	Teams    []models.Team
	Schedule map[int][]models.Game
	Scores   map[int][]models.ScoreUpdate
	Odds     map[int][]models.Odds

	// FailWeeks makes every fetch for the listed weeks return the error
	FailWeeks map[int]error
	TeamsErr  error

	Calls []string
}

func (p *Provider) record(call string, week int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, fmt.Sprintf("%s:%d", call, week))
	if err, ok := p.FailWeeks[week]; ok {
		return err
	}
	return nil
}

func (p *Provider) FetchTeams(_ context.Context) ([]models.Team, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, "teams")
	if p.TeamsErr != nil {
		return nil, p.TeamsErr
	}
	return p.Teams, nil
}

func (p *Provider) FetchSchedule(_ context.Context, _ string, week int) ([]models.Game, error) {
	if err := p.record("schedule", week); err != nil {
		return nil, err
	}
	return p.Schedule[week], nil
}

func (p *Provider) FetchScores(_ context.Context, _ string, week int) ([]models.ScoreUpdate, error) {
	if err := p.record("scores", week); err != nil {
		return nil, err
	}
	return p.Scores[week], nil
}

func (p *Provider) FetchOdds(_ context.Context, _ string, week int) ([]models.Odds, error) {
	if err := p.record("odds", week); err != nil {
		return nil, err
	}
	return p.Odds[week], nil
}

// CallCount returns how many recorded calls match call (e.g. "odds:7")
func (p *Provider) CallCount(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c == call {
			n++
		}
	}
	return n
}
