// Package syncer decides when upstream sports data needs refreshing and
// performs the fetch-and-persist work for each (season, week).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/metrics"
	"nfl_pickem/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Provider is the upstream sports-data source
type Provider interface {
	FetchTeams(ctx context.Context) ([]models.Team, error)
	FetchSchedule(ctx context.Context, season string, week int) ([]models.Game, error)
	FetchScores(ctx context.Context, season string, week int) ([]models.ScoreUpdate, error)
	FetchOdds(ctx context.Context, season string, week int) ([]models.Odds, error)
}

// GameStore reads and writes the games table
type GameStore interface {
	ListBySeason(ctx context.Context, season string) ([]models.Game, error)
	ListByWeek(ctx context.Context, season string, week int) ([]models.Game, error)
	UpsertGames(ctx context.Context, games []models.Game) (int, error)
	ApplyScores(ctx context.Context, updates []models.ScoreUpdate) (int, error)
}

// TeamStore writes the teams table
type TeamStore interface {
	UpsertTeams(ctx context.Context, teams []models.Team) (int, error)
}

// OddsStore writes the odds table
type OddsStore interface {
	UpsertOdds(ctx context.Context, odds []models.Odds) (int, error)
}

// SyncStore persists last-sync timestamps
type SyncStore interface {
	GetSyncTimestamp(ctx context.Context, kind models.SyncKind, season string, week int) (time.Time, bool, error)
	SetSyncTimestamp(ctx context.Context, ts models.SyncTimestamp) error
}

// Flags selects which datasets a dispatch refreshes
type Flags struct {
	Scores    bool `json:"syncScores"`
	Schedules bool `json:"syncSchedules"`
	Odds      bool `json:"syncOdds"`
}

// AllFlags refreshes every dataset
var AllFlags = Flags{Scores: true, Schedules: true, Odds: true}

// WeekResult is the outcome of dispatching one (season, week)
type WeekResult struct {
	Season string
	Week   int
	Games  int
	Scores int
	Odds   int
	Err    error
}

// Summary aggregates a multi-week dispatch
type Summary struct {
	SyncedWeeks int
	Errors      []string
	Weeks       []WeekResult
}

// Dispatcher fetches from the provider and upserts into the stores for one
// (season, week) at a time. Multi-week runs are sequential.
type Dispatcher struct {
	provider Provider
	games    GameStore
	teams    TeamStore
	odds     OddsStore
	syncs    SyncStore
	clock    clockwork.Clock
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(provider Provider, games GameStore, teams TeamStore, odds OddsStore, syncs SyncStore, clock clockwork.Clock) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		games:    games,
		teams:    teams,
		odds:     odds,
		syncs:    syncs,
		clock:    clock,
	}
}

// Dispatch refreshes the selected datasets for one week. Every selected kind
// is attempted; the returned Err joins the failures of those that did not
// complete. Kinds that succeed get their SyncTimestamp written.
func (d *Dispatcher) Dispatch(ctx context.Context, season string, week int, flags Flags) WeekResult {
	result := WeekResult{Season: season, Week: week}
	var errs []error

	if flags.Schedules {
		start := d.clock.Now()
		n, err := d.syncSchedule(ctx, season, week)
		result.Games = n
		errs = append(errs, d.finish(ctx, models.SyncSchedule, season, week, start, err))
	}

	if flags.Scores {
		start := d.clock.Now()
		n, err := d.syncScores(ctx, season, week)
		result.Scores = n
		errs = append(errs, d.finish(ctx, models.SyncScores, season, week, start, err))
	}

	if flags.Odds {
		start := d.clock.Now()
		n, err := d.syncOdds(ctx, season, week)
		result.Odds = n
		errs = append(errs, d.finish(ctx, models.SyncOdds, season, week, start, err))
	}

	result.Err = errors.Join(errs...)
	return result
}

// DispatchWeeks dispatches each week in order, waiting delay between weeks.
// One week failing never stops the others; failures are reported in the
// summary as "week N: ..." strings.
func (d *Dispatcher) DispatchWeeks(ctx context.Context, season string, weeks []int, flags Flags, delay time.Duration) Summary {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("season", season).Logger()
	logger.Info().Ints("weeks", weeks).Interface("flags", flags).Msg("Starting sync dispatch")

	summary := Summary{Errors: []string{}}
	for i, week := range weeks {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				summary.Errors = append(summary.Errors, fmt.Sprintf("week %d: %v", week, ctx.Err()))
				logger.Warn().Err(ctx.Err()).Int("week", week).Msg("Dispatch cancelled before week")
				return summary
			case <-d.clock.After(delay):
			}
		}

		result := d.Dispatch(ctx, season, week, flags)
		summary.Weeks = append(summary.Weeks, result)

		if result.Err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("week %d: %v", week, result.Err))
			logger.Error().Err(result.Err).Int("week", week).Msg("Week sync failed")
			continue
		}

		summary.SyncedWeeks++
		logger.Info().
			Int("week", week).
			Int("games", result.Games).
			Int("scores", result.Scores).
			Int("odds", result.Odds).
			Msg("Week synced")
	}

	logger.Info().
		Int("synced_weeks", summary.SyncedWeeks).
		Int("failed_weeks", len(summary.Errors)).
		Msg("Sync dispatch complete")

	return summary
}

// finish records metrics and the sync timestamp for one kind
func (d *Dispatcher) finish(ctx context.Context, kind models.SyncKind, season string, week int, start time.Time, syncErr error) error {
	duration := d.clock.Since(start).Seconds()
	if syncErr != nil {
		metrics.RecordSync(string(kind), "error", duration)
		return fmt.Errorf("%s: %w", kind, syncErr)
	}
	metrics.RecordSync(string(kind), "success", duration)

	ts := models.SyncTimestamp{Kind: kind, Season: season, Week: week, SyncedAt: d.clock.Now().UTC()}
	if err := d.syncs.SetSyncTimestamp(ctx, ts); err != nil {
		// Data is already persisted; a missing marker only means an earlier resync.
		log.Warn().
			Err(err).
			Str("kind", string(kind)).
			Str("season", season).
			Int("week", week).
			Msg("Failed to record sync timestamp")
		metrics.RecordError("dispatcher", "sync_timestamp_write")
	}
	return nil
}

func (d *Dispatcher) syncSchedule(ctx context.Context, season string, week int) (int, error) {
	d.refreshTeams(ctx)

	games, err := d.provider.FetchSchedule(ctx, season, week)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	n, err := d.games.UpsertGames(ctx, games)
	if err != nil {
		return 0, fmt.Errorf("failed to save schedule: %w", err)
	}
	return n, nil
}

// refreshTeams keeps the teams table current ahead of a schedule write.
// Games carry team keys as plain text, so a failure here is not fatal.
func (d *Dispatcher) refreshTeams(ctx context.Context) {
	teams, err := d.provider.FetchTeams(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch teams, continuing with schedule")
		return
	}
	if _, err := d.teams.UpsertTeams(ctx, teams); err != nil {
		log.Warn().Err(err).Msg("Failed to save teams, continuing with schedule")
	}
}

func (d *Dispatcher) syncScores(ctx context.Context, season string, week int) (int, error) {
	updates, err := d.provider.FetchScores(ctx, season, week)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch scores: %w", err)
	}

	n, err := d.games.ApplyScores(ctx, updates)
	if err != nil {
		return 0, fmt.Errorf("failed to save scores: %w", err)
	}
	return n, nil
}

func (d *Dispatcher) syncOdds(ctx context.Context, season string, week int) (int, error) {
	odds, err := d.provider.FetchOdds(ctx, season, week)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch odds: %w", err)
	}

	n, err := d.odds.UpsertOdds(ctx, odds)
	if err != nil {
		return 0, fmt.Errorf("failed to save odds: %w", err)
	}
	return n, nil
}
