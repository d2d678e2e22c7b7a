package syncer

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/metrics"
	"nfl_pickem/ingestion/internal/models"
	"nfl_pickem/ingestion/internal/season"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gatekeeper decision labels
const (
	decisionSync       = "sync"
	decisionSkip       = "skip"
	decisionFailClosed = "fail_closed"
)

// Result is the outcome of a gatekeeper run or a dispatch request. Success
// reports that the mechanism ran; per-week failures are listed in Errors.
type Result struct {
	Success     bool     `json:"success"`
	Synced      bool     `json:"synced"`
	Message     string   `json:"message,omitempty"`
	Season      string   `json:"season,omitempty"`
	Week        int      `json:"week,omitempty"`
	SyncedWeeks int      `json:"syncedWeeks"`
	Errors      []string `json:"errors,omitempty"`
}

func skipped(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func fromSummary(s Summary, seasonID string, week int, message string) Result {
	return Result{
		Success:     true,
		Synced:      true,
		Message:     message,
		Season:      seasonID,
		Week:        week,
		SyncedWeeks: s.SyncedWeeks,
		Errors:      s.Errors,
	}
}

// WeekResolver supplies the current season and week
type WeekResolver interface {
	CurrentSeason() string
	Resolve(ctx context.Context, season string) (models.SeasonInfo, error)
}

// Policy holds the tunable gatekeeper thresholds
type Policy struct {
	ScoreWindow       time.Duration
	ScheduleLookahead time.Duration
	ScheduleWeekDelay time.Duration
	OddsInterval      time.Duration
}

// DefaultPolicy returns the production thresholds
func DefaultPolicy() Policy {
	return Policy{
		ScoreWindow:       4 * time.Hour,
		ScheduleLookahead: 12 * 24 * time.Hour,
		ScheduleWeekDelay: 500 * time.Millisecond,
		OddsInterval:      time.Hour,
	}
}

// Gatekeeper decides whether one kind of data is due for refresh and, when it
// is, dispatches the sync. A gatekeeper never returns a transport-level error:
// any read failure during the decision skips the sync.
type Gatekeeper interface {
	Name() string
	Run(ctx context.Context) Result
}

// ScoreGatekeeper refreshes scores for the current week while games are in
// progress or about to kick off.
type ScoreGatekeeper struct {
	resolver   WeekResolver
	games      GameStore
	dispatcher *Dispatcher
	clock      clockwork.Clock
	window     time.Duration
}

// NewScoreGatekeeper creates a score gatekeeper
func NewScoreGatekeeper(resolver WeekResolver, games GameStore, dispatcher *Dispatcher, clock clockwork.Clock, policy Policy) *ScoreGatekeeper {
	return &ScoreGatekeeper{
		resolver:   resolver,
		games:      games,
		dispatcher: dispatcher,
		clock:      clock,
		window:     policy.ScoreWindow,
	}
}

func (g *ScoreGatekeeper) Name() string { return string(models.SyncScores) }

// Run checks the current week for live or imminent games
func (g *ScoreGatekeeper) Run(ctx context.Context) Result {
	logger := log.With().Str("kind", g.Name()).Logger()

	info, ok := resolveWeek(ctx, g.resolver, g.Name(), logger)
	if !ok {
		return skipped("could not resolve current week")
	}
	logger = logger.With().Str("season", info.Season).Int("week", info.CurrentWeek).Logger()

	games, err := g.games.ListByWeek(ctx, info.Season, info.CurrentWeek)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load games, skipping score sync")
		metrics.RecordGatekeeperDecision(g.Name(), decisionFailClosed)
		metrics.RecordError("gatekeeper", "games_read")
		return skipped("could not load games for week %d", info.CurrentWeek)
	}

	active := countActive(games, g.clock.Now(), g.window)
	metrics.ActiveGames.Set(float64(active))
	if active == 0 {
		logger.Debug().Msg("No live or imminent games, skipping score sync")
		metrics.RecordGatekeeperDecision(g.Name(), decisionSkip)
		return skipped("no live or upcoming games in week %d", info.CurrentWeek)
	}

	metrics.RecordGatekeeperDecision(g.Name(), decisionSync)
	logger.Info().Int("active_games", active).Msg("Active games found, syncing scores")

	summary := g.dispatcher.DispatchWeeks(ctx, info.Season, []int{info.CurrentWeek}, Flags{Scores: true}, 0)
	return fromSummary(summary, info.Season, info.CurrentWeek,
		fmt.Sprintf("synced scores for week %d", info.CurrentWeek))
}

// countActive counts games that are live, or scheduled to start within
// window of now in either direction
func countActive(games []models.Game, now time.Time, window time.Duration) int {
	n := 0
	for i := range games {
		g := &games[i]
		switch {
		case g.IsLive():
			n++
		case g.IsScheduled():
			diff := g.StartTime.Sub(now)
			if diff >= -window && diff <= window {
				n++
			}
		}
	}
	return n
}

// ScheduleGatekeeper refreshes the whole regular-season schedule while games
// far enough out are still tentative, or when nothing is stored yet.
type ScheduleGatekeeper struct {
	resolver   WeekResolver
	games      GameStore
	dispatcher *Dispatcher
	clock      clockwork.Clock
	lookahead  time.Duration
	weekDelay  time.Duration
}

// NewScheduleGatekeeper creates a schedule gatekeeper
func NewScheduleGatekeeper(resolver WeekResolver, games GameStore, dispatcher *Dispatcher, clock clockwork.Clock, policy Policy) *ScheduleGatekeeper {
	return &ScheduleGatekeeper{
		resolver:   resolver,
		games:      games,
		dispatcher: dispatcher,
		clock:      clock,
		lookahead:  policy.ScheduleLookahead,
		weekDelay:  policy.ScheduleWeekDelay,
	}
}

func (g *ScheduleGatekeeper) Name() string { return string(models.SyncSchedule) }

// Run checks for scheduled games beyond the lookahead horizon
func (g *ScheduleGatekeeper) Run(ctx context.Context) Result {
	seasonID := g.resolver.CurrentSeason()
	logger := log.With().Str("kind", g.Name()).Str("season", seasonID).Logger()

	games, err := g.games.ListBySeason(ctx, seasonID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load games, skipping schedule sync")
		metrics.RecordGatekeeperDecision(g.Name(), decisionFailClosed)
		metrics.RecordError("gatekeeper", "games_read")
		return skipped("could not load games for season %s", seasonID)
	}

	horizon := g.clock.Now().Add(g.lookahead)
	due := len(games) == 0
	for i := range games {
		if games[i].IsScheduled() && games[i].StartTime.After(horizon) {
			due = true
			break
		}
	}

	if !due {
		logger.Debug().Msg("No games beyond lookahead, skipping schedule sync")
		metrics.RecordGatekeeperDecision(g.Name(), decisionSkip)
		return skipped("no scheduled games beyond %s", g.lookahead)
	}

	metrics.RecordGatekeeperDecision(g.Name(), decisionSync)
	logger.Info().Int("stored_games", len(games)).Msg("Syncing full season schedule")

	summary := g.dispatcher.DispatchWeeks(ctx, seasonID, season.AllWeeks(), Flags{Schedules: true}, g.weekDelay)
	return fromSummary(summary, seasonID, 0,
		fmt.Sprintf("synced schedule for %d of %d weeks", summary.SyncedWeeks, season.MaxWeek))
}

// OddsGatekeeper refreshes odds for the current and next week at most once
// per interval, using the persisted odds timestamp of the current week.
type OddsGatekeeper struct {
	resolver   WeekResolver
	syncs      SyncStore
	dispatcher *Dispatcher
	clock      clockwork.Clock
	interval   time.Duration
}

// NewOddsGatekeeper creates an odds gatekeeper
func NewOddsGatekeeper(resolver WeekResolver, syncs SyncStore, dispatcher *Dispatcher, clock clockwork.Clock, policy Policy) *OddsGatekeeper {
	return &OddsGatekeeper{
		resolver:   resolver,
		syncs:      syncs,
		dispatcher: dispatcher,
		clock:      clock,
		interval:   policy.OddsInterval,
	}
}

func (g *OddsGatekeeper) Name() string { return string(models.SyncOdds) }

// Run checks the last odds sync of the current week
func (g *OddsGatekeeper) Run(ctx context.Context) Result {
	logger := log.With().Str("kind", g.Name()).Logger()

	info, ok := resolveWeek(ctx, g.resolver, g.Name(), logger)
	if !ok {
		return skipped("could not resolve current week")
	}
	logger = logger.With().Str("season", info.Season).Int("week", info.CurrentWeek).Logger()

	last, found, err := g.syncs.GetSyncTimestamp(ctx, models.SyncOdds, info.Season, info.CurrentWeek)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read last odds sync, skipping")
		metrics.RecordGatekeeperDecision(g.Name(), decisionFailClosed)
		metrics.RecordError("gatekeeper", "sync_timestamp_read")
		return skipped("could not read last odds sync for week %d", info.CurrentWeek)
	}

	if found {
		if age := g.clock.Since(last); age < g.interval {
			logger.Debug().Dur("age", age).Msg("Odds are fresh, skipping")
			metrics.RecordGatekeeperDecision(g.Name(), decisionSkip)
			return skipped("odds for week %d synced %s ago", info.CurrentWeek, age.Round(time.Second))
		}
	}

	weeks := []int{info.CurrentWeek}
	if info.CurrentWeek < season.MaxWeek {
		weeks = append(weeks, info.CurrentWeek+1)
	}

	metrics.RecordGatekeeperDecision(g.Name(), decisionSync)
	logger.Info().Ints("weeks", weeks).Bool("first_sync", !found).Msg("Syncing odds")

	summary := g.dispatcher.DispatchWeeks(ctx, info.Season, weeks, Flags{Odds: true}, 0)
	return fromSummary(summary, info.Season, info.CurrentWeek,
		fmt.Sprintf("synced odds for weeks %v", weeks))
}

func resolveWeek(ctx context.Context, resolver WeekResolver, name string, logger zerolog.Logger) (models.SeasonInfo, bool) {
	info, err := resolver.Resolve(ctx, resolver.CurrentSeason())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve current week, skipping sync")
		metrics.RecordGatekeeperDecision(name, decisionFailClosed)
		metrics.RecordError("gatekeeper", "resolve_week")
		return models.SeasonInfo{}, false
	}
	metrics.RecordCurrentWeek(info.Season, info.CurrentWeek)
	return info, true
}
