package syncer

import (
	"context"
	"fmt"

	"nfl_pickem/ingestion/internal/season"

	"github.com/rs/zerolog/log"
)

// GamesRequest asks for an unconditional dispatch of one (season, week)
type GamesRequest struct {
	Season string `json:"season"`
	Week   int    `json:"week"`
	Flags
}

// ManualRequest asks for a full refresh of a week; zero values mean current
type ManualRequest struct {
	Season string `json:"season,omitempty"`
	Week   int    `json:"week,omitempty"`
}

// Manual runs dispatches that bypass the gatekeepers
type Manual struct {
	resolver   WeekResolver
	dispatcher *Dispatcher
}

// NewManual creates a manual sync runner
func NewManual(resolver WeekResolver, dispatcher *Dispatcher) *Manual {
	return &Manual{
		resolver:   resolver,
		dispatcher: dispatcher,
	}
}

// SyncGames dispatches exactly the requested week with the requested flags.
// Validation failures are returned as errors; fetch failures are in-band.
func (m *Manual) SyncGames(ctx context.Context, req GamesRequest) (Result, error) {
	if err := season.ValidateSeason(req.Season); err != nil {
		return Result{}, err
	}
	if err := season.ValidateWeek(req.Week); err != nil {
		return Result{}, err
	}
	if !req.Scores && !req.Schedules && !req.Odds {
		return Result{
			Success: true,
			Season:  req.Season,
			Week:    req.Week,
			Message: "nothing selected to sync",
		}, nil
	}

	summary := m.dispatcher.DispatchWeeks(ctx, req.Season, []int{req.Week}, req.Flags, 0)
	return fromSummary(summary, req.Season, req.Week,
		fmt.Sprintf("synced season %s week %d", req.Season, req.Week)), nil
}

// SyncWeek refreshes every dataset for the given week, filling in the
// current season and week when they are omitted.
func (m *Manual) SyncWeek(ctx context.Context, req ManualRequest) (Result, error) {
	seasonID := req.Season
	if seasonID == "" {
		seasonID = m.resolver.CurrentSeason()
	}
	if err := season.ValidateSeason(seasonID); err != nil {
		return Result{}, err
	}

	week := req.Week
	if week == 0 {
		info, err := m.resolver.Resolve(ctx, seasonID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to resolve current week: %w", err)
		}
		week = info.CurrentWeek
	}

	log.Info().Str("season", seasonID).Int("week", week).Msg("Manual sync requested")

	return m.SyncGames(ctx, GamesRequest{Season: seasonID, Week: week, Flags: AllFlags})
}
