package models

import (
	"fmt"
	"time"
)

// SyncKind identifies which upstream dataset a sync refreshed
type SyncKind string

const (
	SyncScores   SyncKind = "scores"
	SyncSchedule SyncKind = "schedule"
	SyncOdds     SyncKind = "odds"
)

// SyncTimestamp marks the last successful sync of a kind for one (season, week).
// Values never move backwards; a missing row means the unit was never synced.
type SyncTimestamp struct {
	Kind     SyncKind
	Season   string
	Week     int
	SyncedAt time.Time
}

// SyncKey returns the app_config key for a (kind, season, week) triple,
// e.g. last_odds_sync_2025_7.
func SyncKey(kind SyncKind, season string, week int) string {
	return fmt.Sprintf("last_%s_sync_%s_%d", kind, season, week)
}

// Key returns the app_config key this timestamp is stored under
func (s SyncTimestamp) Key() string {
	return SyncKey(s.Kind, s.Season, s.Week)
}

// SeasonInfo is the derived current position within a season
type SeasonInfo struct {
	Season      string `json:"season"`
	CurrentWeek int    `json:"currentWeek"`
}
