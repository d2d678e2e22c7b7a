package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"nfl_pickem/ingestion/internal/models"
	"nfl_pickem/ingestion/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedResolver struct {
	info models.SeasonInfo
	err  error
}

func (r *fixedResolver) CurrentSeason() string { return r.info.Season }

func (r *fixedResolver) Resolve(_ context.Context, _ string) (models.SeasonInfo, error) {
	return r.info, r.err
}

func week(n int) *fixedResolver {
	return &fixedResolver{info: models.SeasonInfo{Season: "2025", CurrentWeek: n}}
}

func testPolicy() Policy {
	p := DefaultPolicy()
	p.ScheduleWeekDelay = 0
	return p
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 4*time.Hour, p.ScoreWindow)
	assert.Equal(t, 288*time.Hour, p.ScheduleLookahead)
	assert.Equal(t, 500*time.Millisecond, p.ScheduleWeekDelay)
	assert.Equal(t, time.Hour, p.OddsInterval)
}

func TestOddsGatekeeper_FreshTimestampSkips(t *testing.T) {
	h := newHarness()
	h.syncs.Values[models.SyncKey(models.SyncOdds, "2025", 3)] = testNow.Add(-30 * time.Minute)
	gk := NewOddsGatekeeper(week(3), h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestOddsGatekeeper_StaleTimestampSyncs(t *testing.T) {
	h := newHarness()
	h.syncs.Values[models.SyncKey(models.SyncOdds, "2025", 3)] = testNow.Add(-90 * time.Minute)
	gk := NewOddsGatekeeper(week(3), h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.True(t, result.Synced)
	assert.Equal(t, 2, result.SyncedWeeks)
	assert.Equal(t, []string{"odds:3", "odds:4"}, h.provider.Calls)

	ts, ok, err := h.syncs.GetSyncTimestamp(context.Background(), models.SyncOdds, "2025", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ts.Equal(testNow))
}

func TestOddsGatekeeper_AbsentTimestampSyncs(t *testing.T) {
	h := newHarness()
	gk := NewOddsGatekeeper(week(3), h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Synced)
	assert.Equal(t, 1, h.provider.CallCount("odds:3"))
}

func TestOddsGatekeeper_SecondRunWithinIntervalSkips(t *testing.T) {
	h := newHarness()
	gk := NewOddsGatekeeper(week(3), h.syncs, h.disp, h.clock, testPolicy())

	require.True(t, gk.Run(context.Background()).Synced)
	h.clock.Advance(59 * time.Minute)
	assert.False(t, gk.Run(context.Background()).Synced)
	h.clock.Advance(time.Minute)
	assert.True(t, gk.Run(context.Background()).Synced)
}

func TestOddsGatekeeper_FinalWeekHasNoNextWeek(t *testing.T) {
	h := newHarness()
	gk := NewOddsGatekeeper(week(18), h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.Equal(t, 1, result.SyncedWeeks)
	assert.Equal(t, []string{"odds:18"}, h.provider.Calls)
}

func TestOddsGatekeeper_ReadErrorFailsClosed(t *testing.T) {
	h := newHarness()
	h.syncs.GetErr = errors.New("connection reset")
	gk := NewOddsGatekeeper(week(3), h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestOddsGatekeeper_ResolverErrorFailsClosed(t *testing.T) {
	h := newHarness()
	resolver := &fixedResolver{info: models.SeasonInfo{Season: "2025"}, err: errors.New("timeout")}
	gk := NewOddsGatekeeper(resolver, h.syncs, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestScoreGatekeeper_LiveGameSyncs(t *testing.T) {
	h := newHarness()
	h.games.Games = []models.Game{
		testutil.NewGame(1, "2025", 3, models.StatusLive, testNow.Add(-2*time.Hour)),
		testutil.NewGame(2, "2025", 4, models.StatusScheduled, testNow.Add(96*time.Hour)),
	}
	gk := NewScoreGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Synced)
	assert.Equal(t, []string{"scores:3"}, h.provider.Calls)
}

func TestScoreGatekeeper_Window(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		status models.GameStatus
		want   bool
	}{
		{"kickoff in 3h", 3 * time.Hour, models.StatusScheduled, true},
		{"kickoff exactly 4h out", 4 * time.Hour, models.StatusScheduled, true},
		{"kickoff in 5h", 5 * time.Hour, models.StatusScheduled, false},
		{"kicked off 4h ago, status lagging", -4 * time.Hour, models.StatusScheduled, true},
		{"kicked off 6h ago, status lagging", -6 * time.Hour, models.StatusScheduled, false},
		{"final within window", -time.Hour, models.StatusFinal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.games.Games = []models.Game{testutil.NewGame(1, "2025", 3, tt.status, testNow.Add(tt.offset))}
			gk := NewScoreGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

			result := gk.Run(context.Background())

			assert.True(t, result.Success)
			assert.Equal(t, tt.want, result.Synced)
		})
	}
}

func TestScoreGatekeeper_ReadErrorFailsClosed(t *testing.T) {
	h := newHarness()
	h.games.ListErr = errors.New("connection refused")
	gk := NewScoreGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestScheduleGatekeeper_FarFutureGameSyncsAllWeeks(t *testing.T) {
	h := newHarness()
	h.games.Games = []models.Game{
		testutil.NewGame(1, "2025", 3, models.StatusFinal, testNow.Add(-time.Hour)),
		testutil.NewGame(2, "2025", 17, models.StatusScheduled, testNow.Add(13*24*time.Hour)),
	}
	h.provider.FailWeeks = map[int]error{
		5:  errors.New("upstream 500"),
		12: errors.New("upstream 500"),
	}
	gk := NewScheduleGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.True(t, result.Synced)
	assert.Equal(t, 16, result.SyncedWeeks)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "week 5")
	assert.Contains(t, result.Errors[1], "week 12")
	assert.Equal(t, 1, h.provider.CallCount("schedule:1"))
	assert.Equal(t, 1, h.provider.CallCount("schedule:18"))
}

func TestScheduleGatekeeper_NothingBeyondLookaheadSkips(t *testing.T) {
	h := newHarness()
	h.games.Games = []models.Game{
		testutil.NewGame(1, "2025", 4, models.StatusScheduled, testNow.Add(11*24*time.Hour)),
	}
	gk := NewScheduleGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestScheduleGatekeeper_EmptySeasonBootstraps(t *testing.T) {
	h := newHarness()
	gk := NewScheduleGatekeeper(week(1), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Synced)
	assert.Equal(t, 18, result.SyncedWeeks)
}

func TestScheduleGatekeeper_ReadErrorFailsClosed(t *testing.T) {
	h := newHarness()
	h.games.ListErr = errors.New("connection refused")
	gk := NewScheduleGatekeeper(week(3), h.games, h.disp, h.clock, testPolicy())

	result := gk.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Synced)
	assert.Empty(t, h.provider.Calls)
}

func TestGatekeeperNames(t *testing.T) {
	h := newHarness()
	var gks []Gatekeeper = []Gatekeeper{
		NewScoreGatekeeper(week(1), h.games, h.disp, h.clock, testPolicy()),
		NewScheduleGatekeeper(week(1), h.games, h.disp, h.clock, testPolicy()),
		NewOddsGatekeeper(week(1), h.syncs, h.disp, h.clock, testPolicy()),
	}
	names := make([]string, 0, len(gks))
	for _, gk := range gks {
		names = append(names, gk.Name())
	}
	assert.Equal(t, []string{"scores", "schedule", "odds"}, names)
}
