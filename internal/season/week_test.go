package season

import (
	"context"
	"errors"
	"testing"
	"time"

	"nfl_pickem/ingestion/internal/models"
	"nfl_pickem/ingestion/internal/testutil"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Sunday kickoffs for weeks 1-4 of the 2025 season
	week1Kickoff = time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	week3Kickoff = time.Date(2025, 9, 21, 17, 0, 0, 0, time.UTC)
	week4Kickoff = time.Date(2025, 9, 25, 0, 15, 0, 0, time.UTC) // Wed night UTC, Thu in ET
)

func finalWeeks(through int) []models.Game {
	var games []models.Game
	id := 1
	for w := 1; w <= through; w++ {
		kickoff := week1Kickoff.AddDate(0, 0, 7*(w-1))
		for i := 0; i < 2; i++ {
			games = append(games, testutil.NewGame(id, "2025", w, models.StatusFinal, kickoff.Add(time.Duration(i)*3*time.Hour)))
			id++
		}
	}
	return games
}

func TestCurrentWeek_NoGames(t *testing.T) {
	assert.Equal(t, 1, CurrentWeek(nil, week1Kickoff))
}

func TestCurrentWeek_AdvancesAfterCutover(t *testing.T) {
	games := finalWeeks(3)
	now := time.Date(2025, 9, 23, 17, 0, 0, 0, time.UTC) // Tue 13:00 EDT, 2+ days after week 3

	assert.Equal(t, 4, CurrentWeek(games, now))
}

func TestCurrentWeek_HoldsBeforeCutover(t *testing.T) {
	games := finalWeeks(3)
	now := time.Date(2025, 9, 22, 23, 0, 0, 0, time.UTC) // Mon 19:00 EDT

	assert.Equal(t, 3, CurrentWeek(games, now))
}

func TestCurrentWeek_ScheduledNextWeekBeforeCutover(t *testing.T) {
	games := finalWeeks(3)
	games = append(games, testutil.NewGame(100, "2025", 4, models.StatusScheduled, week4Kickoff))
	now := time.Date(2025, 9, 22, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, CurrentWeek(games, now))
}

func TestCurrentWeek_LowestOpenWeekWins(t *testing.T) {
	games := finalWeeks(3)
	games[len(games)-1].Status = models.StatusLive
	games = append(games, testutil.NewGame(100, "2025", 4, models.StatusScheduled, week4Kickoff))

	assert.Equal(t, 3, CurrentWeek(games, week3Kickoff.Add(4*time.Hour)))
}

func TestCurrentWeek_FinalButFutureStartIsOpen(t *testing.T) {
	games := finalWeeks(2)
	games = append(games, testutil.NewGame(100, "2025", 3, models.StatusFinal, week3Kickoff))
	now := week3Kickoff.Add(-time.Hour)

	assert.Equal(t, 3, CurrentWeek(games, now))
}

func TestCurrentWeek_SeasonComplete(t *testing.T) {
	games := finalWeeks(MaxWeek)
	now := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, MaxWeek, CurrentWeek(games, now))
}

func TestCurrentWeek_IgnoresOutOfRangeWeeks(t *testing.T) {
	games := []models.Game{
		testutil.NewGame(1, "2025", 0, models.StatusScheduled, week1Kickoff.AddDate(0, 0, -14)),
		testutil.NewGame(2, "2025", 19, models.StatusScheduled, week1Kickoff.AddDate(0, 4, 0)),
	}
	assert.Equal(t, 1, CurrentWeek(games, week1Kickoff))
}

func TestCurrentWeek_Idempotent(t *testing.T) {
	games := finalWeeks(5)
	games = append(games, testutil.NewGame(100, "2025", 6, models.StatusScheduled, week1Kickoff.AddDate(0, 0, 35)))
	now := week1Kickoff.AddDate(0, 0, 30)

	first := CurrentWeek(games, now)
	second := CurrentWeek(games, now)
	assert.Equal(t, first, second)
	assert.Equal(t, 6, first)
}

func TestCurrentSeason(t *testing.T) {
	assert.Equal(t, "2025", CurrentSeason(time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025", CurrentSeason(time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2026", CurrentSeason(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	// New Year's Eve in New York is still December
	assert.Equal(t, "2025", CurrentSeason(time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)))
}

func TestValidateWeek(t *testing.T) {
	assert.NoError(t, ValidateWeek(1))
	assert.NoError(t, ValidateWeek(18))
	assert.ErrorIs(t, ValidateWeek(0), ErrInvalidWeek)
	assert.ErrorIs(t, ValidateWeek(19), ErrInvalidWeek)
	assert.Len(t, AllWeeks(), 18)
}

func TestValidateSeason(t *testing.T) {
	assert.NoError(t, ValidateSeason("2025"))
	assert.ErrorIs(t, ValidateSeason(""), ErrInvalidSeason)
	assert.ErrorIs(t, ValidateSeason("25"), ErrInvalidSeason)
	assert.ErrorIs(t, ValidateSeason("2025REG"), ErrInvalidSeason)
	assert.ErrorIs(t, ValidateSeason("20x5"), ErrInvalidSeason)
}

func TestResolver_Resolve(t *testing.T) {
	store := &testutil.GameStore{Games: finalWeeks(3)}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 22, 23, 0, 0, 0, time.UTC))
	resolver := NewResolver(store, clock)

	info, err := resolver.Resolve(context.Background(), "2025")
	require.NoError(t, err)
	assert.Equal(t, models.SeasonInfo{Season: "2025", CurrentWeek: 3}, info)

	// Crossing the cutover changes the answer without any cached state
	clock.Advance(18 * time.Hour)
	info, err = resolver.Resolve(context.Background(), "2025")
	require.NoError(t, err)
	assert.Equal(t, 4, info.CurrentWeek)
	assert.Equal(t, 2, store.ListCalls)
}

func TestResolver_ResolveStoreError(t *testing.T) {
	store := &testutil.GameStore{ListErr: errors.New("connection refused")}
	resolver := NewResolver(store, clockwork.NewFakeClock())

	_, err := resolver.Resolve(context.Background(), "2025")
	assert.Error(t, err)
}
