package season

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"nfl_pickem/ingestion/internal/models"

	"github.com/jonboulle/clockwork"
)

// Regular-season week bounds
const (
	FirstWeek = 1
	MaxWeek   = 18
)

var (
	// ErrInvalidWeek is returned for weeks outside the regular season
	ErrInvalidWeek = errors.New("week must be between 1 and 18")
	// ErrInvalidSeason is returned for season identifiers that are not a year
	ErrInvalidSeason = errors.New("season must be a four-digit year")
)

// ValidateWeek checks that week is a regular-season week
func ValidateWeek(week int) error {
	if week < FirstWeek || week > MaxWeek {
		return fmt.Errorf("%w: got %d", ErrInvalidWeek, week)
	}
	return nil
}

// ValidateSeason checks that season is a four-digit starting year
func ValidateSeason(season string) error {
	if len(season) != 4 {
		return fmt.Errorf("%w: got %q", ErrInvalidSeason, season)
	}
	if _, err := strconv.Atoi(season); err != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidSeason, season)
	}
	return nil
}

// AllWeeks returns 1..MaxWeek in order
func AllWeeks() []int {
	weeks := make([]int, 0, MaxWeek)
	for w := FirstWeek; w <= MaxWeek; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

// CurrentSeason returns the season a given instant belongs to. January and
// February games are the previous season's postseason.
func CurrentSeason(now time.Time) string {
	et := now.In(Eastern)
	year := et.Year()
	if et.Month() <= time.February {
		year--
	}
	return strconv.Itoa(year)
}

type weekState struct {
	open        bool
	latestStart time.Time
}

// CurrentWeek computes the current week from a season's games.
//
// The lowest week holding a game that is not final, or that has not started
// yet, is current. When every known week is complete, the last one stays
// current until the Tuesday cutover after its latest kickoff, then the next
// week is reported (capped at MaxWeek). No games at all means week 1.
func CurrentWeek(games []models.Game, now time.Time) int {
	weeks := make(map[int]*weekState)
	for i := range games {
		g := &games[i]
		if g.Week < FirstWeek || g.Week > MaxWeek {
			continue
		}
		ws, ok := weeks[g.Week]
		if !ok {
			ws = &weekState{}
			weeks[g.Week] = ws
		}
		if !g.IsFinal() || g.StartTime.After(now) {
			ws.open = true
		}
		if g.StartTime.After(ws.latestStart) {
			ws.latestStart = g.StartTime
		}
	}

	if len(weeks) == 0 {
		return FirstWeek
	}

	order := make([]int, 0, len(weeks))
	for w := range weeks {
		order = append(order, w)
	}
	sort.Ints(order)

	for _, w := range order {
		if weeks[w].open {
			return w
		}
	}

	last := order[len(order)-1]
	if last < MaxWeek && CutoverPassedSince(weeks[last].latestStart, now) {
		return last + 1
	}
	return last
}

// GameLister reads every stored game of a season
type GameLister interface {
	ListBySeason(ctx context.Context, season string) ([]models.Game, error)
}

// Resolver computes SeasonInfo from persisted games. It keeps no state
// between calls; every Resolve reads the store again.
type Resolver struct {
	games GameLister
	clock clockwork.Clock
}

// NewResolver creates a resolver reading games from the given store
func NewResolver(games GameLister, clock clockwork.Clock) *Resolver {
	return &Resolver{
		games: games,
		clock: clock,
	}
}

// CurrentSeason returns the season for the resolver's clock
func (r *Resolver) CurrentSeason() string {
	return CurrentSeason(r.clock.Now())
}

// Resolve returns the current week for season
func (r *Resolver) Resolve(ctx context.Context, season string) (models.SeasonInfo, error) {
	games, err := r.games.ListBySeason(ctx, season)
	if err != nil {
		return models.SeasonInfo{}, fmt.Errorf("failed to load games for season %s: %w", season, err)
	}

	return models.SeasonInfo{
		Season:      season,
		CurrentWeek: CurrentWeek(games, r.clock.Now()),
	}, nil
}
