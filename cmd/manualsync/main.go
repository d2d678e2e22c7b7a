// Command manualsync runs a one-off sync for a single week outside the
// gatekeepers. With no dataset flags it refreshes everything for the week.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"nfl_pickem/ingestion/internal/client"
	"nfl_pickem/ingestion/internal/config"
	"nfl_pickem/ingestion/internal/repository"
	"nfl_pickem/ingestion/internal/season"
	"nfl_pickem/ingestion/internal/syncer"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

func main() {
	seasonFlag := flag.String("season", "", "season year (defaults to the current season)")
	weekFlag := flag.Int("week", 0, "week 1-18 (defaults to the current week)")
	scores := flag.Bool("scores", false, "sync scores")
	schedules := flag.Bool("schedule", false, "sync the schedule")
	odds := flag.Bool("odds", false, "sync odds")
	flag.Parse()

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	clock := clockwork.NewRealClock()
	sdio := client.NewClient(cfg.SportsDataBaseURL, cfg.SportsDataAPIKey, cfg.SportsDataTimeout)
	resolver := season.NewResolver(db.Games, clock)
	manual := syncer.NewManual(resolver, syncer.NewDispatcher(sdio, db.Games, db.Teams, db.Odds, db.Config, clock))

	flags := syncer.Flags{Scores: *scores, Schedules: *schedules, Odds: *odds}

	var result syncer.Result
	if flags == (syncer.Flags{}) {
		result, err = manual.SyncWeek(ctx, syncer.ManualRequest{Season: *seasonFlag, Week: *weekFlag})
	} else {
		seasonID, week := *seasonFlag, *weekFlag
		if seasonID == "" {
			seasonID = resolver.CurrentSeason()
		}
		if week == 0 {
			info, resolveErr := resolver.Resolve(ctx, seasonID)
			if resolveErr != nil {
				db.Close()
				log.Fatal().Err(resolveErr).Msg("Failed to resolve current week")
			}
			week = info.CurrentWeek
		}
		result, err = manual.SyncGames(ctx, syncer.GamesRequest{Season: seasonID, Week: week, Flags: flags})
	}
	if err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("Manual sync failed")
	}

	log.Info().
		Str("season", result.Season).
		Int("week", result.Week).
		Int("synced_weeks", result.SyncedWeeks).
		Strs("errors", result.Errors).
		Str("message", result.Message).
		Msg("Manual sync complete")

	if len(result.Errors) > 0 {
		db.Close()
		os.Exit(1)
	}
}
