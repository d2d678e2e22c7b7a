package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nfl_pickem/ingestion/internal/cache"
	"nfl_pickem/ingestion/internal/client"
	"nfl_pickem/ingestion/internal/config"
	"nfl_pickem/ingestion/internal/handlers"
	"nfl_pickem/ingestion/internal/metrics"
	"nfl_pickem/ingestion/internal/repository"
	"nfl_pickem/ingestion/internal/scheduler"
	"nfl_pickem/ingestion/internal/season"
	"nfl_pickem/ingestion/internal/syncer"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NFL pick'em sync worker")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
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
	log.Info().Msg("Database connection established")

	// Initialize SportsDataIO client
	sdio := client.NewClient(cfg.SportsDataBaseURL, cfg.SportsDataAPIKey, cfg.SportsDataTimeout)

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			sdio.WithCache(redisCache, cfg.TeamsCacheTTL())
			log.Info().Msg("Redis cache connected")
		}
	}

	// Sync core
	clock := clockwork.NewRealClock()
	policy := syncer.Policy{
		ScoreWindow:       cfg.ScoreSyncWindow,
		ScheduleLookahead: cfg.ScheduleLookahead,
		ScheduleWeekDelay: cfg.ScheduleWeekDelay,
		OddsInterval:      cfg.OddsSyncInterval,
	}
	resolver := season.NewResolver(db.Games, clock)
	dispatcher := syncer.NewDispatcher(sdio, db.Games, db.Teams, db.Odds, db.Config, clock)

	scores := syncer.NewScoreGatekeeper(resolver, db.Games, dispatcher, clock, policy)
	schedule := syncer.NewScheduleGatekeeper(resolver, db.Games, dispatcher, clock, policy)
	odds := syncer.NewOddsGatekeeper(resolver, db.Config, dispatcher, clock, policy)

	// Start metrics HTTP server
	go startMetricsServer(cfg.MetricsPort)
	go recordRuntimeStats(ctx, db)

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.NewScheduler(cfg.RequestTimeout,
			scheduler.Job{Spec: cfg.OddsSyncCron, Gatekeeper: odds},
			scheduler.Job{Spec: cfg.ScoreSyncCron, Gatekeeper: scores},
			scheduler.Job{Spec: cfg.ScheduleSyncCron, Gatekeeper: schedule},
		)
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	handlers.NewHandler(handlers.Deps{
		Scores:        scores,
		Schedule:      schedule,
		Odds:          odds,
		Manual:        syncer.NewManual(resolver, dispatcher),
		Resolver:      resolver,
		DB:            db,
		TriggerSecret: cfg.SyncTriggerSecret,
	}).Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal, gracefully shutting down...")
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Graceful shutdown failed")
		_ = srv.Close()
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// recordRuntimeStats keeps the uptime and pool gauges fresh
func recordRuntimeStats(ctx context.Context, db *repository.Database) {
	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			db.RecordPoolStats()
		case <-ctx.Done():
			return
		}
	}
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
