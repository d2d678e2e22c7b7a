package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// SportsDataIO API
	SportsDataAPIKey  string        `envconfig:"SPORTSDATA_API_KEY" required:"true"`
	SportsDataBaseURL string        `envconfig:"SPORTSDATA_BASE_URL" default:"https://api.sportsdata.io/v3/nfl"`
	SportsDataTimeout time.Duration `envconfig:"SPORTSDATA_TIMEOUT" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"pickem"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"pickem_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP
	HTTPPort       int           `envconfig:"HTTP_PORT" default:"8080"`
	MetricsPort    int           `envconfig:"METRICS_PORT" default:"9090"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`

	// Shared secret for the cron trigger endpoints. Empty disables the check.
	SyncTriggerSecret string `envconfig:"SYNC_TRIGGER_SECRET" default:""`

	// Scheduler (cron expressions are evaluated in America/New_York)
	EnableScheduler  bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	OddsSyncCron     string `envconfig:"ODDS_SYNC_CRON" default:"0 * * * *"`
	ScoreSyncCron    string `envconfig:"SCORE_SYNC_CRON" default:"0 9 * * *"`
	ScheduleSyncCron string `envconfig:"SCHEDULE_SYNC_CRON" default:"0 6 * * 3"`

	// Sync policy
	OddsSyncInterval  time.Duration `envconfig:"ODDS_SYNC_INTERVAL" default:"1h"`
	ScoreSyncWindow   time.Duration `envconfig:"SCORE_SYNC_WINDOW" default:"4h"`
	ScheduleLookahead time.Duration `envconfig:"SCHEDULE_LOOKAHEAD" default:"288h"` // 12 days
	ScheduleWeekDelay time.Duration `envconfig:"SCHEDULE_WEEK_DELAY" default:"500ms"`

	// Caching TTL (in seconds)
	CacheTTLTeams int `envconfig:"CACHE_TTL_TEAMS" default:"86400"` // 24 hours
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportsDataAPIKey == "" {
		return fmt.Errorf("SPORTSDATA_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.OddsSyncInterval <= 0 {
		return fmt.Errorf("ODDS_SYNC_INTERVAL must be positive")
	}
	if c.ScoreSyncWindow <= 0 {
		return fmt.Errorf("SCORE_SYNC_WINDOW must be positive")
	}
	if c.ScheduleLookahead <= 0 {
		return fmt.Errorf("SCHEDULE_LOOKAHEAD must be positive")
	}
	if c.ScheduleWeekDelay < 0 {
		return fmt.Errorf("SCHEDULE_WEEK_DELAY must not be negative")
	}

	return nil
}

// TeamsCacheTTL returns the team list cache lifetime
func (c *Config) TeamsCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLTeams) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
