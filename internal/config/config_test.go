package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SPORTSDATA_API_KEY", "test-key")
	t.Setenv("DATABASE_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.sportsdata.io/v3/nfl", cfg.SportsDataBaseURL)
	assert.Equal(t, time.Hour, cfg.OddsSyncInterval)
	assert.Equal(t, 4*time.Hour, cfg.ScoreSyncWindow)
	assert.Equal(t, 12*24*time.Hour, cfg.ScheduleLookahead)
	assert.Equal(t, 500*time.Millisecond, cfg.ScheduleWeekDelay)
	assert.Equal(t, 24*time.Hour, cfg.TeamsCacheTTL())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.SyncTriggerSecret)
	assert.False(t, cfg.EnableScheduler)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_TRIGGER_SECRET", "cron-secret")
	t.Setenv("SCORE_SYNC_WINDOW", "2h")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cron-secret", cfg.SyncTriggerSecret)
	assert.Equal(t, 2*time.Hour, cfg.ScoreSyncWindow)
	assert.Equal(t, 6543, cfg.DatabasePort)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("SPORTSDATA_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsNonPositivePolicy(t *testing.T) {
	cfg := &Config{
		SportsDataAPIKey:  "k",
		DatabasePassword:  "p",
		OddsSyncInterval:  0,
		ScoreSyncWindow:   time.Hour,
		ScheduleLookahead: time.Hour,
	}
	assert.Error(t, cfg.Validate())

	cfg.OddsSyncInterval = time.Hour
	assert.NoError(t, cfg.Validate())

	cfg.ScheduleWeekDelay = -time.Second
	assert.Error(t, cfg.Validate())
}
