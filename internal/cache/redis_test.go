package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "pickem:teams", Key("teams"))
	assert.Equal(t, "pickem:teams:2025", Key("teams", "2025"))
	assert.Equal(t, "pickem:", Key())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	port := os.Getenv("TEST_REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	c, err := NewRedisCache(Config{Host: host, Port: port})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	key := Key("test", time.Now().Format(time.RFC3339Nano))
	defer c.Delete(ctx, key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte(`["KC"]`), time.Minute))

	val, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["KC"]`, string(val))
}
