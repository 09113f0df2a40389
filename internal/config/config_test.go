package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "RATE_LIMIT_PER_SECOND",
		"SEED_DATA", "LOG_LEVEL", "SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/newsletter")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost/newsletter", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 10, cfg.RateLimitPerSecond)
	assert.False(t, cfg.SeedData)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.RateLimitEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/newsletter")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RATE_LIMIT_PER_SECOND", "3")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RateLimitPerSecond)
	assert.True(t, cfg.SeedData)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.RateLimitEnabled())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/newsletter")
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/newsletter")
	t.Setenv("RATE_LIMIT_PER_SECOND", "lots")
	t.Setenv("SEED_DATA", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RateLimitPerSecond)
	assert.False(t, cfg.SeedData)
}

func TestRateLimitEnabled_ZeroLimit(t *testing.T) {
	cfg := &Config{RedisURL: "redis://localhost:6379", RateLimitPerSecond: 0}
	assert.False(t, cfg.RateLimitEnabled())
}
