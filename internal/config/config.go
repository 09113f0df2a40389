package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	RateLimitPerSecond int
	SeedData           bool
	LogLevel           slog.Level
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        dbURL,
		RedisURL:           getEnv("REDIS_URL", ""),
		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 10),
		SeedData:           getEnvBool("SEED_DATA", false),
		LogLevel:           level,
		ShutdownTimeout:    time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
	}, nil
}

// RateLimitEnabled reports whether write endpoints should be throttled.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != "" && c.RateLimitPerSecond > 0
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
