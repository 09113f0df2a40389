package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewLimiter(client, limit, logger), mr
}

func TestLimiter_AllowsWithinLimit(t *testing.T) {
	l, _ := setupTestLimiter(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(ctx, "10.0.0.1"), "request %d", i+1)
	}
}

func TestLimiter_BlocksOverLimit(t *testing.T) {
	l, _ := setupTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "10.0.0.1")
	}
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
}

func TestLimiter_WindowSlides(t *testing.T) {
	l, _ := setupTestLimiter(t, 2)
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.False(t, l.Allow(ctx, "10.0.0.1"))

	l.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	assert.True(t, l.Allow(ctx, "10.0.0.1"))
}

func TestLimiter_ZeroLimitAllowsAll(t *testing.T) {
	l, _ := setupTestLimiter(t, 0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		assert.True(t, l.Allow(ctx, "10.0.0.1"))
	}
}

func TestLimiter_KeysAreIsolated(t *testing.T) {
	l, _ := setupTestLimiter(t, 1)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.2"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	l, mr := setupTestLimiter(t, 1)
	mr.Close()

	assert.True(t, l.Allow(context.Background(), "10.0.0.1"))
	assert.True(t, l.Allow(context.Background(), "10.0.0.1"))
}
