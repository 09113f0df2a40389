// Package ratelimit throttles write requests per client with a sliding
// window kept in a Redis sorted set.
package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rl:"

// Trims the window, counts what is left and records the request only when
// the count is under the limit. Returns 1 when allowed.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

if redis.call('ZCARD', key) < limit then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, window + 1000)
    return 1
end
return 0
`)

type Limiter struct {
	client *redis.Client
	logger *slog.Logger
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter allows limit requests per key in every one second window.
// A limit of zero or less disables limiting.
func NewLimiter(client *redis.Client, limit int, logger *slog.Logger) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		limit:  limit,
		window: time.Second,
		now:    time.Now,
	}
}

// Limit returns the configured requests per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow reports whether another request for key fits in the current window.
// Redis failures let the request through.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now().UnixMilli()
	result, err := slidingWindowScript.Run(ctx, l.client, []string{keyPrefix + key},
		now, l.window.Milliseconds(), l.limit, strconv.FormatInt(now, 10)+":"+uuid.NewString(),
	).Int64()
	if err != nil {
		l.logger.Error("rate limiter script failed", "error", err, "key", key)
		return true
	}

	if result == 0 {
		l.logger.Debug("rate limited", "key", key, "limit", l.limit)
		return false
	}
	return true
}
