// Package ratelimit throttles callers with sliding windows kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config sets the per-window limits. A zero limit disables that window.
type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter records each hit in a sorted set per window, scored by
// its timestamp, so every instance sharing the Redis sees the same count.
type RedisRateLimiter struct {
	client *redis.Client
	config Config
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string, config Config) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		config: config,
		prefix: prefix,
		now:    time.Now,
	}
}

func (l *RedisRateLimiter) windows() []struct {
	duration time.Duration
	limit    int
} {
	return []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, l.config.RequestsPerMinute},
		{time.Hour, l.config.RequestsPerHour},
	}
}

// Allow records a hit for key and reports whether it fits every window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	for _, window := range l.windows() {
		if window.limit <= 0 {
			continue
		}
		allowed, err := l.checkWindow(ctx, key, window.duration, window.limit, now)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (bool, error) {
	redisKey := l.getKey(key, window)
	windowStart := now.Add(-window).UnixNano()
	nowNano := now.UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: nowNano})
	pipe.Expire(ctx, redisKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return zcard.Val() < int64(limit), nil
}

// Reset drops every window recorded for key.
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	keys := make([]string, 0, 2)
	for _, window := range l.windows() {
		keys = append(keys, l.getKey(key, window.duration))
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", l.prefix, identifier, window.String())
}
