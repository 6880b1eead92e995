package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "warden:ratelimit"

type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, now: time.Now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limits Limits) (Decision, error) {
	now := l.now()

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, limits.PerMinute},
		{time.Hour, limits.PerHour},
	}

	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		allowed, retry, err := l.checkWindow(ctx, key, w.duration, w.limit, now)
		if err != nil {
			return Decision{}, err
		}
		if !allowed {
			return Decision{Allowed: false, RetryAfter: retry}, nil
		}
	}

	return Decision{Allowed: true}, nil
}

// checkWindow keeps one sorted set per key and window, scored by attempt time.
// Rejected attempts are not recorded.
func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (bool, time.Duration, error) {
	redisKey := l.windowKey(key, window)
	windowStart := now.Add(-window).UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit window: %w", err)
	}

	if zcard.Val() >= int64(limit) {
		retry := window
		if first := oldest.Val(); len(first) > 0 {
			retry = time.Duration(int64(first[0].Score)+int64(window)) - time.Duration(now.UnixNano())
		}
		return false, retry, nil
	}

	nowNano := now.UnixNano()
	pipe = l.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: nowNano})
	pipe.Expire(ctx, redisKey, window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to record attempt: %w", err)
	}
	return true, 0, nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	keys := []string{l.windowKey(key, time.Minute), l.windowKey(key, time.Hour)}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for %s: %w", key, err)
	}
	return nil
}

func (l *RedisRateLimiter) windowKey(identifier string, window time.Duration) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, identifier, window.String())
}
