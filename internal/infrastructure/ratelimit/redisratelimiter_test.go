package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisRateLimiter_PerMinute(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	limits := Limits{PerMinute: 3}

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "login:1.2.3.4", limits)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d should be allowed", i+1)
	}

	d, err := limiter.Allow(ctx, "login:1.2.3.4", limits)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)

	d, err = limiter.Allow(ctx, "login:5.6.7.8", limits)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "keys are independent")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	d, err := limiter.Allow(ctx, "k", Limits{PerMinute: 1})
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "k", Limits{PerMinute: 1})
	require.NoError(t, err)
	require.False(t, d.Allowed)

	now = now.Add(61 * time.Second)
	d, err = limiter.Allow(ctx, "k", Limits{PerMinute: 1})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	limits := Limits{PerMinute: 1, PerHour: 5}

	_, err := limiter.Allow(ctx, "k", limits)
	require.NoError(t, err)
	d, err := limiter.Allow(ctx, "k", limits)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	require.NoError(t, limiter.Reset(ctx, "k"))
	d, err = limiter.Allow(ctx, "k", limits)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestNoopLimiter(t *testing.T) {
	d, err := NoopLimiter{}.Allow(context.Background(), "k", Limits{PerMinute: 0})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
