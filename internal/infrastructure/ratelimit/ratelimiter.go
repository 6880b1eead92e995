package ratelimit

import (
	"context"
	"time"
)

// Limits caps attempts per sliding window. Zero disables a window.
type Limits struct {
	PerMinute int
	PerHour   int
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limits Limits) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// NoopLimiter allows everything. It is used when redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string, Limits) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func (NoopLimiter) Reset(context.Context, string) error { return nil }
