package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long a denied caller should wait
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed.
// Every call to Allow counts as one request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Health() error
	Name() string
}

// RedisInterface defines the minimal Redis interface needed for rate limiting
type RedisInterface interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
	Health() error
}
