package ratelimit

import (
	"context"
	"fmt"
)

// distributedLimiter implements Redis-backed distributed rate limiting
type distributedLimiter struct {
	config      Config
	redisClient RedisInterface
}

// NewDistributedLimiter creates a limiter whose counters live in Redis
func NewDistributedLimiter(config Config, redisClient RedisInterface) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required for distributed rate limiter")
	}

	return &distributedLimiter{
		config:      config,
		redisClient: redisClient,
	}, nil
}

// Allow records the request in the key's sliding window. Redis errors are
// returned to the caller, which decides whether to fail open.
func (rl *distributedLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if !rl.config.Enabled {
		return Decision{Allowed: true, Limit: rl.config.Limit, Remaining: rl.config.Limit}, nil
	}

	allowed, current, err := rl.redisClient.CheckRateLimit(ctx, rl.config.KeyPrefix+key, rl.config.Limit, rl.config.Window)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{Allowed: allowed, Limit: rl.config.Limit}
	if allowed {
		decision.Remaining = rl.config.Limit - current - 1
	} else {
		decision.RetryAfter = rl.config.Window
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	return decision, nil
}

func (rl *distributedLimiter) Health() error {
	return rl.redisClient.Health()
}

func (rl *distributedLimiter) Name() string {
	return "redis"
}
