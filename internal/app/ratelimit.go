package app

import (
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/ratelimit"
)

// initializeRateLimiter shares counters through Redis when it is connected and
// keeps them in process otherwise.
func (app *App) initializeRateLimiter() error {
	if !app.Config.RateLimitEnabled {
		app.Logger.Info("Rate Limiting: Disabled")
		return nil
	}

	limit, window := app.Config.RateLimit()
	rateLimitConfig := ratelimit.DefaultConfig()
	rateLimitConfig.Limit = limit
	rateLimitConfig.Window = window
	rateLimitConfig.KeyPrefix = "ratelimit:authorize:"

	var (
		limiter ratelimit.Limiter
		err     error
	)
	if app.RedisClient != nil {
		limiter, err = ratelimit.NewDistributedLimiter(rateLimitConfig, app.RedisClient)
	} else {
		limiter, err = ratelimit.NewLocalLimiter(rateLimitConfig)
	}
	if err != nil {
		return err
	}

	app.RateLimiter = limiter
	app.Logger.Info("Rate Limiting: Enabled",
		logging.String("backend", limiter.Name()),
		logging.Int("limit", limit),
		logging.Duration("window", window),
	)
	return nil
}
