package app

import (
	"context"

	"hubspot-connector/internal/common/cache"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/ratelimit"
	"hubspot-connector/internal/config"
	"hubspot-connector/internal/hubspot"
	"hubspot-connector/internal/oauth2"
	"hubspot-connector/internal/redis"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Cache       cache.Store
	RedisClient *redis.Client
	Flow        *oauth2.Flow
	HubSpot     *hubspot.Client
	RateLimiter ratelimit.Limiter
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	if err := app.initializeCache(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeOAuth(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.HubSpot = hubspot.NewClient(hubspot.Config{APIBaseURL: cfg.HubSpotAPIBaseURL}, app.Logger)

	if err := app.initializeRateLimiter(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initializeOAuth() error {
	ttl := app.Config.StateTTLDuration()

	var opts []oauth2.Option
	if app.Config.StateSigningSecret != "" {
		opts = append(opts, oauth2.WithStateCodec(oauth2.NewJWTStateCodec(app.Config.StateSigningSecret, ttl)))
		app.Logger.Info("OAuth state: signed")
	}

	flow, err := oauth2.NewFlow(oauth2.Config{
		ClientID:     app.Config.HubSpotClientID,
		ClientSecret: app.Config.HubSpotClientSecret,
		RedirectURI:  app.Config.HubSpotRedirectURI,
		AuthURL:      app.Config.HubSpotAuthURL,
		TokenURL:     app.Config.HubSpotTokenURL,
		Scopes:       app.Config.Scopes(),
		UsePKCE:      app.Config.HubSpotUsePKCE,
		StateTTL:     ttl,
	}, app.Cache, app.Logger, opts...)
	if err != nil {
		return err
	}

	app.Flow = flow
	return nil
}

// Shutdown is called once the HTTP server has drained
func (app *App) Shutdown(ctx context.Context) error {
	app.Cleanup()
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing Redis client", logging.Err(err))
		}
		app.RedisClient = nil
	}
}
