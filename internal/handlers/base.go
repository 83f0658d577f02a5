package handlers

import (
	"context"
	"encoding/json"

	"hubspot-connector/internal/circuitbreaker"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/validation"
	"hubspot-connector/internal/models"
	"hubspot-connector/internal/oauth2"
)

// OAuthFlow is the part of oauth2.Flow the HTTP layer drives
type OAuthFlow interface {
	Authorize(ctx context.Context, userID, orgID string) (string, error)
	Callback(ctx context.Context, params oauth2.CallbackParams) error
	Credentials(ctx context.Context, userID, orgID string) (json.RawMessage, error)
}

// ItemLoader turns a credential blob into items
type ItemLoader interface {
	Items(ctx context.Context, rawCredentials string) ([]models.Item, error)
}

// HealthChecker reports on a backing service
type HealthChecker interface {
	Health() error
	Name() string
}

// BreakerReporter is implemented by dependencies that guard HubSpot calls
// with a circuit breaker
type BreakerReporter interface {
	BreakerStats() circuitbreaker.Stats
}

type Handlers struct {
	flow     OAuthFlow
	items    ItemLoader
	cache    HealthChecker
	validate *validation.Validator
	logger   logging.Logger
}

func New(flow OAuthFlow, items ItemLoader, cache HealthChecker, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		flow:     flow,
		items:    items,
		cache:    cache,
		validate: validation.New(),
		logger:   logger.WithFields(logging.String("component", "handlers")),
	}
}
