package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/ratelimit"
	"hubspot-connector/internal/handlers"
	"hubspot-connector/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, rateLimiter ratelimit.Limiter, logger logging.Logger) {
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Routes stay on the top-level router so a wrong method answers 405.
	// Authorize writes a state record per call, so it is the one endpoint limited.
	authorize := http.Handler(http.HandlerFunc(h.AuthorizeHubSpot))
	if rateLimiter != nil {
		authorize = ratelimit.HTTPMiddleware(rateLimiter, ratelimit.IdentityKey, logger)(authorize)
	}
	router.Handle("/integrations/hubspot/authorize", authorize).Methods("POST")

	router.HandleFunc("/integrations/hubspot/oauth2callback", h.HubSpotCallback).Methods("GET")
	router.HandleFunc("/integrations/hubspot/credentials", h.HubSpotCredentials).Methods("POST")
	router.HandleFunc("/integrations/hubspot/load", h.LoadHubSpotItems).Methods("POST")
}
