package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"hubspot-connector/internal/handlers"
	"hubspot-connector/internal/server"
)

// Handler builds the router with all handlers configured
func (app *App) Handler() http.Handler {
	h := handlers.New(app.Flow, app.HubSpot, app.Cache, app.Logger)

	router := mux.NewRouter()
	SetupRoutes(router, h, app.RateLimiter, app.Logger)
	return router
}

// NewServer wraps Handler in an HTTP server on the configured port
func (app *App) NewServer() *server.Server {
	return server.New(app.Handler(), app.Config.Port, app.Config.TLSCertFile, app.Config.TLSKeyFile)
}
