package handlers

import (
	"net/http"

	"hubspot-connector/internal/circuitbreaker"
)

type healthResponse struct {
	Status   string                 `json:"status"`
	Cache    string                 `json:"cache"`
	Breakers []circuitbreaker.Stats `json:"breakers,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// HealthCheck reports the cache backend and breaker state
// @Summary Service health
// @Description Reports the cache backend, whether it is reachable, and the state of the HubSpot circuit breakers
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Cache: h.cache.Name(), Breakers: h.breakerStats()}

	if err := h.cache.Health(); err != nil {
		h.logger.WithContext(r.Context()).Error("Cache health check failed", err)
		resp.Status = "unhealthy"
		resp.Error = "cache unavailable"
		h.sendJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handlers) breakerStats() []circuitbreaker.Stats {
	var stats []circuitbreaker.Stats
	for _, dep := range []interface{}{h.flow, h.items} {
		if reporter, ok := dep.(BreakerReporter); ok {
			stats = append(stats, reporter.BreakerStats())
		}
	}
	return stats
}
