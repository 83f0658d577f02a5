package handlers

import (
	"encoding/json"
	"net/http"

	"hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/common/logging"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		h.logger.Error("Failed to write response", err)
	}
}

// sendError maps err to a status code and a caller-safe detail message.
// Server-side failures are logged with their cause.
func (h *Handlers) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("Request failed", err,
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
		)
	}
	h.sendJSON(w, status, errorResponse{Detail: errors.Message(err)})
}
