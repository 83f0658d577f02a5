package ratelimit

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	"hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/common/logging"
)

// ErrLimitExceeded is rendered as the body of a 429 response
var ErrLimitExceeded = errors.RateLimitError("Rate limit exceeded")

type rejection struct {
	Detail string `json:"detail"`
}

// KeyFunc derives the rate limit key for a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// HTTPMiddleware rejects requests over the limit with 429 and a JSON detail.
// Limiter failures are logged and the request is let through.
func HTTPMiddleware(limiter Limiter, keyFunc KeyFunc, logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.WithContext(r.Context()).Error("Rate limit check failed, allowing request", err,
					logging.String("limiter", limiter.Name()),
					logging.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(errors.HTTPStatus(ErrLimitExceeded))
				_ = json.NewEncoder(w).Encode(rejection{Detail: errors.Message(ErrLimitExceeded)})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPKey extracts the client IP, preferring the first X-Forwarded-For hop
func IPKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return "ip:" + strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return "ip:" + realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// IdentityKey keys on the org_id and user_id form fields, falling back to the
// client IP when either is missing.
func IdentityKey(r *http.Request) string {
	orgID := r.FormValue("org_id")
	userID := r.FormValue("user_id")
	if orgID == "" || userID == "" {
		return IPKey(r)
	}
	return fmt.Sprintf("identity:%s:%s", orgID, userID)
}
