/**
 * @description
 * This file contains the shared handler state and response helpers for the
 * payout service's API endpoints. Handlers parse incoming requests, call the
 * appropriate service methods, and map service errors onto HTTP statuses.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app: For the payout and collaborator services.
 */

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/creatorstream/payout-service/internal/app"
)

// PayoutRateLimit configures the optional per-client limit on payout creation.
type PayoutRateLimit struct {
	PerMinute int
	Window    time.Duration
}

// RateLimiter gates payout creation per client within a fixed window.
// app.RedisPayoutRateLimiter satisfies it; a nil limiter disables gating.
type RateLimiter interface {
	Allow(ctx context.Context, scope, subject string, limit int, window time.Duration) (allowed bool, retryAfterSeconds int, err error)
}

// Handlers holds the application services that handlers use.
type Handlers struct {
	payouts       *app.PayoutService
	collaborators *app.CollaboratorService
	rateLimiter   RateLimiter
	rateLimit     PayoutRateLimit
}

// NewHandlers creates a new Handlers instance. The rate limiter may be nil,
// which disables limiting.
func NewHandlers(payouts *app.PayoutService, collaborators *app.CollaboratorService, limiter RateLimiter, limit PayoutRateLimit) *Handlers {
	if limit.Window <= 0 {
		limit.Window = time.Minute
	}
	return &Handlers{
		payouts:       payouts,
		collaborators: collaborators,
		rateLimiter:   limiter,
		rateLimit:     limit,
	}
}

// HealthHandler reports service liveness.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// parseOptionalPositiveInt parses a query parameter that must be a positive
// integer when present, falling back to def otherwise.
func parseOptionalPositiveInt(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// clientIP extracts the caller's address for rate-limiting purposes.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
