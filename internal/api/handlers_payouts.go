/**
 * @description
 * HTTP handlers for the payout job endpoints: create, list, get, retry and
 * cancel. Validation errors map to 400, missing jobs to 404, state-machine
 * violations to 400, and the optional creation rate limit to 429.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/creatorstream/payout-service/internal/app"
	"github.com/creatorstream/payout-service/internal/domain"
	"github.com/creatorstream/payout-service/internal/store"
)

// createPayoutResponse echoes the new job's identity plus the derived
// per-recipient shares.
type createPayoutResponse struct {
	OK     bool                    `json:"ok"`
	JobID  string                  `json:"jobId"`
	Status string                  `json:"status"`
	Token  string                  `json:"token"`
	Shares []domain.RecipientShare `json:"shares,omitempty"`
}

// CreatePayoutHandler handles POST /api/payouts.
func (h *Handlers) CreatePayoutHandler(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && h.rateLimit.PerMinute > 0 {
		allowed, retryAfter, err := h.rateLimiter.Allow(r.Context(), "payout_create", clientIP(r), h.rateLimit.PerMinute, h.rateLimit.Window)
		if err != nil {
			log.Printf("level=warn component=api endpoint=create_payout msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		} else if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			h.writeError(w, http.StatusTooManyRequests, "Too many payout requests. Please slow down.")
			return
		}
	}

	var req domain.CreatePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_payout outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	job, shares, err := h.payouts.CreatePayout(r.Context(), req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_payout outcome=failed err=%v", err)
		switch {
		case errors.Is(err, app.ErrUnsupportedToken),
			errors.Is(err, app.ErrInvalidAmount),
			errors.Is(err, app.ErrNoRecipients),
			errors.Is(err, app.ErrPercentageSum):
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		default:
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, createPayoutResponse{
		OK:     true,
		JobID:  job.ID,
		Status: job.Status,
		Token:  job.Token,
		Shares: shares,
	})
}

// ListPayoutsHandler handles GET /api/payouts, most-recent-first, capped.
func (h *Handlers) ListPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalPositiveInt(r.URL.Query().Get("limit"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	payouts, err := h.payouts.ListPayouts(r.Context(), limit)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_payouts err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"payouts": payouts})
}

// GetPayoutHandler handles GET /api/payouts/{id}.
func (h *Handlers) GetPayoutHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.payouts.GetPayout(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrPayoutNotFound) {
			h.writeError(w, http.StatusNotFound, "Payout not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_payout job_id=%s err=%v", id, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"payout": job})
}

// RetryPayoutHandler handles PATCH /api/payouts/{id}/retry.
func (h *Handlers) RetryPayoutHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.payouts.RetryPayout(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPayoutNotFound):
			h.writeError(w, http.StatusNotFound, "Payout not found")
		case errors.Is(err, app.ErrPayoutProcessing):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=retry_payout job_id=%s err=%v", id, err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "payout": job})
}

// CancelPayoutHandler handles PATCH /api/payouts/{id}/cancel.
func (h *Handlers) CancelPayoutHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.payouts.CancelPayout(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPayoutNotFound):
			h.writeError(w, http.StatusNotFound, "Payout not found")
		case errors.Is(err, app.ErrPayoutTerminal):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=cancel_payout job_id=%s err=%v", id, err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "payout": job})
}
