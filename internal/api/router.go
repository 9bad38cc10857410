/**
 * @description
 * This file sets up the HTTP router for the payout service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * standard middleware for logging, panic recovery, and request timeouts.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the payout service. All endpoints
// live under /api to match the dashboard's fetch paths.
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Route("/collaborators", func(r chi.Router) {
			r.Get("/", h.ListCollaboratorsHandler)
			r.Post("/", h.AddCollaboratorHandler)
			r.Patch("/{id}", h.UpdateCollaboratorHandler)
			r.Delete("/{id}", h.DeleteCollaboratorHandler)
		})

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", h.ListPayoutsHandler)
			r.Post("/", h.CreatePayoutHandler)
			r.Get("/{id}", h.GetPayoutHandler)
			r.Patch("/{id}/retry", h.RetryPayoutHandler)
			r.Patch("/{id}/cancel", h.CancelPayoutHandler)
		})
	})

	return r
}
