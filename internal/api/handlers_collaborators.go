/**
 * @description
 * HTTP handlers for the collaborator split registry endpoints. Missing
 * required fields map to 400, unknown identifiers to 404.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/creatorstream/payout-service/internal/app"
	"github.com/creatorstream/payout-service/internal/domain"
	"github.com/creatorstream/payout-service/internal/store"
)

// ListCollaboratorsHandler handles GET /api/collaborators.
func (h *Handlers) ListCollaboratorsHandler(w http.ResponseWriter, r *http.Request) {
	collaborators, err := h.collaborators.ListCollaborators(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=list_collaborators err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"collaborators": collaborators})
}

// AddCollaboratorHandler handles POST /api/collaborators.
func (h *Handlers) AddCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=add_collaborator outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	c, err := h.collaborators.AddCollaborator(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrCollaboratorNameRequired) || errors.Is(err, app.ErrCollaboratorWalletRequired) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=add_collaborator err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "collaborator": c})
}

// UpdateCollaboratorHandler handles PATCH /api/collaborators/{id}.
func (h *Handlers) UpdateCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.CollaboratorPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Printf("level=warn component=api endpoint=update_collaborator outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	c, err := h.collaborators.UpdateCollaborator(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrCollaboratorNotFound) {
			h.writeError(w, http.StatusNotFound, "Collaborator not found")
			return
		}
		log.Printf("level=error component=api endpoint=update_collaborator id=%s err=%v", id, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "collaborator": c})
}

// DeleteCollaboratorHandler handles DELETE /api/collaborators/{id}.
func (h *Handlers) DeleteCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.collaborators.DeleteCollaborator(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrCollaboratorNotFound) {
			h.writeError(w, http.StatusNotFound, "Collaborator not found")
			return
		}
		log.Printf("level=error component=api endpoint=delete_collaborator id=%s err=%v", id, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
