/**
 * @description
 * This file contains the business logic for the collaborator split registry:
 * the set of collaborators and their percentage shares used to derive payout
 * recipients. The registry only validates presence of name and wallet; the
 * dashboard enforces the shares-sum-to-100 convention before submission.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/google/uuid: For collaborator identifiers.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/creatorstream/payout-service/internal/domain"
	"github.com/creatorstream/payout-service/internal/store"
)

var (
	ErrCollaboratorNameRequired   = errors.New("collaborator name is required")
	ErrCollaboratorWalletRequired = errors.New("collaborator wallet is required")
)

// CollaboratorService provides the core business logic for the split registry.
type CollaboratorService struct {
	repo store.Repository
	now  func() int64 // epoch millis, swappable in tests
}

// NewCollaboratorService creates a new collaborator service instance.
func NewCollaboratorService(repo store.Repository, nowMs func() int64) *CollaboratorService {
	return &CollaboratorService{repo: repo, now: nowMs}
}

// ListCollaborators returns all collaborators in storage order.
func (s *CollaboratorService) ListCollaborators(ctx context.Context) ([]domain.Collaborator, error) {
	return s.repo.ListCollaborators(ctx)
}

// AddCollaborator validates and persists a new collaborator. Percentage
// defaults to 0 when omitted; the wallet string is opaque and not format
// checked.
func (s *CollaboratorService) AddCollaborator(ctx context.Context, req domain.CreateCollaboratorRequest) (*domain.Collaborator, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrCollaboratorNameRequired
	}
	if strings.TrimSpace(req.Wallet) == "" {
		return nil, ErrCollaboratorWalletRequired
	}

	var percentage float64
	if req.Percentage != nil {
		percentage = *req.Percentage
	}

	c := &domain.Collaborator{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Wallet:     req.Wallet,
		Percentage: percentage,
		Role:       req.Role,
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateCollaborator(ctx, c); err != nil {
		return nil, err
	}

	log.Printf("level=info component=collaborators op=add id=%s name=%s percentage=%.2f", c.ID, c.Name, c.Percentage)
	return c, nil
}

// UpdateCollaborator shallow-merges the provided fields into the existing
// record, last-write-wins per field.
func (s *CollaboratorService) UpdateCollaborator(ctx context.Context, id string, patch domain.CollaboratorPatch) (*domain.Collaborator, error) {
	return s.repo.UpdateCollaborator(ctx, id, patch)
}

// DeleteCollaborator removes a collaborator permanently. No history is kept.
func (s *CollaboratorService) DeleteCollaborator(ctx context.Context, id string) error {
	if err := s.repo.DeleteCollaborator(ctx, id); err != nil {
		return err
	}
	log.Printf("level=info component=collaborators op=delete id=%s", id)
	return nil
}
