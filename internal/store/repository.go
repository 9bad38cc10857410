/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for
 * all data access operations required by the payout service. Defining an
 * interface decouples the business logic from the storage backend (JSON file
 * snapshot or PostgreSQL), making the code modular and easy to test with stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/creatorstream/payout-service/internal/domain"
)

var (
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrPayoutNotFound       = errors.New("payout not found")
)

// PayoutPatch carries partial field updates for a payout job. Nil fields are
// left untouched. Status transitions always come with an UpdatedAt bump;
// retry additionally resets CreatedAt.
type PayoutPatch struct {
	Status    *string
	CreatedAt *int64
	UpdatedAt *int64
}

// Repository defines the set of methods for interacting with the persisted
// collaborator and payout collections.
type Repository interface {
	// Collaborator methods
	ListCollaborators(ctx context.Context) ([]domain.Collaborator, error)
	CreateCollaborator(ctx context.Context, c *domain.Collaborator) error
	UpdateCollaborator(ctx context.Context, id string, patch domain.CollaboratorPatch) (*domain.Collaborator, error)
	DeleteCollaborator(ctx context.Context, id string) error

	// Payout job methods
	CreatePayout(ctx context.Context, job *domain.PayoutJob) error
	ListPayouts(ctx context.Context, limit int) ([]domain.PayoutJob, error)
	ListActivePayouts(ctx context.Context) ([]domain.PayoutJob, error)
	GetPayout(ctx context.Context, id string) (*domain.PayoutJob, error)
	UpdatePayout(ctx context.Context, id string, patch PayoutPatch) (*domain.PayoutJob, error)
}
