package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/creatorstream/payout-service/internal/domain"
	"github.com/creatorstream/payout-service/internal/store"
)

func newCollaboratorService(t *testing.T) *CollaboratorService {
	t.Helper()
	repo, err := store.NewFileRepository(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("failed to create file repository: %v", err)
	}
	return NewCollaboratorService(repo, func() int64 { return time.Now().UnixMilli() })
}

func TestAddCollaborator_RequiresNameAndWallet(t *testing.T) {
	svc := newCollaboratorService(t)

	if _, err := svc.AddCollaborator(context.Background(), domain.CreateCollaboratorRequest{Wallet: "0xA"}); !errors.Is(err, ErrCollaboratorNameRequired) {
		t.Fatalf("expected ErrCollaboratorNameRequired, got %v", err)
	}
	if _, err := svc.AddCollaborator(context.Background(), domain.CreateCollaboratorRequest{Name: "Ada", Wallet: "  "}); !errors.Is(err, ErrCollaboratorWalletRequired) {
		t.Fatalf("expected ErrCollaboratorWalletRequired, got %v", err)
	}

	// Rejected adds must not touch the collection.
	list, err := svc.ListCollaborators(context.Background())
	if err != nil {
		t.Fatalf("ListCollaborators returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty registry after rejected adds, got %d entries", len(list))
	}
}

func TestAddCollaborator_DefaultsPercentageToZero(t *testing.T) {
	svc := newCollaboratorService(t)

	c, err := svc.AddCollaborator(context.Background(), domain.CreateCollaboratorRequest{Name: "Ada", Wallet: "0xA"})
	if err != nil {
		t.Fatalf("AddCollaborator returned error: %v", err)
	}
	if c.Percentage != 0 {
		t.Fatalf("expected default percentage 0, got %f", c.Percentage)
	}
	if c.ID == "" || c.CreatedAt == 0 {
		t.Fatalf("expected assigned id and createdAt, got %+v", c)
	}
}

func TestUpdateCollaborator_MergesPartialFields(t *testing.T) {
	svc := newCollaboratorService(t)

	role := "producer"
	c, err := svc.AddCollaborator(context.Background(), domain.CreateCollaboratorRequest{
		Name: "Ada", Wallet: "0xA", Role: &role,
	})
	if err != nil {
		t.Fatalf("AddCollaborator returned error: %v", err)
	}

	pct := 35.5
	updated, err := svc.UpdateCollaborator(context.Background(), c.ID, domain.CollaboratorPatch{Percentage: &pct})
	if err != nil {
		t.Fatalf("UpdateCollaborator returned error: %v", err)
	}
	if updated.Percentage != 35.5 {
		t.Fatalf("expected percentage 35.5, got %f", updated.Percentage)
	}
	// Untouched fields survive the merge.
	if updated.Name != "Ada" || updated.Wallet != "0xA" || updated.Role == nil || *updated.Role != "producer" {
		t.Fatalf("unexpected merged record: %+v", updated)
	}
}

func TestUpdateCollaborator_NotFound(t *testing.T) {
	svc := newCollaboratorService(t)

	name := "Ghost"
	if _, err := svc.UpdateCollaborator(context.Background(), "missing", domain.CollaboratorPatch{Name: &name}); !errors.Is(err, store.ErrCollaboratorNotFound) {
		t.Fatalf("expected ErrCollaboratorNotFound, got %v", err)
	}
}

func TestDeleteCollaborator(t *testing.T) {
	svc := newCollaboratorService(t)

	c, err := svc.AddCollaborator(context.Background(), domain.CreateCollaboratorRequest{Name: "Ada", Wallet: "0xA"})
	if err != nil {
		t.Fatalf("AddCollaborator returned error: %v", err)
	}

	if err := svc.DeleteCollaborator(context.Background(), c.ID); err != nil {
		t.Fatalf("DeleteCollaborator returned error: %v", err)
	}
	if err := svc.DeleteCollaborator(context.Background(), c.ID); !errors.Is(err, store.ErrCollaboratorNotFound) {
		t.Fatalf("expected ErrCollaboratorNotFound on second delete, got %v", err)
	}

	list, err := svc.ListCollaborators(context.Background())
	if err != nil {
		t.Fatalf("ListCollaborators returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty registry after delete, got %d entries", len(list))
	}
}
