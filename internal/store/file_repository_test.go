package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/creatorstream/payout-service/internal/domain"
)

func newTestRepo(t *testing.T) (*FileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("NewFileRepository returned error: %v", err)
	}
	return repo, path
}

func samplePayout(id string, createdAt int64) *domain.PayoutJob {
	return &domain.PayoutJob{
		ID:        id,
		Token:     "USDC",
		AmountUSD: 100,
		Recipients: []domain.PayoutRecipient{
			{Wallet: "0xA", Percentage: 100},
		},
		Status:    domain.PayoutStatusQueued,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestFileRepository_SnapshotRoundTrip(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	c := &domain.Collaborator{ID: "c1", Name: "Ada", Wallet: "0xA", Percentage: 60, CreatedAt: 1000}
	if err := repo.CreateCollaborator(ctx, c); err != nil {
		t.Fatalf("CreateCollaborator returned error: %v", err)
	}
	if err := repo.CreatePayout(ctx, samplePayout("p1", 2000)); err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}

	// A fresh repository over the same file sees the persisted state.
	reopened, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	collaborators, err := reopened.ListCollaborators(ctx)
	if err != nil {
		t.Fatalf("ListCollaborators returned error: %v", err)
	}
	if len(collaborators) != 1 || collaborators[0].Name != "Ada" {
		t.Fatalf("unexpected collaborators after reopen: %+v", collaborators)
	}
	job, err := reopened.GetPayout(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if job.Token != "USDC" || len(job.Recipients) != 1 || job.Recipients[0].Wallet != "0xA" {
		t.Fatalf("unexpected payout after reopen: %+v", job)
	}
}

func TestFileRepository_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt snapshot: %v", err)
	}

	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("expected corrupt snapshot to be tolerated, got %v", err)
	}
	payouts, err := repo.ListPayouts(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListPayouts returned error: %v", err)
	}
	if len(payouts) != 0 {
		t.Fatalf("expected empty payouts, got %d", len(payouts))
	}
}

func TestFileRepository_PreservesForeignCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	seed := `{
		"royalties": [{"id": "r1", "sale_amount": "12.5"}],
		"collaborators": [],
		"payouts": [],
		"payoutRecipients": [],
		"notifications": [{"id": "n1"}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("NewFileRepository returned error: %v", err)
	}
	// Any mutation rewrites the whole document.
	if err := repo.CreatePayout(context.Background(), samplePayout("p1", 1)); err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	var royalties []map[string]interface{}
	if err := json.Unmarshal(doc["royalties"], &royalties); err != nil {
		t.Fatalf("royalties list did not survive rewrite: %v", err)
	}
	if len(royalties) != 1 || royalties[0]["id"] != "r1" {
		t.Fatalf("royalties content lost: %+v", royalties)
	}
	if _, ok := doc["notifications"]; !ok {
		t.Fatal("notifications list missing from rewritten snapshot")
	}
}

func TestFileRepository_ListPayoutsSortsAndCaps(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i, createdAt := range []int64{100, 300, 200} {
		job := samplePayout(string(rune('a'+i)), createdAt)
		if err := repo.CreatePayout(ctx, job); err != nil {
			t.Fatalf("CreatePayout returned error: %v", err)
		}
	}

	payouts, err := repo.ListPayouts(ctx, 2)
	if err != nil {
		t.Fatalf("ListPayouts returned error: %v", err)
	}
	if len(payouts) != 2 {
		t.Fatalf("expected 2 payouts, got %d", len(payouts))
	}
	if payouts[0].CreatedAt != 300 || payouts[1].CreatedAt != 200 {
		t.Fatalf("expected createdAt-descending order, got %d then %d", payouts[0].CreatedAt, payouts[1].CreatedAt)
	}
}

func TestFileRepository_ListActivePayoutsSkipsTerminal(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	active := samplePayout("p1", 1)
	done := samplePayout("p2", 2)
	done.Status = domain.PayoutStatusCompleted
	canceled := samplePayout("p3", 3)
	canceled.Status = domain.PayoutStatusCanceled
	for _, job := range []*domain.PayoutJob{active, done, canceled} {
		if err := repo.CreatePayout(ctx, job); err != nil {
			t.Fatalf("CreatePayout returned error: %v", err)
		}
	}

	got, err := repo.ListActivePayouts(ctx)
	if err != nil {
		t.Fatalf("ListActivePayouts returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("expected only the queued job, got %+v", got)
	}
}

func TestFileRepository_UpdatePayoutPatchSemantics(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreatePayout(ctx, samplePayout("p1", 500)); err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}

	status := domain.PayoutStatusProcessing
	updatedAt := int64(900)
	job, err := repo.UpdatePayout(ctx, "p1", PayoutPatch{Status: &status, UpdatedAt: &updatedAt})
	if err != nil {
		t.Fatalf("UpdatePayout returned error: %v", err)
	}
	if job.Status != domain.PayoutStatusProcessing || job.UpdatedAt != 900 {
		t.Fatalf("patch not applied: %+v", job)
	}
	if job.CreatedAt != 500 {
		t.Fatalf("createdAt must not change without an explicit patch, got %d", job.CreatedAt)
	}

	if _, err := repo.UpdatePayout(ctx, "missing", PayoutPatch{Status: &status}); !errors.Is(err, ErrPayoutNotFound) {
		t.Fatalf("expected ErrPayoutNotFound, got %v", err)
	}
}

func TestFileRepository_CollaboratorNotFoundErrors(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	name := "Ada"
	if _, err := repo.UpdateCollaborator(ctx, "missing", domain.CollaboratorPatch{Name: &name}); !errors.Is(err, ErrCollaboratorNotFound) {
		t.Fatalf("expected ErrCollaboratorNotFound on update, got %v", err)
	}
	if err := repo.DeleteCollaborator(ctx, "missing"); !errors.Is(err, ErrCollaboratorNotFound) {
		t.Fatalf("expected ErrCollaboratorNotFound on delete, got %v", err)
	}
}
