/**
 * @description
 * This file implements the `Repository` interface over a single JSON snapshot
 * document, mirroring the dashboard's original `db.json` layout. All
 * collections live in memory behind one mutex; every mutation rewrites the
 * whole document atomically (write to a temp file, then rename), which keeps
 * the single-writer, whole-collection-swap semantics of the reference store
 * while making concurrent access from HTTP handlers and the lifecycle ticker
 * safe.
 *
 * @notes
 * - An unreadable or corrupt snapshot is treated as an empty database rather
 *   than a fatal error, so the service stays available after disk trouble.
 * - The `royalties`, `payoutRecipients` and `notifications` lists are carried
 *   as raw JSON: this service never touches them, but other consumers of the
 *   document expect them to survive rewrites.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/creatorstream/payout-service/internal/domain"
)

// snapshot is the persisted document. Field names match the reference db.json.
type snapshot struct {
	Royalties        []json.RawMessage     `json:"royalties"`
	Collaborators    []domain.Collaborator `json:"collaborators"`
	Payouts          []domain.PayoutJob    `json:"payouts"`
	PayoutRecipients []json.RawMessage     `json:"payoutRecipients"`
	Notifications    []json.RawMessage     `json:"notifications"`
}

// FileRepository is a mutex-guarded in-memory store with a durable JSON
// snapshot. It is the default backend when no database is configured.
type FileRepository struct {
	mu   sync.Mutex
	path string
	db   snapshot
}

// NewFileRepository loads (or initializes) the snapshot at path and returns a
// ready repository.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("level=warn component=file_store msg=\"snapshot unreadable; starting empty\" path=%s err=%v", path, err)
		}
		r.normalize()
		return r, nil
	}
	if err := json.Unmarshal(data, &r.db); err != nil {
		log.Printf("level=warn component=file_store msg=\"snapshot corrupt; starting empty\" path=%s err=%v", path, err)
		r.db = snapshot{}
	}
	r.normalize()
	return r, nil
}

// normalize replaces nil collection slices so the snapshot always serializes
// as arrays, matching the seeded reference document.
func (r *FileRepository) normalize() {
	if r.db.Royalties == nil {
		r.db.Royalties = []json.RawMessage{}
	}
	if r.db.Collaborators == nil {
		r.db.Collaborators = []domain.Collaborator{}
	}
	if r.db.Payouts == nil {
		r.db.Payouts = []domain.PayoutJob{}
	}
	if r.db.PayoutRecipients == nil {
		r.db.PayoutRecipients = []json.RawMessage{}
	}
	if r.db.Notifications == nil {
		r.db.Notifications = []json.RawMessage{}
	}
}

// persist writes the whole document atomically. Callers must hold r.mu.
func (r *FileRepository) persist() error {
	data, err := json.MarshalIndent(&r.db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// ListCollaborators returns all collaborators in storage order.
func (r *FileRepository) ListCollaborators(ctx context.Context) ([]domain.Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Collaborator, len(r.db.Collaborators))
	copy(out, r.db.Collaborators)
	return out, nil
}

// CreateCollaborator appends a collaborator to the persisted collection.
func (r *FileRepository) CreateCollaborator(ctx context.Context, c *domain.Collaborator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.db.Collaborators = append(r.db.Collaborators, *c)
	return r.persist()
}

// UpdateCollaborator shallow-merges the patch into the stored record.
func (r *FileRepository) UpdateCollaborator(ctx context.Context, id string, patch domain.CollaboratorPatch) (*domain.Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.db.Collaborators {
		if r.db.Collaborators[i].ID != id {
			continue
		}
		c := &r.db.Collaborators[i]
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Wallet != nil {
			c.Wallet = *patch.Wallet
		}
		if patch.Percentage != nil {
			c.Percentage = *patch.Percentage
		}
		if patch.Role != nil {
			c.Role = patch.Role
		}
		if err := r.persist(); err != nil {
			return nil, err
		}
		updated := *c
		return &updated, nil
	}
	return nil, ErrCollaboratorNotFound
}

// DeleteCollaborator removes the record with the given id.
func (r *FileRepository) DeleteCollaborator(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.db.Collaborators {
		if r.db.Collaborators[i].ID == id {
			r.db.Collaborators = append(r.db.Collaborators[:i], r.db.Collaborators[i+1:]...)
			return r.persist()
		}
	}
	return ErrCollaboratorNotFound
}

// CreatePayout appends a payout job to the persisted collection.
func (r *FileRepository) CreatePayout(ctx context.Context, job *domain.PayoutJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.db.Payouts = append(r.db.Payouts, *job)
	return r.persist()
}

// ListPayouts returns payouts sorted by createdAt descending, truncated to
// limit. A non-positive limit returns everything.
func (r *FileRepository) ListPayouts(ctx context.Context, limit int) ([]domain.PayoutJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.PayoutJob, len(r.db.Payouts))
	copy(out, r.db.Payouts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListActivePayouts returns all non-terminal payout jobs in insertion order.
func (r *FileRepository) ListActivePayouts(ctx context.Context) ([]domain.PayoutJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PayoutJob
	for i := range r.db.Payouts {
		if !r.db.Payouts[i].IsTerminal() {
			out = append(out, r.db.Payouts[i])
		}
	}
	return out, nil
}

// GetPayout returns the payout with the given id.
func (r *FileRepository) GetPayout(ctx context.Context, id string) (*domain.PayoutJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.db.Payouts {
		if r.db.Payouts[i].ID == id {
			job := r.db.Payouts[i]
			return &job, nil
		}
	}
	return nil, ErrPayoutNotFound
}

// UpdatePayout applies the patch to the stored job and persists.
func (r *FileRepository) UpdatePayout(ctx context.Context, id string, patch PayoutPatch) (*domain.PayoutJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.db.Payouts {
		if r.db.Payouts[i].ID != id {
			continue
		}
		job := &r.db.Payouts[i]
		if patch.Status != nil {
			job.Status = *patch.Status
		}
		if patch.CreatedAt != nil {
			job.CreatedAt = *patch.CreatedAt
		}
		if patch.UpdatedAt != nil {
			job.UpdatedAt = *patch.UpdatedAt
		}
		if err := r.persist(); err != nil {
			return nil, err
		}
		updated := *job
		return &updated, nil
	}
	return nil, ErrPayoutNotFound
}
