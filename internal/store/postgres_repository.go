/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface for deployments that outgrow the JSON snapshot store. It contains
 * the SQL queries for the collaborator and payout collections.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 *
 * @notes
 * - Recipients are stored as JSONB so the wallet/percentage pairs round-trip
 *   with the exact field names the frontend expects.
 * - Timestamps are BIGINT epoch millis, matching the domain model.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorstream/payout-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the collaborator and payout tables when they do not
// exist yet. Kept idempotent so it can run on every boot.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS collaborators (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			wallet TEXT NOT NULL,
			percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			role TEXT,
			created_at BIGINT NOT NULL,
			seq BIGSERIAL
		);
		CREATE TABLE IF NOT EXISTS payouts (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			amount_usd DOUBLE PRECISION NOT NULL,
			recipients JSONB NOT NULL,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			seq BIGSERIAL
		);
		CREATE INDEX IF NOT EXISTS idx_payouts_created_at ON payouts (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_payouts_status ON payouts (status);
	`
	_, err := r.db.Exec(ctx, ddl)
	return err
}

// ListCollaborators returns all collaborators in insertion order.
func (r *PostgresRepository) ListCollaborators(ctx context.Context) ([]domain.Collaborator, error) {
	query := `SELECT id, name, wallet, percentage, role, created_at FROM collaborators ORDER BY seq`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collaborators := []domain.Collaborator{}
	for rows.Next() {
		var c domain.Collaborator
		if err := rows.Scan(&c.ID, &c.Name, &c.Wallet, &c.Percentage, &c.Role, &c.CreatedAt); err != nil {
			return nil, err
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}

// CreateCollaborator inserts a new collaborator record.
func (r *PostgresRepository) CreateCollaborator(ctx context.Context, c *domain.Collaborator) error {
	query := `
		INSERT INTO collaborators (id, name, wallet, percentage, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Wallet, c.Percentage, c.Role, c.CreatedAt)
	return err
}

// UpdateCollaborator applies the non-nil patch fields and returns the updated record.
func (r *PostgresRepository) UpdateCollaborator(ctx context.Context, id string, patch domain.CollaboratorPatch) (*domain.Collaborator, error) {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	if patch.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *patch.Name)
		argPos++
	}
	if patch.Wallet != nil {
		setClauses = append(setClauses, fmt.Sprintf("wallet = $%d", argPos))
		args = append(args, *patch.Wallet)
		argPos++
	}
	if patch.Percentage != nil {
		setClauses = append(setClauses, fmt.Sprintf("percentage = $%d", argPos))
		args = append(args, *patch.Percentage)
		argPos++
	}
	if patch.Role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", argPos))
		args = append(args, *patch.Role)
		argPos++
	}

	var row pgx.Row
	if len(setClauses) == 0 {
		// Nothing to change; still honor the not-found contract.
		row = r.db.QueryRow(ctx,
			`SELECT id, name, wallet, percentage, role, created_at FROM collaborators WHERE id = $1`, id)
	} else {
		query := fmt.Sprintf(`
			UPDATE collaborators SET %s WHERE id = $%d
			RETURNING id, name, wallet, percentage, role, created_at
		`, strings.Join(setClauses, ", "), argPos)
		args = append(args, id)
		row = r.db.QueryRow(ctx, query, args...)
	}

	var c domain.Collaborator
	if err := row.Scan(&c.ID, &c.Name, &c.Wallet, &c.Percentage, &c.Role, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollaboratorNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCollaborator removes the record with the given id.
func (r *PostgresRepository) DeleteCollaborator(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM collaborators WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCollaboratorNotFound
	}
	return nil
}

// CreatePayout inserts a new payout job record.
func (r *PostgresRepository) CreatePayout(ctx context.Context, job *domain.PayoutJob) error {
	recipients, err := json.Marshal(job.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}
	query := `
		INSERT INTO payouts (id, token, amount_usd, recipients, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query, job.ID, job.Token, job.AmountUSD, recipients, job.Status, job.CreatedAt, job.UpdatedAt)
	return err
}

func scanPayout(row pgx.Row) (*domain.PayoutJob, error) {
	var job domain.PayoutJob
	var recipients []byte
	if err := row.Scan(&job.ID, &job.Token, &job.AmountUSD, &recipients, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipients, &job.Recipients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipients: %w", err)
	}
	return &job, nil
}

// ListPayouts returns payouts sorted by created_at descending, truncated to
// limit. A non-positive limit returns everything.
func (r *PostgresRepository) ListPayouts(ctx context.Context, limit int) ([]domain.PayoutJob, error) {
	query := `SELECT id, token, amount_usd, recipients, status, created_at, updated_at FROM payouts ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := []domain.PayoutJob{}
	for rows.Next() {
		job, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *job)
	}
	return payouts, rows.Err()
}

// ListActivePayouts returns all non-terminal payout jobs in insertion order.
func (r *PostgresRepository) ListActivePayouts(ctx context.Context) ([]domain.PayoutJob, error) {
	query := `
		SELECT id, token, amount_usd, recipients, status, created_at, updated_at
		FROM payouts
		WHERE status NOT IN ($1, $2, $3)
		ORDER BY seq
	`
	rows, err := r.db.Query(ctx, query, domain.PayoutStatusCompleted, domain.PayoutStatusFailed, domain.PayoutStatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := []domain.PayoutJob{}
	for rows.Next() {
		job, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *job)
	}
	return payouts, rows.Err()
}

// GetPayout returns the payout with the given id.
func (r *PostgresRepository) GetPayout(ctx context.Context, id string) (*domain.PayoutJob, error) {
	query := `SELECT id, token, amount_usd, recipients, status, created_at, updated_at FROM payouts WHERE id = $1`
	job, err := scanPayout(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return job, nil
}

// UpdatePayout applies the patch and returns the updated job.
func (r *PostgresRepository) UpdatePayout(ctx context.Context, id string, patch PayoutPatch) (*domain.PayoutJob, error) {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	if patch.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *patch.Status)
		argPos++
	}
	if patch.CreatedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("created_at = $%d", argPos))
		args = append(args, *patch.CreatedAt)
		argPos++
	}
	if patch.UpdatedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argPos))
		args = append(args, *patch.UpdatedAt)
		argPos++
	}

	var row pgx.Row
	if len(setClauses) == 0 {
		row = r.db.QueryRow(ctx,
			`SELECT id, token, amount_usd, recipients, status, created_at, updated_at FROM payouts WHERE id = $1`, id)
	} else {
		query := fmt.Sprintf(`
			UPDATE payouts SET %s WHERE id = $%d
			RETURNING id, token, amount_usd, recipients, status, created_at, updated_at
		`, strings.Join(setClauses, ", "), argPos)
		args = append(args, id)
		row = r.db.QueryRow(ctx, query, args...)
	}

	job, err := scanPayout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return job, nil
}
