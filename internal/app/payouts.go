/**
 * @description
 * This file contains the core business logic for the payout engine. The
 * `PayoutService` validates and persists payout jobs, advances them through
 * the queued → processing → completed lifecycle on each tick, and exposes the
 * retry and cancel operations.
 *
 * Key features:
 * - Create-time validation: token allow-list, positive amount, non-empty
 *   recipient list, percentages summing to 100 within tolerance.
 * - Time-threshold lifecycle advancement driven by the background ticker.
 * - Publishes a status event to RabbitMQ on every transition.
 *
 * @dependencies
 * - context, errors, fmt, log, math, time: Standard Go libraries.
 * - internal/domain, internal/store, internal/tokens: Domain models, data
 *   access, and the token allow-list.
 * - pkg/rabbitmq: For payout status event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/creatorstream/payout-service/internal/domain"
	"github.com/creatorstream/payout-service/internal/store"
	"github.com/creatorstream/payout-service/internal/tokens"
	"github.com/creatorstream/payout-service/pkg/rabbitmq"
)

var (
	ErrUnsupportedToken = errors.New("unsupported payout token")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrPercentageSum    = errors.New("recipient percentages must sum to 100")
	ErrPayoutProcessing = errors.New("payout is currently processing")
	ErrPayoutTerminal   = errors.New("payout is in a terminal state")
)

// PercentSumTolerance is the allowed absolute deviation of the recipient
// percentage sum from 100 at creation time.
const PercentSumTolerance = 0.01

// PayoutLifecycleConfig carries the time thresholds that drive automatic
// lifecycle advancement.
type PayoutLifecycleConfig struct {
	// QueueDelay is how long a job sits in `queued` before a tick moves it
	// to `processing`.
	QueueDelay time.Duration
	// ProcessDelay is how long a job sits in `processing` before a tick
	// moves it to `completed`.
	ProcessDelay time.Duration
	// ListLimit caps the default payout listing size.
	ListLimit int
}

// PayoutService provides the core business logic for payout jobs.
type PayoutService struct {
	repo     store.Repository
	producer rabbitmq.Publisher
	cfg      PayoutLifecycleConfig

	// now is swappable in tests to simulate elapsed time.
	now func() time.Time

	idSeq atomic.Uint64
}

// NewPayoutService creates a new payout service instance.
func NewPayoutService(repo store.Repository, producer rabbitmq.Publisher, cfg PayoutLifecycleConfig) *PayoutService {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	return &PayoutService{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// newJobID builds a time-based job identifier. The millisecond prefix keeps
// the id sortable alongside createdAt; the sequence suffix disambiguates jobs
// created within the same millisecond.
func (s *PayoutService) newJobID(at time.Time) string {
	return fmt.Sprintf("p_%d_%04d", at.UnixMilli(), s.idSeq.Add(1)%10000)
}

// CreatePayout validates the request, persists a new job in the `queued`
// state, and returns it together with the derived per-recipient shares.
func (s *PayoutService) CreatePayout(ctx context.Context, req domain.CreatePayoutRequest) (*domain.PayoutJob, []domain.RecipientShare, error) {
	if !tokens.IsSupported(req.Token) {
		return nil, nil, ErrUnsupportedToken
	}
	if math.IsNaN(req.AmountUSD) || math.IsInf(req.AmountUSD, 0) || req.AmountUSD <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if len(req.Recipients) == 0 {
		return nil, nil, ErrNoRecipients
	}
	var sum float64
	for _, rcpt := range req.Recipients {
		sum += rcpt.Percentage
	}
	if math.Abs(sum-100) > PercentSumTolerance {
		return nil, nil, fmt.Errorf("%w: got %.4f", ErrPercentageSum, sum)
	}

	now := s.now()
	nowMs := now.UnixMilli()
	job := &domain.PayoutJob{
		ID:         s.newJobID(now),
		Token:      req.Token,
		AmountUSD:  req.AmountUSD,
		Recipients: append([]domain.PayoutRecipient(nil), req.Recipients...),
		Status:     domain.PayoutStatusQueued,
		CreatedAt:  nowMs,
		UpdatedAt:  nowMs,
	}

	if err := s.repo.CreatePayout(ctx, job); err != nil {
		return nil, nil, fmt.Errorf("failed to persist payout: %w", err)
	}

	log.Printf("level=info component=payouts op=create job_id=%s token=%s amount_usd=%.2f recipients=%d", job.ID, job.Token, job.AmountUSD, len(job.Recipients))
	s.publishStatus(ctx, job)

	return job, s.recipientShares(job), nil
}

// recipientShares derives each recipient's USD and token-denominated cut of
// the total amount.
func (s *PayoutService) recipientShares(job *domain.PayoutJob) []domain.RecipientShare {
	shares := make([]domain.RecipientShare, 0, len(job.Recipients))
	for _, rcpt := range job.Recipients {
		usd := job.AmountUSD * rcpt.Percentage / 100
		shares = append(shares, domain.RecipientShare{
			Wallet:      rcpt.Wallet,
			Percentage:  rcpt.Percentage,
			AmountUSD:   usd,
			AmountToken: tokens.FromUSD(usd, job.Token),
		})
	}
	return shares
}

// ListPayouts returns the most recent jobs, capped to the configured limit
// when the caller does not supply one.
func (s *PayoutService) ListPayouts(ctx context.Context, limit int) ([]domain.PayoutJob, error) {
	if limit <= 0 {
		limit = s.cfg.ListLimit
	}
	return s.repo.ListPayouts(ctx, limit)
}

// GetPayout returns a single job by id.
func (s *PayoutService) GetPayout(ctx context.Context, id string) (*domain.PayoutJob, error) {
	return s.repo.GetPayout(ctx, id)
}

// RetryPayout re-queues a job unless it is currently processing. Terminal
// jobs are re-queued too: both timestamps reset so the ticker picks the job
// up as if freshly created. Re-queuing a completed payout would double-pay
// once real payment execution exists; the dashboard relies on the current
// behavior, so it stays until a product decision changes it.
func (s *PayoutService) RetryPayout(ctx context.Context, id string) (*domain.PayoutJob, error) {
	job, err := s.repo.GetPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.PayoutStatusProcessing {
		return nil, ErrPayoutProcessing
	}

	nowMs := s.now().UnixMilli()
	status := domain.PayoutStatusQueued
	updated, err := s.repo.UpdatePayout(ctx, id, store.PayoutPatch{
		Status:    &status,
		CreatedAt: &nowMs,
		UpdatedAt: &nowMs,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=payouts op=retry job_id=%s from=%s", id, job.Status)
	s.publishStatus(ctx, updated)
	return updated, nil
}

// CancelPayout marks a non-terminal job as canceled. There is no in-flight
// operation to abort; the ticker simply skips the job from now on.
func (s *PayoutService) CancelPayout(ctx context.Context, id string) (*domain.PayoutJob, error) {
	job, err := s.repo.GetPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		return nil, ErrPayoutTerminal
	}

	nowMs := s.now().UnixMilli()
	status := domain.PayoutStatusCanceled
	updated, err := s.repo.UpdatePayout(ctx, id, store.PayoutPatch{
		Status:    &status,
		UpdatedAt: &nowMs,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=payouts op=cancel job_id=%s from=%s", id, job.Status)
	s.publishStatus(ctx, updated)
	return updated, nil
}

// Tick scans all non-terminal jobs once and applies the time-threshold
// transitions. A job promoted to `processing` in this tick gets a fresh
// updatedAt, so it cannot complete before the next tick. Returns the number
// of jobs transitioned.
func (s *PayoutService) Tick(ctx context.Context) (int, error) {
	jobs, err := s.repo.ListActivePayouts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active payouts: %w", err)
	}

	now := s.now()
	nowMs := now.UnixMilli()
	transitioned := 0
	for i := range jobs {
		job := &jobs[i]
		var next string
		switch job.Status {
		case domain.PayoutStatusQueued:
			if now.Sub(time.UnixMilli(job.CreatedAt)) > s.cfg.QueueDelay {
				next = domain.PayoutStatusProcessing
			}
		case domain.PayoutStatusProcessing:
			if now.Sub(time.UnixMilli(job.UpdatedAt)) > s.cfg.ProcessDelay {
				// In production: execute the payout here (Flow Forte
				// Actions) before marking completed.
				next = domain.PayoutStatusCompleted
			}
		}
		if next == "" {
			continue
		}

		updated, err := s.repo.UpdatePayout(ctx, job.ID, store.PayoutPatch{
			Status:    &next,
			UpdatedAt: &nowMs,
		})
		if err != nil {
			log.Printf("level=error component=payouts op=tick job_id=%s msg=\"transition persist failed\" err=%v", job.ID, err)
			continue
		}
		log.Printf("level=info component=payouts op=tick job_id=%s from=%s to=%s", job.ID, job.Status, next)
		s.publishStatus(ctx, updated)
		transitioned++
	}
	return transitioned, nil
}

// publishStatus emits a lifecycle event. Publishing is best-effort: a broker
// failure never affects the job itself.
func (s *PayoutService) publishStatus(ctx context.Context, job *domain.PayoutJob) {
	if s.producer == nil {
		return
	}
	event := rabbitmq.PayoutStatusEvent{
		EventID:   uuid.New(),
		JobID:     job.ID,
		Status:    job.Status,
		Token:     job.Token,
		AmountUSD: job.AmountUSD,
		Timestamp: s.now(),
	}
	if err := s.producer.PublishPayoutStatus(ctx, event); err != nil {
		log.Printf("level=warn component=payouts msg=\"status event publish failed\" job_id=%s status=%s err=%v", job.ID, job.Status, err)
	}
}
