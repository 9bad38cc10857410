package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/creatorstream/payout-service/internal/domain"
)

func TestTick_AdvancesThroughLifecycle(t *testing.T) {
	svc, publisher := newTestService(t)

	start := time.Now()
	svc.now = func() time.Time { return start }

	job, _, err := svc.CreatePayout(context.Background(), domain.CreatePayoutRequest{
		Token:      "USDC",
		AmountUSD:  100,
		Recipients: twoRecipients(),
	})
	if err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}

	// Below the queue threshold: nothing moves.
	svc.now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	if n, err := svc.Tick(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected no transitions before threshold, got n=%d err=%v", n, err)
	}

	// Past the 2000ms queue delay: queued -> processing.
	afterQueue := start.Add(2001 * time.Millisecond)
	svc.now = func() time.Time { return afterQueue }
	if n, err := svc.Tick(context.Background()); err != nil || n != 1 {
		t.Fatalf("expected one transition, got n=%d err=%v", n, err)
	}
	got, err := svc.GetPayout(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if got.Status != domain.PayoutStatusProcessing {
		t.Fatalf("expected processing, got %q", got.Status)
	}

	// The same instant must not also complete the job: updatedAt was just reset.
	if n, err := svc.Tick(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected no transition immediately after promotion, got n=%d err=%v", n, err)
	}

	// Past the 3000ms process delay from promotion: processing -> completed.
	svc.now = func() time.Time { return afterQueue.Add(3001 * time.Millisecond) }
	if n, err := svc.Tick(context.Background()); err != nil || n != 1 {
		t.Fatalf("expected one transition, got n=%d err=%v", n, err)
	}
	got, err = svc.GetPayout(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if got.Status != domain.PayoutStatusCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}

	if want, have := []string{"queued", "processing", "completed"}, publisher.statuses(); len(have) != len(want) {
		t.Fatalf("expected events %v, got %v", want, have)
	}
}

func TestTick_IdempotentOnceTerminal(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Now()
	svc.now = func() time.Time { return start }

	job, _, err := svc.CreatePayout(context.Background(), domain.CreatePayoutRequest{
		Token:      "FROTH",
		AmountUSD:  50,
		Recipients: []domain.PayoutRecipient{{Wallet: "0xC", Percentage: 100}},
	})
	if err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}

	// Drive to completion.
	svc.now = func() time.Time { return start.Add(3 * time.Second) }
	if _, err := svc.Tick(context.Background()); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	svc.now = func() time.Time { return start.Add(10 * time.Second) }
	if _, err := svc.Tick(context.Background()); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}

	completed, err := svc.GetPayout(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if completed.Status != domain.PayoutStatusCompleted {
		t.Fatalf("expected completed, got %q", completed.Status)
	}

	// Further ticks, however far in the future, change nothing.
	svc.now = func() time.Time { return start.Add(time.Hour) }
	for i := 0; i < 3; i++ {
		if n, err := svc.Tick(context.Background()); err != nil || n != 0 {
			t.Fatalf("tick %d: expected no transitions on terminal job, got n=%d err=%v", i, n, err)
		}
	}
	after, err := svc.GetPayout(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if after.Status != completed.Status || after.CreatedAt != completed.CreatedAt || after.UpdatedAt != completed.UpdatedAt {
		t.Fatalf("terminal job mutated by tick: %+v vs %+v", after, completed)
	}
}

func TestTick_SkipsCanceledJobs(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Now()
	svc.now = func() time.Time { return start }

	job, _, err := svc.CreatePayout(context.Background(), domain.CreatePayoutRequest{
		Token:      "USDC",
		AmountUSD:  25,
		Recipients: []domain.PayoutRecipient{{Wallet: "0xD", Percentage: 100}},
	})
	if err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}
	if _, err := svc.CancelPayout(context.Background(), job.ID); err != nil {
		t.Fatalf("CancelPayout returned error: %v", err)
	}

	svc.now = func() time.Time { return start.Add(time.Minute) }
	if n, err := svc.Tick(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected canceled job to be skipped, got n=%d err=%v", n, err)
	}
	got, err := svc.GetPayout(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetPayout returned error: %v", err)
	}
	if got.Status != domain.PayoutStatusCanceled {
		t.Fatalf("expected canceled, got %q", got.Status)
	}
}

func TestLifecycleTicker_AdvancesJobsInBackground(t *testing.T) {
	svc, _ := newTestService(t)

	// Backdate the clock used at creation so the first real tick promotes the job.
	past := time.Now().Add(-5 * time.Second)
	svc.now = func() time.Time { return past }
	job, _, err := svc.CreatePayout(context.Background(), domain.CreatePayoutRequest{
		Token:      "USDC",
		AmountUSD:  10,
		Recipients: []domain.PayoutRecipient{{Wallet: "0xE", Percentage: 100}},
	})
	if err != nil {
		t.Fatalf("CreatePayout returned error: %v", err)
	}
	svc.now = time.Now

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ticker := NewLifecycleTicker(svc, 10*time.Millisecond, logger)
	ticker.Start()
	defer ticker.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := svc.GetPayout(context.Background(), job.ID)
		if err != nil {
			t.Fatalf("GetPayout returned error: %v", err)
		}
		if got.Status == domain.PayoutStatusProcessing {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("ticker did not promote the queued job in time")
}
