/**
 * @description
 * Background ticker that drives payout lifecycle advancement. One goroutine
 * owns the periodic scan; each tick runs to completion before the next fires,
 * so transitions never race each other. Store-level mutations from concurrent
 * API handlers are serialized by the repository itself.
 */
package app

import (
	"context"
	"log/slog"
	"time"
)

// LifecycleTicker periodically invokes the payout service's Tick.
type LifecycleTicker struct {
	service  *PayoutService
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewLifecycleTicker creates a ticker with the given scan interval. The
// reference dashboard uses 1500ms.
func NewLifecycleTicker(service *PayoutService, interval time.Duration, logger *slog.Logger) *LifecycleTicker {
	return &LifecycleTicker{
		service:  service,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop in its own goroutine.
func (t *LifecycleTicker) Start() {
	t.logger.Info("starting payout lifecycle ticker", "interval", t.interval)
	go t.run()
}

func (t *LifecycleTicker) run() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			transitioned, err := t.service.Tick(context.Background())
			if err != nil {
				t.logger.Error("payout tick failed", "error", err)
				continue
			}
			if transitioned > 0 {
				t.logger.Info("payout tick advanced jobs", "transitioned", transitioned)
			}
		}
	}
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
func (t *LifecycleTicker) Stop() {
	close(t.stop)
	<-t.done
	t.logger.Info("payout lifecycle ticker stopped")
}
