package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/observability/metrics"
)

// DeadlineWorker periodically flips listings whose application deadline has
// passed to inactive, so the browse surface never offers a posting that can
// no longer be applied to.
type DeadlineWorker struct {
	internshipRepo domain.InternshipRepository
	logger         *slog.Logger
	interval       time.Duration
	maxRetries     int
}

// NewDeadlineWorker creates a new deadline worker
func NewDeadlineWorker(
	internshipRepo domain.InternshipRepository,
	logger *slog.Logger,
	interval time.Duration,
) *DeadlineWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeadlineWorker{
		internshipRepo: internshipRepo,
		logger:         logger,
		interval:       interval,
		maxRetries:     3,
	}
}

// Start begins the sweep loop. Blocks until ctx is cancelled.
func (w *DeadlineWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("deadline worker started", slog.Duration("interval", w.interval))

	// Run once at startup so a restart doesn't leave stale listings up for a
	// full interval.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deadline worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one expiry pass with retry and refreshes the active gauge
func (w *DeadlineWorker) sweep(ctx context.Context) {
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt*attempt) * time.Second
			w.logger.Warn("retrying deadline sweep",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		expired, err := w.internshipRepo.DeactivateExpired(time.Now())
		if err != nil {
			w.logger.Error("deadline sweep failed", slog.String("error", err.Error()))
			continue
		}

		if expired > 0 {
			w.logger.Info("deactivated expired listings", slog.Int("count", expired))
		}
		metrics.ObserveDeadlineSweep("success")

		count, err := w.internshipRepo.CountActive()
		if err != nil {
			w.logger.Warn("failed to count active listings", slog.String("error", err.Error()))
			return
		}
		metrics.SetActiveListings(count)
		return
	}

	w.logger.Error("deadline sweep failed after retries", slog.Int("max_retries", w.maxRetries))
	metrics.ObserveDeadlineSweep("error")
}
