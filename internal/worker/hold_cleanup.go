package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type HoldCleaner interface {
	CleanupExpiredHolds(ctx context.Context) int
}

// HoldCleanupWorker evicts expired holds on a ticker. Reads already ignore
// expired rows, so the worker only keeps the table small and flushes
// "expired" analytics events promptly.
type HoldCleanupWorker struct {
	cleaner  HoldCleaner
	interval time.Duration
}

func NewHoldCleanupWorker(cleaner HoldCleaner, interval time.Duration) *HoldCleanupWorker {
	return &HoldCleanupWorker{
		cleaner:  cleaner,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled.
func (w *HoldCleanupWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logrus.Info("Hold cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("Hold cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Hold cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *HoldCleanupWorker) RunOnce(ctx context.Context) int {
	n := w.cleaner.CleanupExpiredHolds(ctx)
	if n > 0 {
		logrus.Infof("Hold cleanup evicted %d expired holds", n)
	}
	return n
}
