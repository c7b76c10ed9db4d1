// internal/app/system/workers/pendingcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PendingPurger deletes pending signups last touched before a cutoff.
type PendingPurger interface {
	PurgePending(ctx context.Context, before time.Time) (int64, error)
}

// PendingCleanup is a background worker that removes signups abandoned
// before OTP verification or password entry.
type PendingCleanup struct {
	store    PendingPurger
	log      *zap.Logger
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewPendingCleanup creates a new pending-signup cleanup worker.
//
// Parameters:
//   - store: the user store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 hour)
//   - maxAge: how long a pending signup may sit untouched (e.g., 24 hours)
func NewPendingCleanup(store PendingPurger, logger *zap.Logger, interval, maxAge time.Duration) *PendingCleanup {
	return &PendingCleanup{
		store:    store,
		log:      logger,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *PendingCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("pending signup cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *PendingCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("pending signup cleanup worker stopped")
}

func (w *PendingCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *PendingCleanup) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.store.PurgePending(ctx, w.now().UTC().Add(-w.maxAge))
	if err != nil {
		w.log.Error("failed to purge pending signups", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("purged pending signups", zap.Int64("count", count))
	}
}
