// Package worker runs queued recompute requests one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
	"github.com/pavelchuchma/vkct/pkg/logger"
	"github.com/pavelchuchma/vkct/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultRefreshTimeout = 5 * time.Minute
)

// Refresher recomputes and republishes the season.
type Refresher interface {
	Refresh(ctx context.Context, r queue.Request) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, r queue.Request) error

// Refresh implements Refresher.
func (f RefreshFunc) Refresh(ctx context.Context, r queue.Request) error { return f(ctx, r) }

// Queue defines how the worker receives requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker drains the queue sequentially so recomputes never overlap.
type Worker struct {
	queue     Queue
	refresher Refresher
	name      string
	timeout   time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu        sync.RWMutex
	processed int
	failed    int
	lastID    string
	lastErr   error
	lastAt    time.Time

	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(q Queue, refresher Refresher, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		refresher: refresher,
		name:      "refresh",
		timeout:   defaultRefreshTimeout,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes requests until ctx is done, Shutdown is called or the
// queue is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "refresh failed",
					logger.String("request", r.ID),
					logger.String("reason", r.Reason),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker after the refresh in progress, if any.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, r queue.Request) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	w.logger.Info(ctx, "refreshing standings",
		logger.String("request", r.ID),
		logger.String("reason", r.Reason),
		logger.Duration("waited", start.Sub(r.At)),
	)
	err := w.refresher.Refresh(ctx, r)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		err = fmt.Errorf("refresh %s: %w", r.ID, err)
	}
	metrics.RecordRefreshProcessed(outcome, time.Since(start))

	w.mu.Lock()
	w.processed++
	if err != nil {
		w.failed++
	}
	w.lastID, w.lastErr, w.lastAt = r.ID, err, time.Now()
	w.mu.Unlock()
	return err
}

// GetStats returns refresh statistics for monitoring.
func (w *Worker) GetStats() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := map[string]any{
		"refreshes":       w.processed,
		"failedRefreshes": w.failed,
	}
	if w.lastID != "" {
		stats["lastRefreshID"] = w.lastID
		stats["lastRefreshAt"] = w.lastAt
		if w.lastErr != nil {
			stats["lastRefreshError"] = w.lastErr.Error()
		}
	}
	return stats
}
