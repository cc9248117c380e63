package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultRetryWorkers  = 4
	defaultRetryQueue    = 1024
	defaultRetryAttempts = 8
	retryDrainTimeout    = 10 * time.Second
)

// RetryDispatcher re-applies reputation events whose synchronous write failed. Events
// carry idempotency keys, so a retry that races a late success is harmless.
type RetryDispatcher struct {
	apply    func(ctx context.Context, event *models.ReputationEvent) error
	queue    chan *models.ReputationEvent
	workers  int
	attempts uint64
	newBack  func() backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc
	pool   *pool.Pool

	mu      sync.RWMutex
	started bool
	closed  bool
}

// RetryOption configures a RetryDispatcher.
type RetryOption func(*RetryDispatcher)

// WithRetryWorkers sets the number of concurrent retry goroutines.
func WithRetryWorkers(n int) RetryOption {
	return func(d *RetryDispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRetryBackOff replaces the exponential backoff policy.
func WithRetryBackOff(attempts uint64, newBack func() backoff.BackOff) RetryOption {
	return func(d *RetryDispatcher) {
		d.attempts = attempts
		d.newBack = newBack
	}
}

// NewRetryDispatcher builds a dispatcher around apply. Start must be called before
// events are processed.
func NewRetryDispatcher(apply func(ctx context.Context, event *models.ReputationEvent) error, opts ...RetryOption) *RetryDispatcher {
	d := &RetryDispatcher{
		apply:    apply,
		queue:    make(chan *models.ReputationEvent, defaultRetryQueue),
		workers:  defaultRetryWorkers,
		attempts: defaultRetryAttempts,
		newBack: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(200*time.Millisecond),
				backoff.WithMaxInterval(30*time.Second),
				backoff.WithMaxElapsedTime(10*time.Minute),
			)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker pool.
func (d *RetryDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.pool = pool.New().WithMaxGoroutines(d.workers)
	for i := 0; i < d.workers; i++ {
		d.pool.Go(d.work)
	}
}

// Enqueue schedules event for retry. It never blocks; when the queue is full the
// event is dropped and logged so an operator can run a rebuild.
func (d *RetryDispatcher) Enqueue(event *models.ReputationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "dispatcher closed")
		return false
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.drop(event, "retry queue full")
		return false
	}
}

// Close stops accepting events, waits up to timeout for queued retries, then cancels
// the rest.
func (d *RetryDispatcher) Close(timeout time.Duration) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		for event := range d.queue {
			d.drop(event, "dispatcher never started")
		}
		return
	}

	done := make(chan struct{})
	go func() {
		d.pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		d.cancel()
		<-done
	}
	d.cancel()
}

func (d *RetryDispatcher) work() {
	for event := range d.queue {
		if d.ctx.Err() != nil {
			d.drop(event, "shutdown")
			continue
		}
		d.retry(event)
	}
}

func (d *RetryDispatcher) retry(event *models.ReputationEvent) {
	b := backoff.WithContext(backoff.WithMaxRetries(d.newBack(), d.attempts), d.ctx)
	err := backoff.Retry(func() error {
		err := d.apply(d.ctx, event)
		if err != nil {
			observability.ReputationApplyFailures.WithLabelValues("retry").Inc()
		}
		return err
	}, b)
	if err != nil {
		d.drop(event, err.Error())
		return
	}
	middleware.Logger.Info("reputation event applied after retry",
		slog.String("idempotency_key", event.IdempotencyKey),
		slog.Uint64("user_id", uint64(event.UserID)))
}

func (d *RetryDispatcher) drop(event *models.ReputationEvent, reason string) {
	observability.ReputationApplyFailures.WithLabelValues("dropped").Inc()
	middleware.Logger.Error("reputation event dropped",
		slog.String("reason", reason),
		slog.String("idempotency_key", event.IdempotencyKey),
		slog.Uint64("user_id", uint64(event.UserID)),
		slog.String("event_type", event.EventType),
		slog.Int("points", event.Points))
}
