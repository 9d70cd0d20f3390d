package outbox

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"Vigora/internal/origin"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 6
	defaultBaseBackoff  = 10 * time.Second
	drainBatchSize      = 32
)

// Dispatcher drains the queue in the background, delivering notifications
// through the origin client. Deliveries are paced by a rate limiter so a
// burst of likes does not hammer the webhook.
type Dispatcher struct {
	repo    Repository
	origin  origin.Client
	logger  *slog.Logger
	limiter *rate.Limiter

	pollInterval time.Duration
	maxAttempts  int
	baseBackoff  time.Duration
}

// NewDispatcher creates a dispatcher delivering at most perSecond
// notifications per second. Zero values select the defaults.
func NewDispatcher(repo Repository, originClient origin.Client, perSecond float64, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Dispatcher{
		repo:         repo,
		origin:       originClient,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(perSecond), 1),
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
		baseBackoff:  defaultBaseBackoff,
	}
}

// Run polls until the context is cancelled. Intended to be started as a
// background goroutine from main.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DrainOnce(ctx)
		}
	}
}

// DrainOnce delivers one batch of due notifications and returns how many were
// delivered. Exported so tests (and shutdown paths) can drive the dispatcher
// without the polling loop.
func (d *Dispatcher) DrainOnce(ctx context.Context) int {
	pending, err := d.repo.NextPending(ctx, time.Now().UTC(), drainBatchSize)
	if err != nil {
		d.logger.Error("outbox poll failed", "error", err)
		return 0
	}

	delivered := 0
	for _, n := range pending {
		if err := d.limiter.Wait(ctx); err != nil {
			return delivered
		}
		if d.deliver(ctx, n) {
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, n *Notification) bool {
	err := d.origin.NotifyLike(ctx, n.PostID, n.Username, n.Delta)
	if err == nil {
		if err := d.repo.MarkDelivered(ctx, n.ID); err != nil {
			d.logger.Error("failed to mark notification delivered", "id", n.ID, "error", err)
		}
		return true
	}

	attempts := n.Attempts + 1
	if attempts >= d.maxAttempts {
		// The displayed like count may now diverge from the origin until the
		// next full fetch; that is the accepted contract for likes.
		d.logger.Warn("like notification retired after max attempts",
			"id", n.ID,
			"post", n.PostID,
			"attempts", attempts,
			"error", err)
		if err := d.repo.MarkDead(ctx, n.ID); err != nil {
			d.logger.Error("failed to mark notification dead", "id", n.ID, "error", err)
		}
		return false
	}

	next := time.Now().UTC().Add(d.backoff(attempts))
	d.logger.Info("like notification delivery failed, will retry",
		"id", n.ID,
		"post", n.PostID,
		"attempts", attempts,
		"next_attempt", next,
		"error", err)
	if err := d.repo.MarkFailed(ctx, n.ID, attempts, next); err != nil {
		d.logger.Error("failed to record notification failure", "id", n.ID, "error", err)
	}
	return false
}

// backoff doubles per attempt from the base, capped at ~10 minutes.
func (d *Dispatcher) backoff(attempts int) time.Duration {
	backoff := d.baseBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff > 10*time.Minute {
			return 10 * time.Minute
		}
	}
	return backoff
}
