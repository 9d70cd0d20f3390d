// Package outbox makes like notifications durable. The like itself is applied
// optimistically in the feed store and never rolled back; what this package
// adds is a persisted queue so the best-effort delivery to the origin survives
// restarts and gets a bounded number of retries instead of one fire-and-forget
// attempt.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status values for a queued notification.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusDead      = "dead"
)

// ErrNotificationNotFound indicates the queue row does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification is one like/unlike delta waiting to be delivered.
type Notification struct {
	ID            int64
	PostID        string
	Username      string
	Delta         int
	Attempts      int
	Status        string
	CreatedAt     time.Time
	NextAttemptAt time.Time
}

// Repository is the persistence boundary for the queue.
type Repository interface {
	// Enqueue inserts a pending notification and fills in its ID.
	Enqueue(ctx context.Context, n *Notification) error

	// NextPending returns up to limit pending notifications due at or before
	// now, oldest first.
	NextPending(ctx context.Context, now time.Time, limit int) ([]*Notification, error)

	// MarkDelivered finalizes a successfully delivered notification.
	MarkDelivered(ctx context.Context, id int64) error

	// MarkFailed records a failed attempt and schedules the next one.
	MarkFailed(ctx context.Context, id int64, attempts int, nextAttempt time.Time) error

	// MarkDead retires a notification that exhausted its attempts.
	MarkDead(ctx context.Context, id int64) error
}

// Queue is the write side handed to the API layer: it only enqueues, so a
// slow origin can never block the optimistic like path.
type Queue struct {
	repo Repository
}

// NewQueue wraps a repository in the enqueue-only interface.
func NewQueue(repo Repository) *Queue {
	return &Queue{repo: repo}
}

// NotifyLike queues a like delta for background delivery.
func (q *Queue) NotifyLike(ctx context.Context, postID, username string, delta int) error {
	n := &Notification{
		PostID:        postID,
		Username:      username,
		Delta:         delta,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
		NextAttemptAt: time.Now().UTC(),
	}
	if err := q.repo.Enqueue(ctx, n); err != nil {
		return fmt.Errorf("enqueueing like notification: %w", err)
	}
	return nil
}
