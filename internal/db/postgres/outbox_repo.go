package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Vigora/internal/core/outbox"
)

type postgresOutboxRepo struct {
	db *sql.DB
}

// NewOutboxRepository creates a PostgreSQL-backed like-notification queue.
func NewOutboxRepository(db *sql.DB) outbox.Repository {
	return &postgresOutboxRepo{db: db}
}

func (r *postgresOutboxRepo) Enqueue(ctx context.Context, n *outbox.Notification) error {
	query := `
		INSERT INTO like_outbox (
			post_id, username, delta, attempts, status,
			created_at, next_attempt_at
		) VALUES ($1, $2, $3, 0, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		n.PostID, n.Username, n.Delta, outbox.StatusPending,
		n.CreatedAt, n.NextAttemptAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	return nil
}

func (r *postgresOutboxRepo) NextPending(ctx context.Context, now time.Time, limit int) ([]*outbox.Notification, error) {
	query := `
		SELECT id, post_id, username, delta, attempts, status, created_at, next_attempt_at
		FROM like_outbox
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, outbox.StatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending notifications: %w", err)
	}
	defer rows.Close()

	var pending []*outbox.Notification
	for rows.Next() {
		var n outbox.Notification
		if err := rows.Scan(
			&n.ID, &n.PostID, &n.Username, &n.Delta,
			&n.Attempts, &n.Status, &n.CreatedAt, &n.NextAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		pending = append(pending, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return pending, nil
}

func (r *postgresOutboxRepo) MarkDelivered(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, outbox.StatusDelivered)
}

func (r *postgresOutboxRepo) MarkDead(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, outbox.StatusDead)
}

func (r *postgresOutboxRepo) MarkFailed(ctx context.Context, id int64, attempts int, nextAttempt time.Time) error {
	query := `
		UPDATE like_outbox
		SET attempts = $2, next_attempt_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, attempts, nextAttempt)
	if err != nil {
		return fmt.Errorf("failed to record notification failure: %w", err)
	}
	return checkRowAffected(result)
}

func (r *postgresOutboxRepo) setStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE like_outbox SET status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return checkRowAffected(result)
}

func checkRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return outbox.ErrNotificationNotFound
	}
	return nil
}
