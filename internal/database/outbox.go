package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateOutboxEvent(ctx context.Context, ev *models.OutboxEvent) error {
	now := db.now()
	if ev.Status == "" {
		ev.Status = models.OutboxPending
	}
	err := db.QueryRowContext(ctx,
		`INSERT INTO outbox (event_id, event_type, aggregate_id, payload, status, retry_count, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?) RETURNING id`,
		ev.EventID, ev.EventType, ev.AggregateID, ev.Payload, ev.Status, now,
	).Scan(&ev.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("outbox event %s: %w", ev.EventID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	ev.CreatedAt = now
	return nil
}

// PendingOutboxEvents returns events due for delivery, oldest first.
func (db *DB) PendingOutboxEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, event_id, event_type, aggregate_id, payload, status, retry_count, last_error,
		        created_at, processed_at, next_retry_at
		 FROM outbox
		 WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
		 ORDER BY id ASC LIMIT ?`,
		models.OutboxPending, models.OutboxRetry, db.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.AggregateID, &e.Payload, &e.Status,
			&e.RetryCount, &e.LastError, &e.CreatedAt, &e.ProcessedAt, &e.NextRetryAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateOutboxStatus records a delivery outcome. A retry bumps retry_count;
// completed and failed stamp processed_at.
func (db *DB) UpdateOutboxStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var lastErr *string
	if errMsg != "" {
		lastErr = &errMsg
	}
	if nextRetryAt != nil {
		t := models.Normalize(*nextRetryAt)
		nextRetryAt = &t
	}

	var (
		query string
		args  []any
	)
	switch status {
	case models.OutboxRetry:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []any{status, lastErr, nextRetryAt, id}
	case models.OutboxCompleted, models.OutboxFailed:
		now := db.now()
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = NULL, processed_at = ? WHERE id = ?`
		args = []any{status, lastErr, now, id}
	default:
		return fmt.Errorf("unknown outbox status %q", status)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// OutboxStats counts events per status.
func (db *DB) OutboxStats(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox events: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats[status] = n
	}
	return stats, rows.Err()
}
