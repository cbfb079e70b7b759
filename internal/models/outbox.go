package models

import "time"

const (
	OutboxPending   = "pending"
	OutboxRetry     = "retry"
	OutboxCompleted = "completed"
	OutboxFailed    = "failed"
)

// OutboxEvent is a domain event waiting to be relayed to the broker.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	EventID     string     `json:"event_id"`
	EventType   string     `json:"event_type"`
	AggregateID int64      `json:"aggregate_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
