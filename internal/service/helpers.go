package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func userNotFound(id int64) string    { return fmt.Sprintf("user with id %d not found", id) }
func itemNotFound(id int64) string    { return fmt.Sprintf("item with id %d not found", id) }
func bookingNotFound(id int64) string { return fmt.Sprintf("booking with id %d not found", id) }
func requestNotFound(id int64) string { return fmt.Sprintf("request with id %d not found", id) }

// requireUser fails with a not-found error unless the user exists.
func requireUser(ctx context.Context, users domain.UserRepository, id int64) error {
	ok, err := users.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound("%s", userNotFound(id))
	}
	return nil
}

// publish emits an event; delivery failures are logged and do not fail the operation.
func publish(bus domain.EventPublisher, logger zerolog.Logger, eventType string, aggregateID int64, payload any) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, aggregateID, payload); err != nil {
		logger.Error().Err(err).Str("event", eventType).Int64("aggregate_id", aggregateID).Msg("failed to publish event")
	}
}

func systemNow() time.Time { return models.Normalize(time.Now()) }
