package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/broker"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"
)

const recordTimeout = 5 * time.Second

// NewOutboxRecorder returns an event handler that stores each published
// event in the outbox for later relay. Re-delivered event ids are ignored.
func NewOutboxRecorder(repo domain.OutboxRepository, logger *zerolog.Logger) events.EventHandler {
	log := logging.Component(logger, "outbox_recorder")
	return func(ev *events.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		err := repo.CreateOutboxEvent(ctx, &models.OutboxEvent{
			EventID:     ev.ID,
			EventType:   ev.Type,
			AggregateID: ev.AggregateID,
			Payload:     string(ev.Payload),
			Status:      models.OutboxPending,
		})
		switch {
		case errors.Is(err, database.ErrDuplicate):
			log.Debug().Str("event_id", ev.ID).Msg("event already recorded")
			return nil
		case err != nil:
			return fmt.Errorf("record %s: %w", ev.Type, err)
		}
		return nil
	}
}

// OutboxWorker relays recorded events to the message broker.
type OutboxWorker struct {
	repo         domain.OutboxRepository
	publisher    domain.MessagePublisher
	retryPolicy  RetryPolicy
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
	now          func() time.Time
}

func NewOutboxWorker(
	repo domain.OutboxRepository,
	publisher domain.MessagePublisher,
	retry RetryPolicy,
	pollInterval time.Duration,
	batchSize int,
	logger *zerolog.Logger,
) *OutboxWorker {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &OutboxWorker{
		repo:         repo,
		publisher:    publisher,
		retryPolicy:  retry.withDefaults(),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logging.Component(logger, "outbox_worker"),
		now:          time.Now,
	}
}

// Start polls the outbox until ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Drain full batches without waiting for the next tick.
		for {
			n, err := w.ProcessBatch(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("fetch pending outbox events")
				break
			}
			if n < w.batchSize || ctx.Err() != nil {
				break
			}
		}
	}
}

// ProcessBatch relays one batch of due events and reports how many it handled.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	pending, err := w.repo.PendingOutboxEvents(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	for i := range pending {
		w.processEvent(ctx, &pending[i])
	}
	return len(pending), nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, ev *models.OutboxEvent) {
	key, value, headers, err := broker.Message(*ev)
	if err != nil {
		w.failEvent(ctx, ev, err)
		return
	}

	if err := w.publisher.Publish(ctx, key, value, headers); err != nil {
		w.retryOrFail(ctx, ev, err)
		return
	}

	if err := w.repo.UpdateOutboxStatus(ctx, ev.ID, models.OutboxCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", ev.ID).Msg("mark completed")
	}
	metrics.IncOutbox(models.OutboxCompleted)
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, ev *models.OutboxEvent, cause error) {
	attempt := ev.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failEvent(ctx, ev, cause)
		return
	}

	next := w.now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.repo.UpdateOutboxStatus(ctx, ev.ID, models.OutboxRetry, cause.Error(), &next); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", ev.ID).Msg("mark retry")
	}
	w.logger.Warn().Err(cause).
		Int64("outbox_id", ev.ID).
		Int("attempt", attempt).
		Time("next_retry_at", next).
		Msg("outbox delivery failed, will retry")
	metrics.IncOutbox(models.OutboxRetry)
}

func (w *OutboxWorker) failEvent(ctx context.Context, ev *models.OutboxEvent, cause error) {
	if err := w.repo.UpdateOutboxStatus(ctx, ev.ID, models.OutboxFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", ev.ID).Msg("mark failed")
	}
	w.logger.Error().Err(cause).
		Int64("outbox_id", ev.ID).
		Str("event_type", ev.EventType).
		Msg("outbox event dead-lettered")
	metrics.IncOutbox(models.OutboxFailed)
}
