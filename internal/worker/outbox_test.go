package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"
)

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, key, _ []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, headers["event_type"]+":"+string(key))
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newRecordingBus(t *testing.T, db *database.DB) *events.EventBus {
	t.Helper()
	logger := zerolog.Nop()
	bus := events.NewEventBus()
	bus.SubscribeAll(NewOutboxRecorder(db, &logger))
	return bus
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(0))
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))
	assert.Equal(t, 5*time.Second, p.NextDelay(60))

	d := RetryPolicy{}.withDefaults()
	assert.Equal(t, DefaultRetryPolicy(), d)
}

func TestOutboxRecorderIgnoresDuplicates(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.Nop()
	record := NewOutboxRecorder(db, &logger)

	ev := &events.Event{ID: "evt-1", Type: events.EventItemCreated, AggregateID: 3, Payload: []byte(`{"item_id":3}`)}
	require.NoError(t, record(ev))
	require.NoError(t, record(ev))

	stats, err := db.OutboxStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.OutboxPending])
}

func TestOutboxWorkerDelivers(t *testing.T) {
	db := newTestDB(t)
	bus := newRecordingBus(t, db)
	pub := &fakePublisher{}
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, pub, RetryPolicy{}, time.Second, 10, &logger)
	ctx := context.Background()

	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, 11, events.BookingEventPayload{BookingID: 11}))
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, 11, events.BookingEventPayload{BookingID: 11}))

	n, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"booking.created:11", "booking.approved:11"}, pub.published)

	n, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stats, err := db.OutboxStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[models.OutboxCompleted])
}

func TestOutboxWorkerRetriesThenFails(t *testing.T) {
	db := newTestDB(t)
	bus := newRecordingBus(t, db)
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, pub, RetryPolicy{MaxRetries: 2, InitialDelay: time.Hour}, time.Second, 10, &logger)
	ctx := context.Background()

	require.NoError(t, bus.PublishJSON(events.EventRequestCreated, 5, events.RequestEventPayload{RequestID: 5}))

	n, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := db.OutboxStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.OutboxRetry])

	n, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "retry is scheduled an hour ahead")

	// Second attempt reaches MaxRetries.
	w.retryOrFail(ctx, &models.OutboxEvent{ID: 1, RetryCount: 1}, errors.New("broker unavailable"))
	stats, err = db.OutboxStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.OutboxFailed])
	assert.Zero(t, stats[models.OutboxRetry])
}

func TestOutboxWorkerStartStopsOnCancel(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, &fakePublisher{}, RetryPolicy{}, 10*time.Millisecond, 5, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
