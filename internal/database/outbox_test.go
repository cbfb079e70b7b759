package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestOutboxLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ev := &models.OutboxEvent{EventID: "e-1", EventType: "booking.created", AggregateID: 7, Payload: `{"id":7}`}
	require.NoError(t, db.CreateOutboxEvent(ctx, ev))
	assert.NotZero(t, ev.ID)
	assert.Equal(t, models.OutboxPending, ev.Status)

	dup := &models.OutboxEvent{EventID: "e-1", EventType: "booking.created", AggregateID: 7, Payload: `{}`}
	assert.ErrorIs(t, db.CreateOutboxEvent(ctx, dup), ErrDuplicate)

	pending, err := db.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "booking.created", pending[0].EventType)
	assert.Nil(t, pending[0].LastError)

	later := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateOutboxStatus(ctx, ev.ID, models.OutboxRetry, "broker down", &later))

	pending, err = db.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	earlier := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateOutboxStatus(ctx, ev.ID, models.OutboxRetry, "broker down", &earlier))

	pending, err = db.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "broker down", *pending[0].LastError)

	require.NoError(t, db.UpdateOutboxStatus(ctx, ev.ID, models.OutboxCompleted, "", nil))

	stats, err := db.OutboxStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.OutboxCompleted])

	assert.Error(t, db.UpdateOutboxStatus(ctx, ev.ID, "bogus", "", nil))
	assert.ErrorIs(t, db.UpdateOutboxStatus(ctx, 999, models.OutboxFailed, "x", nil), ErrNotFound)
}
