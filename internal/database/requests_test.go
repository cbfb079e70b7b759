package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	base := time.Now().Add(-time.Hour)
	a1 := &models.Request{Description: "ladder", RequesterID: alice.ID, Created: base}
	a2 := &models.Request{Description: "tent", RequesterID: alice.ID, Created: base.Add(time.Minute)}
	b1 := &models.Request{Description: "kayak", RequesterID: bob.ID, Created: base.Add(2 * time.Minute)}
	for _, r := range []*models.Request{a1, a2, b1} {
		require.NoError(t, db.CreateRequest(ctx, r))
	}

	got, err := db.GetRequestByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, "ladder", got.Description)
	assert.Equal(t, alice.ID, got.RequesterID)

	_, err = db.GetRequestByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	own, err := db.ListRequestsByRequester(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, a2.ID, own[0].ID)
	assert.Equal(t, a1.ID, own[1].ID)

	others, err := db.ListRequestsExcept(ctx, bob.ID, models.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, a2.ID, others[0].ID)

	others, err = db.ListRequestsExcept(ctx, bob.ID, models.Page{From: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, a1.ID, others[0].ID)

	err = db.CreateRequest(ctx, &models.Request{Description: "x", RequesterID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRequest_KeepsItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	requester := createTestUser(t, db, "Requester", "req@example.com")
	req := &models.Request{Description: "need a ladder", RequesterID: requester.ID}
	require.NoError(t, db.CreateRequest(ctx, req))

	ladder := &models.Item{Name: "Ladder", Description: "3m", Available: true, OwnerID: owner.ID, RequestID: &req.ID}
	require.NoError(t, db.CreateItem(ctx, ladder))

	require.NoError(t, db.DeleteUser(ctx, requester.ID))

	got, err := db.GetItemByID(ctx, ladder.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RequestID)
}
