package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	author := createTestUser(t, db, "Author", "author@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	older := &models.Comment{Text: "first", ItemID: item.ID, AuthorID: author.ID, Created: time.Now().Add(-time.Hour)}
	newer := &models.Comment{Text: "second", ItemID: item.ID, AuthorID: author.ID}
	require.NoError(t, db.CreateComment(ctx, older))
	require.NoError(t, db.CreateComment(ctx, newer))
	assert.False(t, newer.Created.IsZero())

	comments, err := db.ListCommentsByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, newer.ID, comments[0].ID)
	assert.Equal(t, "Author", comments[0].AuthorName)
	assert.Equal(t, older.ID, comments[1].ID)

	err = db.CreateComment(ctx, &models.Comment{Text: "x", ItemID: 999, AuthorID: author.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}
