package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = db.now()
	}
	comment.Created = models.Normalize(comment.Created)

	err := db.QueryRowContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?) RETURNING id`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.Created,
	).Scan(&comment.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("comment item or author: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListCommentsByItem returns the item's comments, newest first.
func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx, `SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.item_id = ?
		ORDER BY c.created DESC, c.id DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Created = c.Created.UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
