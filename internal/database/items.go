package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (models.Item, error) {
	var (
		it        models.Item
		requestID sql.NullInt64
	)
	if err := s.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID,
		&requestID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return it, err
	}
	if requestID.Valid {
		id := requestID.Int64
		it.RequestID = &id
	}
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()
	return it, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	now := db.now()
	err := db.QueryRowContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID, now, now,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("item owner or request: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	now := db.now()
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error) {
	clause, pageArgs := db.pageClause(page)
	args := append([]any{ownerID}, pageArgs...)
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`+clause, args...)
}

// SearchItems matches available items whose name or description contains text, ignoring case.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	clause, pageArgs := db.pageClause(page)
	args := append([]any{true, pattern, pattern}, pageArgs...)
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE available = ?
		  AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
		ORDER BY id`+clause, args...)
}

// ListItemsByRequests groups the items answering each of the given requests.
func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) (map[int64][]models.Item, error) {
	out := make(map[int64][]models.Item, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}
	items, err := db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE request_id IN (`+placeholders(len(requestIDs))+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[*it.RequestID] = append(out[*it.RequestID], it)
	}
	return out, nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
