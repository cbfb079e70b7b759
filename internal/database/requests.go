package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, description, requester_id, created`

func (db *DB) CreateRequest(ctx context.Context, req *models.Request) error {
	if req.Created.IsZero() {
		req.Created = db.now()
	}
	req.Created = models.Normalize(req.Created)

	err := db.QueryRowContext(ctx,
		`INSERT INTO requests (description, requester_id, created) VALUES (?, ?, ?) RETURNING id`,
		req.Description, req.RequesterID, req.Created,
	).Scan(&req.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("requester %d: %w", req.RequesterID, ErrNotFound)
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.Request, error) {
	var r models.Request
	err := db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created)
	if err != nil {
		return nil, notFound(err)
	}
	r.Created = r.Created.UTC()
	return &r, nil
}

// ListRequestsByRequester returns the user's own requests, newest first.
func (db *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]models.Request, error) {
	return db.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests
		WHERE requester_id = ? ORDER BY created DESC, id DESC`, requesterID)
}

// ListRequestsExcept returns requests made by everybody but userID, newest first.
func (db *DB) ListRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]models.Request, error) {
	clause, pageArgs := db.pageClause(page)
	args := append([]any{userID}, pageArgs...)
	return db.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests
		WHERE requester_id <> ? ORDER BY created DESC, id DESC`+clause, args...)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]models.Request, 0)
	for rows.Next() {
		var r models.Request
		if err := rows.Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Created = r.Created.UTC()
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
