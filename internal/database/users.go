package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const userColumns = `id, name, email, created_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := db.now()
	err := db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?) RETURNING id`,
		user.Name, user.Email, now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user email %q: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = now
	return nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ?`,
		user.Name, user.Email, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user email %q: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes the user; items, bookings, comments and requests cascade.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}
