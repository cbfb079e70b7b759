package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.status, b.item_id, i.name, i.owner_id,
	b.booker_id, u.name, b.created_at, b.updated_at
	FROM bookings b
	JOIN items i ON i.id = b.item_id
	JOIN users u ON u.id = b.booker_id`

func scanBooking(s rowScanner) (models.Booking, error) {
	var b models.Booking
	err := s.Scan(&b.ID, &b.Start, &b.End, &b.Status, &b.ItemID, &b.ItemName, &b.ItemOwnerID,
		&b.BookerID, &b.BookerName, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// CreateBooking inserts a WAITING booking after re-reading the item inside
// the same transaction. It returns ErrNotFound for a missing item and
// ErrNotAvailable when the item was switched off meanwhile.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := db.now()
	booking.Start = models.Normalize(booking.Start)
	booking.End = models.Normalize(booking.End)

	err := db.WithTx(ctx, func(tx *Tx) error {
		var (
			available bool
			itemName  string
			ownerID   int64
		)
		err := tx.QueryRowContext(ctx, `SELECT available, name, owner_id FROM items WHERE id = ?`, booking.ItemID).
			Scan(&available, &itemName, &ownerID)
		if err != nil {
			return notFound(err)
		}
		if !available {
			return ErrNotAvailable
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO bookings (start_at, end_at, status, item_id, booker_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			booking.Start, booking.End, booking.Status, booking.ItemID, booking.BookerID, now, now,
		).Scan(&booking.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("booker %d: %w", booking.BookerID, ErrNotFound)
			}
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		booking.ItemName = itemName
		booking.ItemOwnerID = ownerID
		return nil
	})
	if err != nil {
		return err
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// TransitionBookingStatus moves a booking to status `to` only if it currently
// holds one of `from`. A booking in any other status yields ErrConflict.
func (db *DB) TransitionBookingStatus(ctx context.Context, id int64, to models.BookingStatus, from ...models.BookingStatus) error {
	if len(from) == 0 {
		return errors.New("at least one source status is required")
	}
	args := []any{to, db.now(), id}
	for _, s := range from {
		args = append(args, s)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status IN (`+placeholders(len(from))+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrConflict
	}
	return nil
}

// ListBookings returns bookings for one booker or one owner filtered by state,
// newest start first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, error) {
	var (
		where []string
		args  []any
	)

	switch {
	case filter.BookerID != 0:
		where = append(where, "b.booker_id = ?")
		args = append(args, filter.BookerID)
	case filter.OwnerID != 0:
		where = append(where, "i.owner_id = ?")
		args = append(args, filter.OwnerID)
	default:
		return nil, errors.New("booker or owner is required")
	}

	now := models.Normalize(filter.Now)
	switch filter.State {
	case models.StateAll, "":
	case models.StateCurrent:
		where = append(where, "b.start_at < ? AND b.end_at > ?")
		args = append(args, now, now)
	case models.StatePast:
		where = append(where, "b.end_at < ?")
		args = append(args, now)
	case models.StateFuture:
		where = append(where, "b.start_at > ?")
		args = append(args, now)
	case models.StateWaiting:
		where = append(where, "b.status = ?")
		args = append(args, models.BookingWaiting)
	case models.StateRejected:
		where = append(where, "b.status = ?")
		args = append(args, models.BookingRejected)
	case models.StateCanceled:
		where = append(where, "b.status = ?")
		args = append(args, models.BookingCanceled)
	default:
		return nil, models.ErrUnsupportedState
	}

	clause, pageArgs := db.pageClause(page)
	args = append(args, pageArgs...)

	query := bookingSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY b.start_at DESC, b.id DESC` + clause
	return db.queryBookings(ctx, query, args...)
}

// LastBooking is the approved booking of the item with the latest start not after now.
func (db *DB) LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.optionalBooking(ctx, bookingSelect+`
		WHERE b.item_id = ? AND b.status = ? AND b.start_at <= ?
		ORDER BY b.start_at DESC, b.id DESC LIMIT 1`,
		itemID, models.BookingApproved, models.Normalize(now))
}

// NextBooking is the approved booking of the item with the earliest start after now.
func (db *DB) NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.optionalBooking(ctx, bookingSelect+`
		WHERE b.item_id = ? AND b.status = ? AND b.start_at > ?
		ORDER BY b.start_at ASC, b.id ASC LIMIT 1`,
		itemID, models.BookingApproved, models.Normalize(now))
}

// HasFinishedBooking reports whether the user has an approved booking of the item that ended before now.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND status = ? AND end_at < ?`,
		bookerID, itemID, models.BookingApproved, models.Normalize(now),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return n > 0, nil
}

func (db *DB) optionalBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
