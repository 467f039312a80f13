package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_date, b.end_date, b.item_id, i.name, i.owner_id,
                 b.booker_id, u.name, u.email, b.status, b.version, b.created_at, b.updated_at
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              JOIN users u ON u.id = b.booker_id`

const bookingOrder = ` ORDER BY b.start_date DESC, b.id ASC`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := storeTime(time.Now())
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, version, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, 1, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			storeTime(booking.Start),
			storeTime(booking.End),
			booking.ItemID,
			booking.BookerID,
			booking.Status,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		created, err := scanBooking(tx.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
		if err != nil {
			return fmt.Errorf("failed to read created booking: %w", err)
		}
		*booking = *created
		return nil
	})
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("booking", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion applies status only if the row still carries fromVersion.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
		result, err := tx.ExecContext(ctx, query, status, storeTime(time.Now()), id, fromVersion)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}
		return nil
	})
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE b.booker_id = ?`+bookingOrder, bookerID)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE i.owner_id = ?`+bookingOrder, ownerID)
}

func (db *DB) GetBookingsByBookerAndItem(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE b.booker_id = ? AND b.item_id = ?`+bookingOrder, bookerID, itemID)
}

// GetActiveBookingsForItems returns every non-rejected booking of the given items in one query.
func (db *DB) GetActiveBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	query := bookingSelect + ` WHERE b.item_id IN (` + placeholders(len(itemIDs)) + `) AND b.status <> ?` +
		` ORDER BY b.item_id ASC, b.start_date ASC, b.id ASC`
	args := append(int64Args(itemIDs), models.StatusRejected)
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.BookerID, &b.BookerName, &b.BookerEmail, &b.Status, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
