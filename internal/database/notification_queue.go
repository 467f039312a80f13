package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const notificationColumns = `id, event_type, booking_id, payload, status, retry_count, last_error,
                 created_at, processed_at, next_retry_at`

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notification_queue (event_type, booking_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if n.Status == "" {
		n.Status = models.NotificationPending
	}
	now := storeTime(time.Now())
	result, err := db.ExecContext(ctx, query,
		n.EventType,
		n.BookingID,
		n.Payload,
		n.Status,
		n.RetryCount,
		n.LastError,
		now,
		storeTimePtr(n.NextRetryAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.CreatedAt = now
	return nil
}

// GetPendingNotifications returns queued deliveries whose retry time has come.
func (db *DB) GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification_queue
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`
	return db.queryNotifications(ctx, query,
		models.NotificationPending, models.NotificationRetry, storeTime(time.Now()), limit)
}

func (db *DB) GetFailedNotifications(ctx context.Context) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification_queue
              WHERE status = ? ORDER BY created_at DESC, id DESC`
	return db.queryNotifications(ctx, query, models.NotificationFailed)
}

func (db *DB) UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	var lastError *string
	if errMsg != "" {
		lastError = &errMsg
	}
	next := storeTimePtr(nextRetryAt)

	switch status {
	case models.NotificationRetry:
		query = `UPDATE notification_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, lastError, next, id}
	case models.NotificationCompleted, models.NotificationFailed:
		now := storeTime(time.Now())
		query = `UPDATE notification_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, next, now, id}
	default:
		query = `UPDATE notification_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, next, id}
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound("notification", id)
	}
	return nil
}

func (db *DB) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]models.Notification, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID, &n.EventType, &n.BookingID, &n.Payload, &n.Status, &n.RetryCount,
			&n.LastError, &n.CreatedAt, &n.ProcessedAt, &n.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func storeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := storeTime(*t)
	return &v
}
