package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourfuture/platform/internal/domain"
)

// NotificationRepository defines persistence operations for stored
// admin-to-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListForUser(ctx context.Context, userID int64) ([]*domain.Notification, error)
}

type notificationRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewNotificationRepository creates a new SQL-backed notification repository.
func NewNotificationRepository(db *sql.DB, log *slog.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log,
	}
}

// Create persists a notification and fills in the generated fields.
func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
		INSERT INTO notifications (user_id, admin_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		notification.UserID,
		notification.AdminID,
		notification.Message,
	).Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create notification", slog.Int64("user_id", notification.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListForUser returns the user's notifications, newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	const query = `
		SELECT id, user_id, admin_id, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.AdminID,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}

	return notifications, rows.Err()
}
