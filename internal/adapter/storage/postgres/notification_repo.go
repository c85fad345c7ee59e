package postgres

import (
	"context"
	"fmt"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
)

// NotificationRepo implements ports.NotificationRepository.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, account_id, notif_type, title, message, related_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.AccountID, n.Type, n.Title, n.Message, n.RelatedID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByAccount returns an account's notifications, newest first.
func (r *NotificationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT id, account_id, notif_type, title, message, related_id, is_read, created_at
		FROM notifications WHERE account_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.AccountID, &n.Type, &n.Title, &n.Message,
			&n.RelatedID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks a single notification as read, scoped to its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND account_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}
	return nil
}

// MarkAllRead marks all of an account's notifications as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE account_id = $1 AND is_read = FALSE`

	if _, err := r.pool.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread notifications for an account.
func (r *NotificationRepo) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND is_read = FALSE`

	var count int64
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
