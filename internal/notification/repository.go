package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ltcare/familyhub/internal/database"
)

const notificationColumns = `id, recipient_id, actor_id, type, title, message, family_id, invitation_id, is_read, created_at`

// Repository handles notification data persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new notification repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx database.Querier) *Repository {
	return &Repository{db: tx}
}

func scanNotification(row interface{ Scan(...any) error }) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.ActorID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.FamilyID,
		&n.InvitationID,
		&n.IsRead,
		&n.CreatedAt,
	)
	return n, err
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (recipient_id, actor_id, type, title, message, family_id, invitation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + notificationColumns

	created, err := scanNotification(r.db.QueryRowContext(ctx, query,
		n.RecipientID, n.ActorID, n.Type, n.Title, n.Message, n.FamilyID, n.InvitationID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return created, nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListByRecipientID retrieves a page of notifications for a user, newest first
func (r *Repository) ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	filter := ` WHERE recipient_id = ?`
	args := []any{recipientID}
	if unreadOnly {
		filter += ` AND is_read = ?`
		args = append(args, false)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + filter +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkAsRead marks a notification as read
func (r *Repository) MarkAsRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = ? WHERE recipient_id = ? AND is_read = ?`, true, recipientID, false,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return updated, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *Repository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = ?`, recipientID, false,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
