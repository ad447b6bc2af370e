package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

const (
	sqlInsertNotification = `
		INSERT INTO notifications (notification_id, user_id, kind, proposal_id, payload, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	sqlListNotifications = `
		SELECT notification_id, user_id, kind, proposal_id, payload, read, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read = FALSE)
		ORDER BY created_at DESC, notification_id`

	sqlMarkNotificationRead = `
		UPDATE notifications SET read = TRUE
		WHERE notification_id = $1 AND user_id = $2`

	sqlMarkAllNotificationsRead = `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND read = FALSE`
)

// NotificationRepository stores the notification inbox
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// InsertNotification stores one notification
func (r *NotificationRepository) InsertNotification(ctx context.Context, n domain.Notification) error {
	payload := n.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	_, err := r.db.Exec(ctx, sqlInsertNotification, n.ID, n.UserID, string(n.Kind), n.ProposalID, payload, n.Read, n.CreatedAt)
	if err != nil {
		return classify(err, ErrMsgFailedToInsertNotification)
	}
	return nil
}

// ListNotifications returns newest first
func (r *NotificationRepository) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, sqlListNotifications, userID, unreadOnly)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListNotifications)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var n domain.Notification
		var kind string
		err := row.Scan(&n.ID, &n.UserID, &kind, &n.ProposalID, &n.Payload, &n.Read, &n.CreatedAt)
		n.Kind = domain.NotificationKind(kind)
		return n, err
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListNotifications)
	}
	return list, nil
}

// MarkNotificationRead marks one of the user's notifications read
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	tag, err := r.db.Exec(ctx, sqlMarkNotificationRead, notificationID, userID)
	if err != nil {
		return classify(err, ErrMsgFailedToMarkRead)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, notificationID)
	}
	return nil
}

// MarkAllNotificationsRead returns how many notifications changed
func (r *NotificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	tag, err := r.db.Exec(ctx, sqlMarkAllNotificationsRead, userID)
	if err != nil {
		return 0, classify(err, ErrMsgFailedToMarkRead)
	}
	return int(tag.RowsAffected()), nil
}
