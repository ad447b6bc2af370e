package repository

import (
	"context"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Notification defines the interface for the notification inbox
type Notification interface {
	InsertNotification(ctx context.Context, n domain.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	// MarkNotificationRead returns domain.ErrNotFound when the notification does not belong to the user.
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
}
