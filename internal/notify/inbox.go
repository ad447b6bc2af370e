package notify

import (
	"context"
	"fmt"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// Inbox stores notifications for users to read back. It is the Sink used
// when no external transport is configured.
type Inbox interface {
	Sink
	List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type inbox struct {
	repo repository.Notification
}

// NewInbox creates an inbox over the notification repository
func NewInbox(repo repository.Notification) Inbox {
	return &inbox{repo: repo}
}

func (i *inbox) Deliver(ctx context.Context, n domain.Notification) error {
	return i.repo.InsertNotification(ctx, n)
}

func (i *inbox) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	list, err := i.repo.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

func (i *inbox) MarkRead(ctx context.Context, userID, notificationID string) error {
	return i.repo.MarkNotificationRead(ctx, userID, notificationID)
}

func (i *inbox) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return i.repo.MarkAllNotificationsRead(ctx, userID)
}
