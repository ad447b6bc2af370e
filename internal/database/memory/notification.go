package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// InsertNotification stores one notification
func (s *Store) InsertNotification(ctx context.Context, n domain.Notification) error {
	return s.read(ctx, func() error {
		if _, exists := s.notifications[n.ID]; exists {
			return fmt.Errorf("notification %s already exists", n.ID)
		}
		n.Payload = maps.Clone(n.Payload)
		s.notifications[n.ID] = &n
		return nil
	})
}

// ListNotifications returns newest first
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.read(ctx, func() error {
		for _, n := range s.notifications {
			if n.UserID != userID || (unreadOnly && n.Read) {
				continue
			}
			c := *n
			c.Payload = maps.Clone(n.Payload)
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Notification) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

// MarkNotificationRead marks one of the user's notifications read
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.read(ctx, func() error {
		n, ok := s.notifications[notificationID]
		if !ok || n.UserID != userID {
			return fmt.Errorf("%w: notification %s", domain.ErrNotFound, notificationID)
		}
		n.Read = true
		return nil
	})
}

// MarkAllNotificationsRead returns how many notifications changed
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	changed := 0
	err := s.read(ctx, func() error {
		for _, n := range s.notifications {
			if n.UserID == userID && !n.Read {
				n.Read = true
				changed++
			}
		}
		return nil
	})
	return changed, err
}
