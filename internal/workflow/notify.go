package workflow

import (
	"context"
	"strings"

	"millflow/internal/models"
	"millflow/internal/store"
)

// addressedTo reports whether role is one of the comma separated recipients.
func addressedTo(n *models.Notification, role string) bool {
	for _, r := range strings.Split(n.Recipient, ",") {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// ListNotifications returns notifications newest first. An empty role
// matches every recipient.
func (s *Service) ListNotifications(ctx context.Context, role string, unreadOnly bool) ([]models.Notification, error) {
	notes, err := s.store.Notifications.Filter(ctx, func(n *models.Notification) bool {
		if unreadOnly && n.Read {
			return false
		}
		return role == "" || addressedTo(n, role)
	})
	if err != nil {
		return nil, err
	}
	reverse(notes)
	return notes, nil
}

// MarkNotificationRead marks one notification read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	var n *models.Notification
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		n, err = c.Notifications.Get(ctx, id)
		if err != nil {
			return err
		}
		if n.Read {
			return nil
		}
		n.Read = true
		if err := c.Notifications.Update(ctx, n); err != nil {
			return err
		}
		out.changed("notification", "updated", id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllNotificationsRead marks every unread notification for role read
// and returns how many changed.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, role string) (int, error) {
	count := 0
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		notes, err := c.Notifications.Filter(ctx, func(n *models.Notification) bool {
			return !n.Read && (role == "" || addressedTo(n, role))
		})
		if err != nil {
			return err
		}
		for i := range notes {
			notes[i].Read = true
			if err := c.Notifications.Update(ctx, &notes[i]); err != nil {
				return err
			}
			count++
		}
		if count > 0 {
			out.changed("notification", "updated", "all")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
