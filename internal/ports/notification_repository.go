package ports

import (
	"context"
	"time"

	"catalogo/internal/domain/notification"
)

type Notification struct {
	ID          string
	RecipientID string
	ActorID     string
	ReviewID    *string
	FollowID    *string
	Type        notification.Type
	CreatedAt   time.Time
	ReadAt      *time.Time
}

type NotificationFilter struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
}

type NotificationRepository interface {
	// FindUnread looks up an unread notification matching key exactly,
	// including nil correlation ids.
	FindUnread(ctx context.Context, key notification.Key) (Notification, bool, error)
	CreateNotification(ctx context.Context, key notification.Key, at time.Time) (Notification, error)
	MarkRead(ctx context.Context, key notification.Key, at time.Time) (int64, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
}
