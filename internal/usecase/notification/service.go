package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/domain/moderation"
	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// Service records "actor did type to recipient" events with unread-scoped
// dedup. Callers pass a context carrying their transaction so the lookup and
// the insert commit or roll back with the rest of their unit of work.
type Service struct {
	repo ports.NotificationRepository
	now  func() time.Time
}

func NewService(repo ports.NotificationRepository) *Service {
	return &Service{
		repo: repo,
		now:  nowUTC,
	}
}

type ListInput struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
}

// EnsureUnread inserts a notification for key unless an unread one with the
// exact same key already exists.
func (s *Service) EnsureUnread(ctx context.Context, key domainnotification.Key) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if err := validateKey(key); err != nil {
		return false, err
	}

	if _, found, err := s.repo.FindUnread(ctx, key); err != nil {
		return false, errs.Wrap(err, "find unread notification")
	} else if found {
		notificationsDeduped.WithLabelValues(string(key.Type)).Inc()
		return false, nil
	}

	if _, err := s.repo.CreateNotification(ctx, key, s.now()); err != nil {
		return false, errs.Wrap(err, "create notification")
	}
	notificationsCreated.WithLabelValues(string(key.Type)).Inc()
	logging.Debug(
		logging.WithAttrs(ctx, slog.String("component", "notification")),
		"notification created",
		slog.String("type", string(key.Type)),
		slog.String("recipient_id", key.RecipientID),
		slog.String("actor_id", key.ActorID),
	)
	return true, nil
}

// MarkRead marks every unread notification matching key as read. It returns
// the number of rows it touched; zero is not an error.
func (s *Service) MarkRead(ctx context.Context, key domainnotification.Key) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if err := validateKey(key); err != nil {
		return 0, err
	}

	updated, err := s.repo.MarkRead(ctx, key, s.now())
	if err != nil {
		return 0, errs.Wrap(err, "mark notification read")
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, input ListInput) ([]ports.Notification, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return nil, errs.Invalid("recipient is required")
	}

	items, err := s.repo.ListNotifications(ctx, ports.NotificationFilter{
		RecipientID: recipientID,
		UnreadOnly:  input.UnreadOnly,
		Limit:       moderation.ClampListLimit(input.Limit),
	})
	if err != nil {
		return nil, errs.Wrap(err, "list notifications")
	}
	return items, nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, errs.Invalid("recipient is required")
	}

	updated, err := s.repo.MarkAllRead(ctx, recipientID, s.now())
	if err != nil {
		return 0, errs.Wrap(err, "mark notifications read")
	}
	return updated, nil
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("notification repository is required")
	}
	return nil
}

func validateKey(key domainnotification.Key) error {
	if strings.TrimSpace(key.RecipientID) == "" {
		return errs.Invalid("notification recipient is required")
	}
	if strings.TrimSpace(key.ActorID) == "" {
		return errs.Invalid("notification actor is required")
	}
	if strings.TrimSpace(string(key.Type)) == "" {
		return errs.Invalid("notification type is required")
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
