package follow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"catalogo/internal/bootstrap/logging"
	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/domain/social"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/readcache"
)

// Notifier is the slice of the notification dedup engine the follow graph
// needs.
type Notifier interface {
	EnsureUnread(ctx context.Context, key domainnotification.Key) (bool, error)
	MarkRead(ctx context.Context, key domainnotification.Key) (int64, error)
}

type Service struct {
	users    ports.UserRepository
	follows  ports.FollowRepository
	uow      ports.UnitOfWork
	notifier Notifier
	counters *readcache.Cache
	events   ports.EventPublisher
	now      func() time.Time
}

// NewService wires follow usecases. Cache and events are optional.
func NewService(users ports.UserRepository, follows ports.FollowRepository, uow ports.UnitOfWork, notifier Notifier, cache ports.Cache, cacheTTL time.Duration, events ports.EventPublisher) *Service {
	return &Service{
		users:    users,
		follows:  follows,
		uow:      uow,
		notifier: notifier,
		counters: readcache.New(cache, cacheTTL),
		events:   events,
		now:      nowUTC,
	}
}

type Result struct {
	FollowID         string
	Relationship     social.Relationship
	RequiresApproval bool
}

type RespondInput struct {
	CurrentUserID string
	FollowID      string
	Action        string
}

type Counters struct {
	UserID    string `json:"user_id"`
	Followers int64  `json:"followers"`
	Following int64  `json:"following"`
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.users == nil || s.follows == nil {
		return errors.New("follow repositories are required")
	}
	if s.uow == nil {
		return errors.New("follow unit of work is required")
	}
	if s.notifier == nil {
		return errors.New("follow notifier is required")
	}
	return nil
}

func (s *Service) logContext(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "follow"))
}

func (s *Service) publishBestEffort(ctx context.Context, name string, attrs map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ports.Event{
		Name:       name,
		OccurredAt: s.now(),
		Attributes: attrs,
	}); err != nil {
		logging.Warn(s.logContext(ctx), "publish event failed", slog.String("event", name), slog.Any("err", errs.Loggable(err)))
	}
}

func requireID(value string, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.Invalid("%s is required", field)
	}
	return value, nil
}

func requestKey(follow ports.Follow) domainnotification.Key {
	return domainnotification.ForFollow(follow.FollowingID, follow.FollowerID, follow.ID, domainnotification.FollowRequest)
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
