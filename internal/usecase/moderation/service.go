package moderation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"catalogo/internal/bootstrap/logging"
	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/readcache"
)

// Notifier is the slice of the notification dedup engine moderation needs.
type Notifier interface {
	EnsureUnread(ctx context.Context, key domainnotification.Key) (bool, error)
}

type Repositories struct {
	Users   ports.UserRepository
	Reviews ports.ReviewRepository
	Reports ports.ReportRepository
	Strikes ports.StrikeRepository
	Appeals ports.AppealRepository
}

type Service struct {
	users    ports.UserRepository
	reviews  ports.ReviewRepository
	reports  ports.ReportRepository
	strikes  ports.StrikeRepository
	appeals  ports.AppealRepository
	uow      ports.UnitOfWork
	policy   ports.PolicySource
	notifier Notifier
	snapshot *readcache.Cache
	events   ports.EventPublisher
	now      func() time.Time
}

// NewService wires moderation usecases. Cache and events are optional and
// only touched after a transaction commits.
func NewService(repos Repositories, uow ports.UnitOfWork, policy ports.PolicySource, notifier Notifier, cache ports.Cache, events ports.EventPublisher) *Service {
	return &Service{
		users:    repos.Users,
		reviews:  repos.Reviews,
		reports:  repos.Reports,
		strikes:  repos.Strikes,
		appeals:  repos.Appeals,
		uow:      uow,
		policy:   policy,
		notifier: notifier,
		snapshot: readcache.New(cache, suspensionCacheTTL),
		events:   events,
		now:      nowUTC,
	}
}

type HideReviewInput struct {
	ReviewID    string
	ModeratorID string
	Reason      string
}

// ModerationResult is the outcome of hide/unhide as seen after commit.
type ModerationResult struct {
	ReviewID          string
	AuthorID          string
	VisibilityStatus  string
	ActiveStrikeCount int64
	StrikeLimit       int
	SuspendedUntil    *time.Time
	SuspensionAction  string
}

type CreateReportInput struct {
	ReporterID string
	ReviewID   string
	Reason     string
	Details    *string
}

type ListReportsInput struct {
	Status string
	Limit  int
}

type TransitionReportInput struct {
	ReportID    string
	Target      string
	ModeratorID string
}

type CreateAppealInput struct {
	UserID  string
	Message *string
}

type ListAppealsInput struct {
	Status string
	Limit  int
}

type TransitionAppealInput struct {
	AppealID    string
	Target      string
	ModeratorID string
}

// SuspensionStatus is a read-side snapshot of a user's standing.
type SuspensionStatus struct {
	UserID            string     `json:"user_id"`
	Suspended         bool       `json:"suspended"`
	SuspendedUntil    *time.Time `json:"suspended_until,omitempty"`
	ActiveStrikeCount int64      `json:"active_strike_count"`
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.users == nil || s.reviews == nil || s.reports == nil || s.strikes == nil || s.appeals == nil {
		return errors.New("moderation repositories are required")
	}
	if s.uow == nil {
		return errors.New("moderation unit of work is required")
	}
	return nil
}

func (s *Service) logContext(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "moderation"))
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

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
