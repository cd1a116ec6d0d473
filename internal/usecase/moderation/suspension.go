package moderation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

const suspensionCacheTTL = time.Minute

// loadPolicy reads the policy fresh for every call.
func (s *Service) loadPolicy(ctx context.Context) (domainmoderation.Policy, error) {
	if s.policy == nil {
		return domainmoderation.Policy{}, errors.New("moderation policy source is required")
	}
	policy, err := s.policy.Policy(ctx)
	if err != nil {
		return domainmoderation.Policy{}, errs.Wrap(err, "load moderation policy")
	}
	if policy.StrikeLimit <= 0 || policy.SuspensionDurationDays <= 0 {
		return domainmoderation.Policy{}, errs.Invalid("moderation policy requires positive strike limit and suspension days")
	}
	return policy, nil
}

// lockAuthor loads authorID and holds its row lock until the transaction
// ends, so concurrent strikes against one author are counted one at a time.
func (s *Service) lockAuthor(ctx context.Context, authorID string) (ports.User, error) {
	author, err := s.users.GetUserForUpdate(ctx, authorID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return ports.User{}, errs.NotFound("author %s", authorID)
		}
		return ports.User{}, errs.Wrap(err, "lock author")
	}
	return author, nil
}

// applySuspension re-evaluates a locked author from a count read in the
// caller's transaction and persists the decision when it changes anything.
func (s *Service) applySuspension(ctx context.Context, author ports.User, activeStrikes int64, policy domainmoderation.Policy, now time.Time, allowEscalation bool) (domainmoderation.SuspensionDecision, error) {
	decision := domainmoderation.ReevaluateSuspension(domainmoderation.SuspensionInput{
		ActiveStrikes:   activeStrikes,
		Policy:          policy,
		Current:         author.SuspendedUntil,
		Now:             now,
		AllowEscalation: allowEscalation,
	})
	if decision.Action == domainmoderation.SuspensionUnchanged {
		return decision, nil
	}

	if err := s.users.SetSuspendedUntil(ctx, author.ID, decision.SuspendedUntil); err != nil {
		return domainmoderation.SuspensionDecision{}, errs.Wrap(err, "store suspension")
	}
	suspensionChanges.WithLabelValues(decision.Action.String()).Inc()
	return decision, nil
}

// SuspensionStatus returns userID's current standing, served from cache when
// a fresh snapshot exists.
func (s *Service) SuspensionStatus(ctx context.Context, userID string) (SuspensionStatus, error) {
	if err := s.checkReady(ctx); err != nil {
		return SuspensionStatus{}, err
	}
	userID, err := requireID(userID, "user id")
	if err != nil {
		return SuspensionStatus{}, err
	}

	var cached SuspensionStatus
	lookup, cacheErr := s.snapshot.Get(ctx, suspensionCacheKey(userID), &cached)
	if cacheErr != nil {
		logging.Warn(s.logContext(ctx), "read suspension cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(cacheErr)))
	} else if lookup.Found {
		cached.Suspended = domainmoderation.IsSuspended(cached.SuspendedUntil, s.now())
		return cached, nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return SuspensionStatus{}, errs.NotFound("user %s", userID)
		}
		return SuspensionStatus{}, errs.Wrap(err, "load user")
	}
	count, err := s.activeStrikeCount(ctx, userID)
	if err != nil {
		return SuspensionStatus{}, err
	}

	status := SuspensionStatus{
		UserID:            userID,
		Suspended:         domainmoderation.IsSuspended(user.SuspendedUntil, s.now()),
		SuspendedUntil:    user.SuspendedUntil,
		ActiveStrikeCount: count,
	}
	if cacheErr == nil {
		if err := s.snapshot.Put(ctx, suspensionCacheKey(userID), lookup.Generation, status); err != nil {
			logging.Warn(s.logContext(ctx), "store suspension cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(err)))
		}
	}
	return status, nil
}

func suspensionCacheKey(userID string) string {
	return "moderation:suspension:" + userID
}

func (s *Service) invalidateSuspension(ctx context.Context, userID string) {
	if err := s.snapshot.Invalidate(ctx, suspensionCacheKey(userID)); err != nil {
		logging.Warn(s.logContext(ctx), "invalidate suspension cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(err)))
	}
}
