package follow

import (
	"context"
	"errors"
	"log/slog"

	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/domain/moderation"
	"catalogo/internal/domain/social"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// Relationship derives how viewerID relates to targetID.
func (s *Service) Relationship(ctx context.Context, viewerID string, targetID string) (social.Relationship, error) {
	if err := s.checkReady(ctx); err != nil {
		return "", err
	}
	viewerID, err := requireID(viewerID, "viewer id")
	if err != nil {
		return "", err
	}
	targetID, err = requireID(targetID, "target id")
	if err != nil {
		return "", err
	}
	if viewerID == targetID {
		return social.DeriveRelationship(nil, true), nil
	}

	follow, err := s.follows.GetFollowByPair(ctx, viewerID, targetID)
	if err != nil {
		if errors.Is(err, ports.ErrFollowNotFound) {
			return social.DeriveRelationship(nil, false), nil
		}
		return "", errs.Wrap(err, "load follow")
	}
	return social.DeriveRelationship(&follow.Status, false), nil
}

// ListFollowRequests returns pending requests addressed to userID.
func (s *Service) ListFollowRequests(ctx context.Context, userID string, limit int) ([]ports.Follow, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	userID, err := requireID(userID, "user id")
	if err != nil {
		return nil, err
	}

	items, err := s.follows.ListPendingRequests(ctx, userID, moderation.ClampListLimit(limit))
	if err != nil {
		return nil, errs.Wrap(err, "list follow requests")
	}
	return items, nil
}

// FollowCounters counts accepted edges in both directions.
func (s *Service) FollowCounters(ctx context.Context, userID string) (Counters, error) {
	if err := s.checkReady(ctx); err != nil {
		return Counters{}, err
	}
	userID, err := requireID(userID, "user id")
	if err != nil {
		return Counters{}, err
	}

	var cached Counters
	lookup, cacheErr := s.counters.Get(ctx, countersCacheKey(userID), &cached)
	if cacheErr != nil {
		logging.Warn(s.logContext(ctx), "read counters cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(cacheErr)))
	} else if lookup.Found {
		countersCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	countersCache.WithLabelValues("miss").Inc()

	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return Counters{}, errs.Wrap(err, "count followers")
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return Counters{}, errs.Wrap(err, "count following")
	}

	counters := Counters{UserID: userID, Followers: followers, Following: following}
	if cacheErr == nil {
		if err := s.counters.Put(ctx, countersCacheKey(userID), lookup.Generation, counters); err != nil {
			logging.Warn(s.logContext(ctx), "store counters cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(err)))
		}
	}
	return counters, nil
}

func countersCacheKey(userID string) string {
	return "follow:counters:" + userID
}

func (s *Service) invalidateCounters(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		if err := s.counters.Invalidate(ctx, countersCacheKey(userID)); err != nil {
			logging.Warn(s.logContext(ctx), "invalidate counters cache failed", slog.String("user_id", userID), slog.Any("err", errs.Loggable(err)))
		}
	}
}
