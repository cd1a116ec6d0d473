package follow

import (
	"context"
	"errors"
	"log/slog"

	"catalogo/internal/bootstrap/logging"
	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/domain/social"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// Follow makes followerID follow targetID, or requests to when the target is
// private. Repeating the call is safe: an accepted edge is left alone and a
// pending one is re-announced at most once while unread.
func (s *Service) Follow(ctx context.Context, followerID string, targetID string) (Result, error) {
	if err := s.checkReady(ctx); err != nil {
		return Result{}, err
	}
	followerID, err := requireID(followerID, "follower id")
	if err != nil {
		return Result{}, err
	}
	targetID, err = requireID(targetID, "target id")
	if err != nil {
		return Result{}, err
	}
	if followerID == targetID {
		return Result{}, errs.Invalid("cannot follow yourself")
	}

	var (
		result  Result
		outcome string
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		target, err := s.users.GetUser(txCtx, targetID)
		if err != nil {
			if errors.Is(err, ports.ErrUserNotFound) {
				return errs.NotFound("user %s", targetID)
			}
			return errs.Wrap(err, "load target user")
		}

		existing, err := s.follows.GetFollowByPairForUpdate(txCtx, followerID, targetID)
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrFollowNotFound):
			created, isNew, err := s.follows.CreateFollow(txCtx, ports.FollowCreate{
				FollowerID:  followerID,
				FollowingID: targetID,
				Status:      social.InitialStatus(target.IsPrivate),
				CreatedAt:   s.now(),
			})
			if err != nil {
				return errs.Wrap(err, "create follow")
			}
			if isNew {
				result, outcome, err = s.announceNewFollow(txCtx, created)
				return err
			}
			// Another writer created the edge first; continue as if it had
			// been there all along.
			existing = created
		default:
			return errs.Wrap(err, "load follow")
		}

		result, outcome, err = s.followExisting(txCtx, existing, target)
		return err
	}); err != nil {
		return Result{}, err
	}

	followOutcomes.WithLabelValues(outcome).Inc()
	if outcome == "created" || outcome == "promoted" {
		s.invalidateCounters(ctx, followerID, targetID)
	}
	logging.Info(
		s.logContext(ctx),
		"follow processed",
		slog.String("follower_id", followerID),
		slog.String("target_id", targetID),
		slog.String("outcome", outcome),
	)
	if outcome != "unchanged" && outcome != "renotified" {
		s.publishBestEffort(ctx, "follow."+outcome, map[string]any{
			"follow_id":    result.FollowID,
			"follower_id":  followerID,
			"following_id": targetID,
		})
	}
	return result, nil
}

func (s *Service) announceNewFollow(ctx context.Context, follow ports.Follow) (Result, string, error) {
	if follow.Status == social.FollowPending {
		if _, err := s.notifier.EnsureUnread(ctx, requestKey(follow)); err != nil {
			return Result{}, "", errs.Wrap(err, "notify follow request")
		}
		return Result{FollowID: follow.ID, Relationship: social.RelationshipRequested, RequiresApproval: true}, "requested", nil
	}

	key := domainnotification.ForFollow(follow.FollowingID, follow.FollowerID, follow.ID, domainnotification.FollowCreated)
	if _, err := s.notifier.EnsureUnread(ctx, key); err != nil {
		return Result{}, "", errs.Wrap(err, "notify follow")
	}
	return Result{FollowID: follow.ID, Relationship: social.RelationshipFollowing}, "created", nil
}

func (s *Service) followExisting(ctx context.Context, follow ports.Follow, target ports.User) (Result, string, error) {
	if follow.Status == social.FollowAccepted {
		return Result{FollowID: follow.ID, Relationship: social.RelationshipFollowing}, "unchanged", nil
	}

	if target.IsPrivate {
		if _, err := s.notifier.EnsureUnread(ctx, requestKey(follow)); err != nil {
			return Result{}, "", errs.Wrap(err, "renotify follow request")
		}
		return Result{FollowID: follow.ID, Relationship: social.RelationshipRequested, RequiresApproval: true}, "renotified", nil
	}

	// The target went public after the request was made.
	changed, err := s.follows.SetFollowStatus(ctx, follow.ID, social.FollowPending, social.FollowAccepted, s.now())
	if err != nil {
		return Result{}, "", errs.Wrap(err, "promote follow")
	}
	if !changed {
		return Result{}, "", errs.Invalid("follow %s is no longer pending", follow.ID)
	}
	if _, err := s.notifier.MarkRead(ctx, requestKey(follow)); err != nil {
		return Result{}, "", errs.Wrap(err, "mark follow request read")
	}
	key := domainnotification.ForFollow(follow.FollowingID, follow.FollowerID, follow.ID, domainnotification.FollowCreated)
	if _, err := s.notifier.EnsureUnread(ctx, key); err != nil {
		return Result{}, "", errs.Wrap(err, "notify follow")
	}
	return Result{FollowID: follow.ID, Relationship: social.RelationshipFollowing}, "promoted", nil
}

// Unfollow removes the edge in either state. A pending request is cancelled
// and its notification marked read. It always ends at NONE.
func (s *Service) Unfollow(ctx context.Context, followerID string, targetID string) (Result, error) {
	if err := s.checkReady(ctx); err != nil {
		return Result{}, err
	}
	followerID, err := requireID(followerID, "follower id")
	if err != nil {
		return Result{}, err
	}
	targetID, err = requireID(targetID, "target id")
	if err != nil {
		return Result{}, err
	}
	if followerID == targetID {
		return Result{}, errs.Invalid("cannot unfollow yourself")
	}

	var removed *ports.Follow
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.follows.GetFollowByPairForUpdate(txCtx, followerID, targetID)
		if err != nil {
			if errors.Is(err, ports.ErrFollowNotFound) {
				return nil
			}
			return errs.Wrap(err, "load follow")
		}

		deleted, err := s.follows.DeleteFollow(txCtx, existing.ID)
		if err != nil {
			return errs.Wrap(err, "delete follow")
		}
		if !deleted {
			return nil
		}
		if existing.Status == social.FollowPending {
			if _, err := s.notifier.MarkRead(txCtx, requestKey(existing)); err != nil {
				return errs.Wrap(err, "mark follow request read")
			}
		}
		removed = &existing
		return nil
	}); err != nil {
		return Result{}, err
	}

	if removed != nil {
		followOutcomes.WithLabelValues("removed").Inc()
		if removed.Status == social.FollowAccepted {
			s.invalidateCounters(ctx, followerID, targetID)
		}
		s.publishBestEffort(ctx, "follow.removed", map[string]any{
			"follow_id":    removed.ID,
			"follower_id":  followerID,
			"following_id": targetID,
			"status":       string(removed.Status),
		})
	}
	return Result{Relationship: social.RelationshipNone}, nil
}

// RespondToFollowRequest lets the target of a pending request accept or
// reject it. A rejected request leaves no row behind.
func (s *Service) RespondToFollowRequest(ctx context.Context, input RespondInput) (Result, error) {
	if err := s.checkReady(ctx); err != nil {
		return Result{}, err
	}
	currentUserID, err := requireID(input.CurrentUserID, "current user id")
	if err != nil {
		return Result{}, err
	}
	followID, err := requireID(input.FollowID, "follow id")
	if err != nil {
		return Result{}, err
	}
	action, err := social.ParseRequestAction(input.Action)
	if err != nil {
		return Result{}, err
	}

	var (
		result Result
		follow ports.Follow
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		follow, err = s.follows.GetFollowForUpdate(txCtx, followID)
		if err != nil {
			if errors.Is(err, ports.ErrFollowNotFound) {
				return errs.NotFound("follow request %s", followID)
			}
			return errs.Wrap(err, "load follow")
		}
		if follow.FollowingID != currentUserID {
			return errs.Forbidden("follow request %s belongs to another user", followID)
		}
		if follow.Status != social.FollowPending {
			return errs.Invalid("follow request %s is already %s", followID, follow.Status)
		}

		if _, err := s.notifier.MarkRead(txCtx, requestKey(follow)); err != nil {
			return errs.Wrap(err, "mark follow request read")
		}

		if action == social.ActionReject {
			deleted, err := s.follows.DeleteFollow(txCtx, follow.ID, social.FollowPending)
			if err != nil {
				return errs.Wrap(err, "delete follow")
			}
			if !deleted {
				return errs.Invalid("follow request %s was already answered", followID)
			}
			result = Result{FollowID: follow.ID, Relationship: social.RelationshipNone}
			return nil
		}

		changed, err := s.follows.SetFollowStatus(txCtx, follow.ID, social.FollowPending, social.FollowAccepted, s.now())
		if err != nil {
			return errs.Wrap(err, "accept follow")
		}
		if !changed {
			return errs.Invalid("follow request %s was already answered", followID)
		}
		key := domainnotification.ForFollow(follow.FollowerID, currentUserID, follow.ID, domainnotification.FollowAccepted)
		if _, err := s.notifier.EnsureUnread(txCtx, key); err != nil {
			return errs.Wrap(err, "notify follow accepted")
		}
		result = Result{FollowID: follow.ID, Relationship: social.RelationshipFollowing}
		return nil
	}); err != nil {
		return Result{}, err
	}

	followOutcomes.WithLabelValues(string(action) + "ed").Inc()
	if action == social.ActionAccept {
		s.invalidateCounters(ctx, follow.FollowerID, follow.FollowingID)
	}
	logging.Info(
		s.logContext(ctx),
		"follow request answered",
		slog.String("follow_id", follow.ID),
		slog.String("action", string(action)),
	)
	s.publishBestEffort(ctx, "follow.request_"+string(action)+"ed", map[string]any{
		"follow_id":    follow.ID,
		"follower_id":  follow.FollowerID,
		"following_id": follow.FollowingID,
	})
	return result, nil
}
