package moderation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// HideReview hides a review, issues or renews its strike and re-evaluates the
// author's suspension, all in one transaction. Hiding an already hidden
// review renews the same strike.
func (s *Service) HideReview(ctx context.Context, input HideReviewInput) (ModerationResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return ModerationResult{}, err
	}
	reviewID, err := requireID(input.ReviewID, "review id")
	if err != nil {
		return ModerationResult{}, err
	}
	moderatorID, err := requireID(input.ModeratorID, "moderator id")
	if err != nil {
		return ModerationResult{}, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = domainmoderation.DefaultHiddenReason
	}

	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return ModerationResult{}, err
	}
	now := s.now()

	var result ModerationResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		review, err := s.reviews.GetReview(txCtx, reviewID)
		if err != nil {
			if errors.Is(err, ports.ErrReviewNotFound) {
				return errs.NotFound("review %s", reviewID)
			}
			return errs.Wrap(err, "load review")
		}
		author, err := s.lockAuthor(txCtx, review.AuthorID)
		if err != nil {
			return err
		}

		if err := s.reviews.HideReview(txCtx, ports.ReviewHide{
			ReviewID:    reviewID,
			Reason:      reason,
			ModeratorID: moderatorID,
			At:          now,
		}); err != nil {
			return errs.Wrap(err, "hide review")
		}
		if err := s.issueOrRenewStrike(txCtx, reviewID, review.AuthorID, moderatorID, now); err != nil {
			return err
		}
		count, err := s.activeStrikeCount(txCtx, review.AuthorID)
		if err != nil {
			return err
		}
		decision, err := s.applySuspension(txCtx, author, count, policy, now, true)
		if err != nil {
			return err
		}

		result = ModerationResult{
			ReviewID:          reviewID,
			AuthorID:          review.AuthorID,
			VisibilityStatus:  string(domainmoderation.VisibilityHidden),
			ActiveStrikeCount: count,
			StrikeLimit:       policy.StrikeLimit,
			SuspendedUntil:    decision.SuspendedUntil,
			SuspensionAction:  decision.Action.String(),
		}
		return nil
	}); err != nil {
		return ModerationResult{}, err
	}

	reviewsModerated.WithLabelValues("hide").Inc()
	s.invalidateSuspension(ctx, result.AuthorID)
	logging.Info(
		s.logContext(ctx),
		"review hidden",
		slog.String("review_id", reviewID),
		slog.String("author_id", result.AuthorID),
		slog.String("moderator_id", moderatorID),
		slog.Int64("active_strikes", result.ActiveStrikeCount),
		slog.String("suspension", result.SuspensionAction),
	)
	s.publishBestEffort(ctx, "moderation.review_hidden", map[string]any{
		"review_id":           reviewID,
		"author_id":           result.AuthorID,
		"moderator_id":        moderatorID,
		"reason":              reason,
		"active_strike_count": result.ActiveStrikeCount,
		"suspended_until":     result.SuspendedUntil,
	})
	return result, nil
}
