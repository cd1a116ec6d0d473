package moderation

import (
	"context"
	"errors"
	"log/slog"

	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// UnhideReview restores a review, revokes its strike and clears the author's
// suspension when the active count falls below the limit. It never escalates.
func (s *Service) UnhideReview(ctx context.Context, reviewID string) (ModerationResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return ModerationResult{}, err
	}
	reviewID, err := requireID(reviewID, "review id")
	if err != nil {
		return ModerationResult{}, err
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

		if err := s.reviews.UnhideReview(txCtx, reviewID); err != nil {
			return errs.Wrap(err, "unhide review")
		}
		if _, err := s.revokeStrike(txCtx, reviewID, now); err != nil {
			return err
		}
		count, err := s.activeStrikeCount(txCtx, review.AuthorID)
		if err != nil {
			return err
		}
		decision, err := s.applySuspension(txCtx, author, count, policy, now, false)
		if err != nil {
			return err
		}

		result = ModerationResult{
			ReviewID:          reviewID,
			AuthorID:          review.AuthorID,
			VisibilityStatus:  string(domainmoderation.VisibilityActive),
			ActiveStrikeCount: count,
			StrikeLimit:       policy.StrikeLimit,
			SuspendedUntil:    decision.SuspendedUntil,
			SuspensionAction:  decision.Action.String(),
		}
		return nil
	}); err != nil {
		return ModerationResult{}, err
	}

	reviewsModerated.WithLabelValues("unhide").Inc()
	s.invalidateSuspension(ctx, result.AuthorID)
	logging.Info(
		s.logContext(ctx),
		"review unhidden",
		slog.String("review_id", reviewID),
		slog.String("author_id", result.AuthorID),
		slog.Int64("active_strikes", result.ActiveStrikeCount),
		slog.String("suspension", result.SuspensionAction),
	)
	s.publishBestEffort(ctx, "moderation.review_unhidden", map[string]any{
		"review_id":           reviewID,
		"author_id":           result.AuthorID,
		"active_strike_count": result.ActiveStrikeCount,
		"suspended_until":     result.SuspendedUntil,
	})
	return result, nil
}
