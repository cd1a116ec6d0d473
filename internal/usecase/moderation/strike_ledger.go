package moderation

import (
	"context"
	"time"

	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// issueOrRenewStrike keeps exactly one strike per review. A revoked strike is
// reactivated and re-attributed to the current moderator.
func (s *Service) issueOrRenewStrike(ctx context.Context, reviewID string, authorID string, issuedBy string, at time.Time) error {
	if err := s.strikes.UpsertActiveStrike(ctx, ports.StrikeUpsert{
		ReviewID: reviewID,
		AuthorID: authorID,
		IssuedBy: issuedBy,
		At:       at,
	}); err != nil {
		return errs.Wrapf(err, "issue strike for review %s", reviewID)
	}
	return nil
}

// revokeStrike is a no-op when the review has no active strike.
func (s *Service) revokeStrike(ctx context.Context, reviewID string, at time.Time) (bool, error) {
	revoked, err := s.strikes.RevokeStrike(ctx, reviewID, at)
	if err != nil {
		return false, errs.Wrapf(err, "revoke strike for review %s", reviewID)
	}
	return revoked, nil
}

func (s *Service) activeStrikeCount(ctx context.Context, authorID string) (int64, error) {
	count, err := s.strikes.CountActiveStrikes(ctx, authorID)
	if err != nil {
		return 0, errs.Wrapf(err, "count active strikes for %s", authorID)
	}
	return count, nil
}

// ActiveStrikeCount reports how many unrevoked strikes userID carries.
func (s *Service) ActiveStrikeCount(ctx context.Context, userID string) (int64, error) {
	if err := s.checkReady(ctx); err != nil {
		return 0, err
	}
	userID, err := requireID(userID, "user id")
	if err != nil {
		return 0, err
	}
	return s.activeStrikeCount(ctx, userID)
}

func (s *Service) ListStrikes(ctx context.Context, userID string) ([]ports.Strike, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	userID, err := requireID(userID, "user id")
	if err != nil {
		return nil, err
	}
	items, err := s.strikes.ListStrikes(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "list strikes")
	}
	return items, nil
}
