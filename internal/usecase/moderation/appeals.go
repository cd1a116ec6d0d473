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

// CreateAppeal records an OPEN appeal. Whether the user is currently
// suspended is the caller's concern.
func (s *Service) CreateAppeal(ctx context.Context, input CreateAppealInput) (ports.Appeal, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Appeal{}, err
	}
	userID, err := requireID(input.UserID, "user id")
	if err != nil {
		return ports.Appeal{}, err
	}

	var appeal ports.Appeal
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetUser(txCtx, userID); err != nil {
			if errors.Is(err, ports.ErrUserNotFound) {
				return errs.NotFound("user %s", userID)
			}
			return errs.Wrap(err, "load user")
		}

		appeal, err = s.appeals.CreateAppeal(txCtx, ports.AppealCreate{
			UserID:    userID,
			Message:   optionalText(input.Message),
			CreatedAt: s.now(),
		})
		if err != nil {
			return errs.Wrap(err, "create appeal")
		}
		return nil
	}); err != nil {
		return ports.Appeal{}, err
	}

	appealsCreated.Inc()
	s.publishBestEffort(ctx, "moderation.appeal_created", map[string]any{
		"appeal_id": appeal.ID,
		"user_id":   userID,
	})
	return appeal, nil
}

// ListAppeals returns appeals in status with each user's suspension as of now.
func (s *Service) ListAppeals(ctx context.Context, input ListAppealsInput) ([]ports.AppealListItem, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	status, err := domainmoderation.ParseAppealStatus(input.Status)
	if err != nil {
		return nil, err
	}

	items, err := s.appeals.ListAppeals(ctx, status, domainmoderation.ClampListLimit(input.Limit))
	if err != nil {
		return nil, errs.Wrap(err, "list appeals")
	}
	return items, nil
}

// TransitionAppeal records a decision on an OPEN appeal. It does not lift the
// user's suspension.
func (s *Service) TransitionAppeal(ctx context.Context, input TransitionAppealInput) (ports.Appeal, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Appeal{}, err
	}
	appealID, err := requireID(input.AppealID, "appeal id")
	if err != nil {
		return ports.Appeal{}, err
	}
	moderatorID, err := requireID(input.ModeratorID, "moderator id")
	if err != nil {
		return ports.Appeal{}, err
	}
	target, err := domainmoderation.ParseAppealStatus(input.Target)
	if err != nil {
		return ports.Appeal{}, err
	}

	now := s.now()
	var appeal ports.Appeal
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.appeals.GetAppeal(txCtx, appealID)
		if err != nil {
			if errors.Is(err, ports.ErrAppealNotFound) {
				return errs.NotFound("appeal %s", appealID)
			}
			return errs.Wrap(err, "load appeal")
		}
		if err := domainmoderation.CheckAppealTransition(current.Status, target); err != nil {
			return err
		}

		applied, err := s.appeals.TransitionAppeal(txCtx, ports.StatusChange[domainmoderation.AppealStatus]{
			ID:         appealID,
			From:       domainmoderation.AppealOpen,
			To:         target,
			ResolvedAt: now,
			ResolvedBy: moderatorID,
		})
		if err != nil {
			return errs.Wrap(err, "update appeal")
		}
		if !applied {
			return errs.Invalid("appeal %s is no longer open", appealID)
		}

		appeal, err = s.appeals.GetAppeal(txCtx, appealID)
		if err != nil {
			return errs.Wrap(err, "reload appeal")
		}
		return nil
	}); err != nil {
		return ports.Appeal{}, err
	}

	appealsTransitioned.WithLabelValues(string(target)).Inc()
	logging.Info(
		s.logContext(ctx),
		"appeal transitioned",
		slog.String("appeal_id", appealID),
		slog.String("status", string(target)),
		slog.String("moderator_id", moderatorID),
	)
	s.publishBestEffort(ctx, "moderation.appeal_transitioned", map[string]any{
		"appeal_id":    appealID,
		"user_id":      appeal.UserID,
		"status":       string(target),
		"moderator_id": moderatorID,
	})
	return appeal, nil
}
