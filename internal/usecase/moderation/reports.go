package moderation

import (
	"context"
	"errors"
	"log/slog"

	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

// CreateReport files an OPEN report against a review. Duplicate reports from
// the same reporter are allowed and each transitions on its own.
func (s *Service) CreateReport(ctx context.Context, input CreateReportInput) (ports.Report, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Report{}, err
	}
	reporterID, err := requireID(input.ReporterID, "reporter id")
	if err != nil {
		return ports.Report{}, err
	}
	reviewID, err := requireID(input.ReviewID, "review id")
	if err != nil {
		return ports.Report{}, err
	}
	reason, err := domainmoderation.ParseReportReason(input.Reason)
	if err != nil {
		return ports.Report{}, err
	}

	var report ports.Report
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		review, err := s.reviews.GetReview(txCtx, reviewID)
		if err != nil {
			if errors.Is(err, ports.ErrReviewNotFound) {
				return errs.NotFound("review %s", reviewID)
			}
			return errs.Wrap(err, "load review")
		}
		if review.AuthorID == reporterID {
			return errs.Invalid("cannot report your own review")
		}

		report, err = s.reports.CreateReport(txCtx, ports.ReportCreate{
			ReviewID:   reviewID,
			ReporterID: reporterID,
			Reason:     reason,
			Details:    optionalText(input.Details),
			CreatedAt:  s.now(),
		})
		if err != nil {
			return errs.Wrap(err, "create report")
		}
		return nil
	}); err != nil {
		return ports.Report{}, err
	}

	reportsCreated.WithLabelValues(string(reason)).Inc()
	s.publishBestEffort(ctx, "moderation.report_created", map[string]any{
		"report_id":   report.ID,
		"review_id":   reviewID,
		"reporter_id": reporterID,
		"reason":      string(reason),
	})
	return report, nil
}

// ListReports returns reports in status, newest first. The OPEN queue also
// carries each author's active strike count.
func (s *Service) ListReports(ctx context.Context, input ListReportsInput) ([]ports.ReportListItem, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	status, err := domainmoderation.ParseReportStatus(input.Status)
	if err != nil {
		return nil, err
	}

	items, err := s.reports.ListReports(ctx, ports.ReportListFilter{
		Status:              status,
		Limit:               domainmoderation.ClampListLimit(input.Limit),
		IncludeStrikeCounts: status == domainmoderation.ReportOpen,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list reports")
	}
	return items, nil
}

// TransitionReport closes an OPEN report. Resolution notifies the reporter
// and, when the review is hidden, its author; dismissal notifies nobody.
func (s *Service) TransitionReport(ctx context.Context, input TransitionReportInput) (ports.Report, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Report{}, err
	}
	reportID, err := requireID(input.ReportID, "report id")
	if err != nil {
		return ports.Report{}, err
	}
	moderatorID, err := requireID(input.ModeratorID, "moderator id")
	if err != nil {
		return ports.Report{}, err
	}
	target, err := domainmoderation.ParseReportStatus(input.Target)
	if err != nil {
		return ports.Report{}, err
	}
	if target == domainmoderation.ReportResolved && s.notifier == nil {
		return ports.Report{}, errors.New("moderation notifier is required")
	}

	now := s.now()
	var report ports.Report
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.reports.GetReport(txCtx, reportID)
		if err != nil {
			if errors.Is(err, ports.ErrReportNotFound) {
				return errs.NotFound("report %s", reportID)
			}
			return errs.Wrap(err, "load report")
		}
		if err := domainmoderation.CheckReportTransition(current.Status, target); err != nil {
			return err
		}

		applied, err := s.reports.TransitionReport(txCtx, ports.StatusChange[domainmoderation.ReportStatus]{
			ID:         reportID,
			From:       domainmoderation.ReportOpen,
			To:         target,
			ResolvedAt: now,
			ResolvedBy: moderatorID,
		})
		if err != nil {
			return errs.Wrap(err, "update report")
		}
		if !applied {
			return errs.Invalid("report %s is no longer open", reportID)
		}

		if target == domainmoderation.ReportResolved {
			if err := s.notifyReportResolved(txCtx, current, moderatorID); err != nil {
				return err
			}
		}

		report, err = s.reports.GetReport(txCtx, reportID)
		if err != nil {
			return errs.Wrap(err, "reload report")
		}
		return nil
	}); err != nil {
		return ports.Report{}, err
	}

	reportsTransitioned.WithLabelValues(string(target)).Inc()
	logging.Info(
		s.logContext(ctx),
		"report transitioned",
		slog.String("report_id", reportID),
		slog.String("status", string(target)),
		slog.String("moderator_id", moderatorID),
	)
	s.publishBestEffort(ctx, "moderation.report_transitioned", map[string]any{
		"report_id":    reportID,
		"review_id":    report.ReviewID,
		"status":       string(target),
		"moderator_id": moderatorID,
	})
	return report, nil
}

func (s *Service) notifyReportResolved(ctx context.Context, report ports.Report, moderatorID string) error {
	if report.ReporterID != moderatorID {
		key := domainnotification.ForReview(report.ReporterID, moderatorID, report.ReviewID, domainnotification.ReportResolved)
		if _, err := s.notifier.EnsureUnread(ctx, key); err != nil {
			return errs.Wrap(err, "notify reporter")
		}
	}

	review, err := s.reviews.GetReview(ctx, report.ReviewID)
	if err != nil {
		if errors.Is(err, ports.ErrReviewNotFound) {
			return nil
		}
		return errs.Wrap(err, "load reported review")
	}
	if review.VisibilityStatus != domainmoderation.VisibilityHidden || review.AuthorID == moderatorID {
		return nil
	}

	key := domainnotification.ForReview(review.AuthorID, moderatorID, review.ID, domainnotification.ContentModerated)
	if _, err := s.notifier.EnsureUnread(ctx, key); err != nil {
		return errs.Wrap(err, "notify author")
	}
	return nil
}
