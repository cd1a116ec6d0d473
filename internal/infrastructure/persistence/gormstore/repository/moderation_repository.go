package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/ports"
)

var (
	_ ports.ReviewRepository = (*ModerationRepository)(nil)
	_ ports.ReportRepository = (*ModerationRepository)(nil)
	_ ports.StrikeRepository = (*ModerationRepository)(nil)
	_ ports.AppealRepository = (*ModerationRepository)(nil)
)

// ModerationRepository persists reviews, reports, strikes and appeals.
type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) GetReview(ctx context.Context, reviewID string) (ports.Review, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Review{}, err
	}

	var row model.Review
	if err := db.Where("id = ?", reviewID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Review{}, ports.ErrReviewNotFound
		}
		return ports.Review{}, errs.Storage(err, "query review")
	}
	return mapReview(row), nil
}

func (r *ModerationRepository) CreateReview(ctx context.Context, input ports.ReviewCreate) (ports.Review, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Review{}, err
	}

	now := time.Now().UTC()
	row := model.Review{
		ID:               uuid.NewString(),
		AuthorID:         input.AuthorID,
		ItemID:           input.ItemID,
		Body:             input.Body,
		VisibilityStatus: string(moderation.VisibilityActive),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Review{}, errs.Storage(err, "insert review")
	}
	return mapReview(row), nil
}

func (r *ModerationRepository) HideReview(ctx context.Context, input ports.ReviewHide) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Review{}).
		Where("id = ?", input.ReviewID).
		Updates(map[string]any{
			"visibility_status": string(moderation.VisibilityHidden),
			"hidden_at":         input.At,
			"hidden_reason":     input.Reason,
			"hidden_by":         input.ModeratorID,
			"updated_at":        input.At,
		}).Error; err != nil {
		return errs.Storage(err, "hide review")
	}
	return nil
}

func (r *ModerationRepository) UnhideReview(ctx context.Context, reviewID string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]any{
			"visibility_status": string(moderation.VisibilityActive),
			"hidden_at":         nil,
			"hidden_reason":     nil,
			"hidden_by":         nil,
			"updated_at":        time.Now().UTC(),
		}).Error; err != nil {
		return errs.Storage(err, "unhide review")
	}
	return nil
}

func (r *ModerationRepository) CreateReport(ctx context.Context, input ports.ReportCreate) (ports.Report, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Report{}, err
	}

	var details *string
	if input.Details != nil {
		details = optionalString(*input.Details)
	}
	row := model.Report{
		ID:         uuid.NewString(),
		ReviewID:   input.ReviewID,
		ReporterID: input.ReporterID,
		Reason:     string(input.Reason),
		Details:    details,
		Status:     string(moderation.ReportOpen),
		CreatedAt:  input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Report{}, errs.Storage(err, "insert report")
	}
	return mapReport(row), nil
}

func (r *ModerationRepository) GetReport(ctx context.Context, reportID string) (ports.Report, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Report{}, err
	}

	var row model.Report
	if err := db.Where("id = ?", reportID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Report{}, ports.ErrReportNotFound
		}
		return ports.Report{}, errs.Storage(err, "query report")
	}
	return mapReport(row), nil
}

type reportListRow struct {
	model.Report
	AuthorID            string
	ReviewVisibility    string
	AuthorActiveStrikes *int64
}

func (r *ModerationRepository) ListReports(ctx context.Context, filter ports.ReportListFilter) ([]ports.ReportListItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	columns := []string{
		"reports.*",
		"reviews.author_id AS author_id",
		"reviews.visibility_status AS review_visibility",
	}
	if filter.IncludeStrikeCounts {
		columns = append(columns, "(SELECT COUNT(*) FROM moderation_strikes ms WHERE ms.user_id = reviews.author_id AND ms.revoked_at IS NULL) AS author_active_strikes")
	}

	var rows []reportListRow
	if err := db.Table("reports").
		Select(strings.Join(columns, ", ")).
		Joins("JOIN reviews ON reviews.id = reports.review_id").
		Where("reports.status = ?", string(filter.Status)).
		Order("reports.created_at desc").
		Order("reports.id desc").
		Limit(filter.Limit).
		Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query reports")
	}

	items := make([]ports.ReportListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ReportListItem{
			Report:              mapReport(row.Report),
			AuthorID:            row.AuthorID,
			ReviewVisibility:    moderation.VisibilityStatus(row.ReviewVisibility),
			AuthorActiveStrikes: row.AuthorActiveStrikes,
		})
	}
	return items, nil
}

func (r *ModerationRepository) TransitionReport(ctx context.Context, change ports.StatusChange[moderation.ReportStatus]) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Report{}).
		Where("id = ? AND status = ?", change.ID, string(change.From)).
		Updates(map[string]any{
			"status":      string(change.To),
			"resolved_at": change.ResolvedAt,
			"resolved_by": change.ResolvedBy,
		})
	if result.Error != nil {
		return false, errs.Storage(result.Error, "update report status")
	}
	return result.RowsAffected > 0, nil
}

// UpsertActiveStrike creates the review's strike or un-revokes and renews the
// existing one; the unique review_id index arbitrates concurrent writers.
func (r *ModerationRepository) UpsertActiveStrike(ctx context.Context, input ports.StrikeUpsert) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.ModerationStrike{
		ID:        uuid.NewString(),
		ReviewID:  input.ReviewID,
		UserID:    input.AuthorID,
		IssuedBy:  input.IssuedBy,
		CreatedAt: input.At,
		UpdatedAt: input.At,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "review_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"revoked_at": nil,
			"issued_by":  input.IssuedBy,
			"user_id":    input.AuthorID,
			"updated_at": input.At,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Storage(err, "upsert moderation strike")
	}
	return nil
}

func (r *ModerationRepository) RevokeStrike(ctx context.Context, reviewID string, at time.Time) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.ModerationStrike{}).
		Where("review_id = ? AND revoked_at IS NULL", reviewID).
		Updates(map[string]any{
			"revoked_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, errs.Storage(result.Error, "revoke moderation strike")
	}
	return result.RowsAffected > 0, nil
}

func (r *ModerationRepository) CountActiveStrikes(ctx context.Context, userID string) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ModerationStrike{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, errs.Storage(err, "count active strikes")
	}
	return count, nil
}

func (r *ModerationRepository) ListStrikes(ctx context.Context, userID string) ([]ports.Strike, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ModerationStrike
	if err := db.Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query strikes")
	}

	items := make([]ports.Strike, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Strike{
			ID:        row.ID,
			ReviewID:  row.ReviewID,
			UserID:    row.UserID,
			IssuedBy:  row.IssuedBy,
			RevokedAt: row.RevokedAt,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return items, nil
}

func (r *ModerationRepository) CreateAppeal(ctx context.Context, input ports.AppealCreate) (ports.Appeal, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Appeal{}, err
	}

	var message *string
	if input.Message != nil {
		message = optionalString(*input.Message)
	}
	row := model.SuspensionAppeal{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Message:   message,
		Status:    string(moderation.AppealOpen),
		CreatedAt: input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Appeal{}, errs.Storage(err, "insert appeal")
	}
	return mapAppeal(row), nil
}

func (r *ModerationRepository) GetAppeal(ctx context.Context, appealID string) (ports.Appeal, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Appeal{}, err
	}

	var row model.SuspensionAppeal
	if err := db.Where("id = ?", appealID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Appeal{}, ports.ErrAppealNotFound
		}
		return ports.Appeal{}, errs.Storage(err, "query appeal")
	}
	return mapAppeal(row), nil
}

type appealListRow struct {
	model.SuspensionAppeal
	UserEmail      *string
	SuspendedUntil *time.Time
}

func (r *ModerationRepository) ListAppeals(ctx context.Context, status moderation.AppealStatus, limit int) ([]ports.AppealListItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []appealListRow
	if err := db.Table("suspension_appeals").
		Select("suspension_appeals.*, users.email AS user_email, users.suspended_until AS suspended_until").
		Joins("LEFT JOIN users ON users.id = suspension_appeals.user_id").
		Where("suspension_appeals.status = ?", string(status)).
		Order("suspension_appeals.created_at desc").
		Order("suspension_appeals.id desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query appeals")
	}

	items := make([]ports.AppealListItem, 0, len(rows))
	for _, row := range rows {
		item := ports.AppealListItem{
			Appeal:         mapAppeal(row.SuspensionAppeal),
			SuspendedUntil: row.SuspendedUntil,
		}
		if row.UserEmail != nil {
			item.UserEmail = *row.UserEmail
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ModerationRepository) TransitionAppeal(ctx context.Context, change ports.StatusChange[moderation.AppealStatus]) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.SuspensionAppeal{}).
		Where("id = ? AND status = ?", change.ID, string(change.From)).
		Updates(map[string]any{
			"status":      string(change.To),
			"resolved_at": change.ResolvedAt,
			"resolved_by": change.ResolvedBy,
		})
	if result.Error != nil {
		return false, errs.Storage(result.Error, "update appeal status")
	}
	return result.RowsAffected > 0, nil
}

func mapReview(row model.Review) ports.Review {
	return ports.Review{
		ID:               row.ID,
		AuthorID:         row.AuthorID,
		ItemID:           row.ItemID,
		Body:             row.Body,
		VisibilityStatus: moderation.VisibilityStatus(row.VisibilityStatus),
		HiddenAt:         row.HiddenAt,
		HiddenReason:     row.HiddenReason,
		HiddenBy:         row.HiddenBy,
		CreatedAt:        row.CreatedAt,
	}
}

func mapReport(row model.Report) ports.Report {
	return ports.Report{
		ID:         row.ID,
		ReviewID:   row.ReviewID,
		ReporterID: row.ReporterID,
		Reason:     moderation.ReportReason(row.Reason),
		Details:    row.Details,
		Status:     moderation.ReportStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		ResolvedAt: row.ResolvedAt,
		ResolvedBy: row.ResolvedBy,
	}
}

func mapAppeal(row model.SuspensionAppeal) ports.Appeal {
	return ports.Appeal{
		ID:         row.ID,
		UserID:     row.UserID,
		Message:    row.Message,
		Status:     moderation.AppealStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		ResolvedAt: row.ResolvedAt,
		ResolvedBy: row.ResolvedBy,
	}
}
