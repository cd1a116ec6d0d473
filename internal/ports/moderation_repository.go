package ports

import (
	"context"
	"errors"
	"time"

	"catalogo/internal/domain/moderation"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReportNotFound = errors.New("report not found")
	ErrAppealNotFound = errors.New("appeal not found")
)

type Review struct {
	ID               string
	AuthorID         string
	ItemID           string
	Body             string
	VisibilityStatus moderation.VisibilityStatus
	HiddenAt         *time.Time
	HiddenReason     *string
	HiddenBy         *string
	CreatedAt        time.Time
}

type ReviewCreate struct {
	AuthorID string
	ItemID   string
	Body     string
}

type ReviewHide struct {
	ReviewID    string
	Reason      string
	ModeratorID string
	At          time.Time
}

type Report struct {
	ID         string
	ReviewID   string
	ReporterID string
	Reason     moderation.ReportReason
	Details    *string
	Status     moderation.ReportStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy *string
}

type ReportCreate struct {
	ReviewID   string
	ReporterID string
	Reason     moderation.ReportReason
	Details    *string
	CreatedAt  time.Time
}

// ReportListItem is a report joined with its review. AuthorActiveStrikes is
// only populated when requested.
type ReportListItem struct {
	Report
	AuthorID            string
	ReviewVisibility    moderation.VisibilityStatus
	AuthorActiveStrikes *int64
}

type ReportListFilter struct {
	Status              moderation.ReportStatus
	Limit               int
	IncludeStrikeCounts bool
}

type StrikeUpsert struct {
	ReviewID string
	AuthorID string
	IssuedBy string
	At       time.Time
}

type Strike struct {
	ID        string
	ReviewID  string
	UserID    string
	IssuedBy  string
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appeal struct {
	ID         string
	UserID     string
	Message    *string
	Status     moderation.AppealStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy *string
}

type AppealCreate struct {
	UserID    string
	Message   *string
	CreatedAt time.Time
}

// AppealListItem carries the appellant's suspension as of read time.
type AppealListItem struct {
	Appeal
	UserEmail      string
	SuspendedUntil *time.Time
}

// StatusChange is a conditional terminal transition; it applies only while
// the row is still in From.
type StatusChange[S ~string] struct {
	ID         string
	From       S
	To         S
	ResolvedAt time.Time
	ResolvedBy string
}

type ReviewRepository interface {
	GetReview(ctx context.Context, reviewID string) (Review, error)
	CreateReview(ctx context.Context, input ReviewCreate) (Review, error)
	HideReview(ctx context.Context, input ReviewHide) error
	UnhideReview(ctx context.Context, reviewID string) error
}

type ReportRepository interface {
	CreateReport(ctx context.Context, input ReportCreate) (Report, error)
	GetReport(ctx context.Context, reportID string) (Report, error)
	ListReports(ctx context.Context, filter ReportListFilter) ([]ReportListItem, error)
	TransitionReport(ctx context.Context, change StatusChange[moderation.ReportStatus]) (bool, error)
}

type StrikeRepository interface {
	UpsertActiveStrike(ctx context.Context, input StrikeUpsert) error
	RevokeStrike(ctx context.Context, reviewID string, at time.Time) (bool, error)
	CountActiveStrikes(ctx context.Context, userID string) (int64, error)
	ListStrikes(ctx context.Context, userID string) ([]Strike, error)
}

type AppealRepository interface {
	CreateAppeal(ctx context.Context, input AppealCreate) (Appeal, error)
	GetAppeal(ctx context.Context, appealID string) (Appeal, error)
	ListAppeals(ctx context.Context, status moderation.AppealStatus, limit int) ([]AppealListItem, error)
	TransitionAppeal(ctx context.Context, change StatusChange[moderation.AppealStatus]) (bool, error)
}
