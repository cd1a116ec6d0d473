package httpapi

import (
	"time"

	"catalogo/internal/ports"
	"catalogo/internal/usecase/follow"
	"catalogo/internal/usecase/moderation"
)

type reportResponse struct {
	ID                  string     `json:"id"`
	ReviewID            string     `json:"review_id"`
	ReporterID          string     `json:"reporter_id"`
	Reason              string     `json:"reason"`
	Details             *string    `json:"details,omitempty"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy          *string    `json:"resolved_by,omitempty"`
	AuthorID            string     `json:"author_id,omitempty"`
	ReviewVisibility    string     `json:"review_visibility,omitempty"`
	AuthorActiveStrikes *int64     `json:"author_active_strikes,omitempty"`
}

func toReportResponse(report ports.Report) reportResponse {
	return reportResponse{
		ID:         report.ID,
		ReviewID:   report.ReviewID,
		ReporterID: report.ReporterID,
		Reason:     string(report.Reason),
		Details:    report.Details,
		Status:     string(report.Status),
		CreatedAt:  report.CreatedAt,
		ResolvedAt: report.ResolvedAt,
		ResolvedBy: report.ResolvedBy,
	}
}

func toReportListResponse(items []ports.ReportListItem) []reportResponse {
	out := make([]reportResponse, 0, len(items))
	for _, item := range items {
		resp := toReportResponse(item.Report)
		resp.AuthorID = item.AuthorID
		resp.ReviewVisibility = string(item.ReviewVisibility)
		resp.AuthorActiveStrikes = item.AuthorActiveStrikes
		out = append(out, resp)
	}
	return out
}

type appealResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	UserEmail      string     `json:"user_email,omitempty"`
	Message        *string    `json:"message,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy     *string    `json:"resolved_by,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

func toAppealResponse(appeal ports.Appeal) appealResponse {
	return appealResponse{
		ID:         appeal.ID,
		UserID:     appeal.UserID,
		Message:    appeal.Message,
		Status:     string(appeal.Status),
		CreatedAt:  appeal.CreatedAt,
		ResolvedAt: appeal.ResolvedAt,
		ResolvedBy: appeal.ResolvedBy,
	}
}

func toAppealListResponse(items []ports.AppealListItem) []appealResponse {
	out := make([]appealResponse, 0, len(items))
	for _, item := range items {
		resp := toAppealResponse(item.Appeal)
		resp.UserEmail = item.UserEmail
		resp.SuspendedUntil = item.SuspendedUntil
		out = append(out, resp)
	}
	return out
}

type moderationResponse struct {
	ReviewID          string     `json:"review_id"`
	VisibilityStatus  string     `json:"visibility_status"`
	ActiveStrikeCount int64      `json:"active_strike_count"`
	StrikeLimit       int        `json:"strike_limit"`
	SuspendedUntil    *time.Time `json:"suspended_until"`
}

func toModerationResponse(result moderation.ModerationResult) moderationResponse {
	return moderationResponse{
		ReviewID:          result.ReviewID,
		VisibilityStatus:  result.VisibilityStatus,
		ActiveStrikeCount: result.ActiveStrikeCount,
		StrikeLimit:       result.StrikeLimit,
		SuspendedUntil:    result.SuspendedUntil,
	}
}

type followResponse struct {
	FollowID         string `json:"follow_id,omitempty"`
	Status           string `json:"status"`
	RequiresApproval bool   `json:"requires_approval"`
}

func toFollowResponse(result follow.Result) followResponse {
	return followResponse{
		FollowID:         result.FollowID,
		Status:           string(result.Relationship),
		RequiresApproval: result.RequiresApproval,
	}
}

type followRequestResponse struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type notificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	ActorID   string     `json:"actor_id"`
	ReviewID  *string    `json:"review_id,omitempty"`
	FollowID  *string    `json:"follow_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}
