package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/domain/social"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/follow"
	"catalogo/internal/usecase/moderation"
	"catalogo/internal/usecase/notification"
)

type ModerationService interface {
	ListReports(context.Context, moderation.ListReportsInput) ([]ports.ReportListItem, error)
	TransitionReport(context.Context, moderation.TransitionReportInput) (ports.Report, error)
	CreateReport(context.Context, moderation.CreateReportInput) (ports.Report, error)
	HideReview(context.Context, moderation.HideReviewInput) (moderation.ModerationResult, error)
	UnhideReview(context.Context, string) (moderation.ModerationResult, error)
	CreateAppeal(context.Context, moderation.CreateAppealInput) (ports.Appeal, error)
	ListAppeals(context.Context, moderation.ListAppealsInput) ([]ports.AppealListItem, error)
	TransitionAppeal(context.Context, moderation.TransitionAppealInput) (ports.Appeal, error)
	SuspensionStatus(context.Context, string) (moderation.SuspensionStatus, error)
}

type FollowService interface {
	Follow(ctx context.Context, followerID string, targetID string) (follow.Result, error)
	Unfollow(ctx context.Context, followerID string, targetID string) (follow.Result, error)
	RespondToFollowRequest(context.Context, follow.RespondInput) (follow.Result, error)
	FollowCounters(ctx context.Context, userID string) (follow.Counters, error)
	Relationship(ctx context.Context, viewerID string, targetID string) (social.Relationship, error)
	ListFollowRequests(ctx context.Context, userID string, limit int) ([]ports.Follow, error)
}

type NotificationService interface {
	List(context.Context, notification.ListInput) ([]ports.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type Dependencies struct {
	Moderation    ModerationService
	Follows       FollowService
	Notifications NotificationService
	IsModerator   func(email string) bool
	Metrics       bool
	Timeout       time.Duration
}

// NewRouter mounts every route on a chi router.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if deps.Timeout > 0 {
		r.Use(chimiddleware.Timeout(deps.Timeout))
	}
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	mod := &moderationHandler{svc: deps.Moderation}
	fol := &followHandler{svc: deps.Follows}
	notes := &notificationHandler{svc: deps.Notifications}

	r.Group(func(r chi.Router) {
		r.Use(requireIdentity)

		r.Post("/reports", mod.createReport)
		r.Post("/appeals", mod.createAppeal)
		r.Get("/users/{id}/suspension", mod.suspensionStatus)

		r.Post("/users/{id}/follow", fol.follow)
		r.Delete("/users/{id}/follow", fol.unfollow)
		r.Get("/users/{id}/relationship", fol.relationship)
		r.Get("/users/{id}/follow-counters", fol.counters)
		r.Get("/follow-requests", fol.listRequests)
		r.Post("/follow-requests/{id}/accept", fol.respond(string(social.ActionAccept)))
		r.Post("/follow-requests/{id}/reject", fol.respond(string(social.ActionReject)))

		r.Get("/notifications", notes.list)
		r.Post("/notifications/read-all", notes.markAllRead)

		r.Route("/moderation", func(r chi.Router) {
			r.Use(requireModerator(deps.IsModerator))
			r.Get("/reports", mod.listReports)
			r.Post("/reports/{id}/resolve", mod.transitionReport("RESOLVED"))
			r.Post("/reports/{id}/dismiss", mod.transitionReport("DISMISSED"))
			r.Post("/reviews/{id}/hide", mod.hideReview)
			r.Post("/reviews/{id}/unhide", mod.unhideReview)
			r.Get("/appeals", mod.listAppeals)
			r.Post("/appeals/{id}/resolve", mod.transitionAppeal("RESOLVED"))
			r.Post("/appeals/{id}/reject", mod.transitionAppeal("REJECTED"))
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("component", "http"),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
		if traceID, spanID, ok := parseTraceparent(r.Header.Get("traceparent")); ok {
			ctx = logging.WithTelemetry(ctx, traceID, spanID)
		}
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.Debug(
			ctx,
			"request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

// parseTraceparent extracts ids from a W3C traceparent header
// ("00-<32 hex trace>-<16 hex span>-<2 hex flags>").
func parseTraceparent(header string) (string, string, bool) {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 || len(parts[1]) != 32 || len(parts[2]) != 16 {
		return "", "", false
	}
	if strings.Trim(parts[1], "0") == "" || strings.Trim(parts[2], "0") == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
