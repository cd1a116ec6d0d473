package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalogo/internal/usecase/moderation"
)

type moderationHandler struct {
	svc ModerationService
}

func (h *moderationHandler) ready(w http.ResponseWriter) bool {
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "MODERATION_UNAVAILABLE", "moderation service is not configured")
		return false
	}
	return true
}

func (h *moderationHandler) listReports(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.svc.ListReports(r.Context(), moderation.ListReportsInput{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[reportResponse]{Items: toReportListResponse(items)})
}

func (h *moderationHandler) transitionReport(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready(w) {
			return
		}
		identity, _ := identityFromContext(r.Context())

		report, err := h.svc.TransitionReport(r.Context(), moderation.TransitionReportInput{
			ReportID:    chi.URLParam(r, "id"),
			Target:      target,
			ModeratorID: identity.UserID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(report))
	}
}

type createReportRequest struct {
	ReviewID string  `json:"reviewId"`
	Reason   string  `json:"reason"`
	Details  *string `json:"details"`
}

func (h *moderationHandler) createReport(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req createReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	identity, _ := identityFromContext(r.Context())

	report, err := h.svc.CreateReport(r.Context(), moderation.CreateReportInput{
		ReporterID: identity.UserID,
		ReviewID:   req.ReviewID,
		Reason:     req.Reason,
		Details:    req.Details,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportResponse(report))
}

type hideReviewRequest struct {
	Reason string `json:"reason"`
}

func (h *moderationHandler) hideReview(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req hideReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	identity, _ := identityFromContext(r.Context())

	result, err := h.svc.HideReview(r.Context(), moderation.HideReviewInput{
		ReviewID:    chi.URLParam(r, "id"),
		ModeratorID: identity.UserID,
		Reason:      req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toModerationResponse(result))
}

func (h *moderationHandler) unhideReview(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	result, err := h.svc.UnhideReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toModerationResponse(result))
}

type createAppealRequest struct {
	Message *string `json:"message"`
}

func (h *moderationHandler) createAppeal(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req createAppealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	identity, _ := identityFromContext(r.Context())

	appeal, err := h.svc.CreateAppeal(r.Context(), moderation.CreateAppealInput{
		UserID:  identity.UserID,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppealResponse(appeal))
}

func (h *moderationHandler) listAppeals(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.svc.ListAppeals(r.Context(), moderation.ListAppealsInput{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[appealResponse]{Items: toAppealListResponse(items)})
}

func (h *moderationHandler) transitionAppeal(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready(w) {
			return
		}
		identity, _ := identityFromContext(r.Context())

		appeal, err := h.svc.TransitionAppeal(r.Context(), moderation.TransitionAppealInput{
			AppealID:    chi.URLParam(r, "id"),
			Target:      target,
			ModeratorID: identity.UserID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppealResponse(appeal))
	}
}

func (h *moderationHandler) suspensionStatus(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	status, err := h.svc.SuspensionStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// parseLimit leaves clamping to the usecase; it only rejects non-numbers.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be an integer")
		return 0, false
	}
	return limit, true
}
