package httpapi

import (
	"net/http"
	"strconv"

	"catalogo/internal/usecase/notification"
)

type notificationHandler struct {
	svc NotificationService
}

func (h *notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "NOTIFICATIONS_UNAVAILABLE", "notification service is not configured")
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "unread must be a boolean")
			return
		}
		unreadOnly = parsed
	}
	identity, _ := identityFromContext(r.Context())

	items, err := h.svc.List(r.Context(), notification.ListInput{
		RecipientID: identity.UserID,
		UnreadOnly:  unreadOnly,
		Limit:       limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, notificationResponse{
			ID:        item.ID,
			Type:      string(item.Type),
			ActorID:   item.ActorID,
			ReviewID:  item.ReviewID,
			FollowID:  item.FollowID,
			CreatedAt: item.CreatedAt,
			ReadAt:    item.ReadAt,
		})
	}
	writeJSON(w, http.StatusOK, listResponse[notificationResponse]{Items: out})
}

func (h *notificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "NOTIFICATIONS_UNAVAILABLE", "notification service is not configured")
		return
	}
	identity, _ := identityFromContext(r.Context())

	updated, err := h.svc.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
