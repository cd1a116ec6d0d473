package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalogo/internal/usecase/follow"
)

type followHandler struct {
	svc FollowService
}

func (h *followHandler) ready(w http.ResponseWriter) bool {
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "FOLLOW_UNAVAILABLE", "follow service is not configured")
		return false
	}
	return true
}

func (h *followHandler) follow(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	identity, _ := identityFromContext(r.Context())

	result, err := h.svc.Follow(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFollowResponse(result))
}

func (h *followHandler) unfollow(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	identity, _ := identityFromContext(r.Context())

	result, err := h.svc.Unfollow(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFollowResponse(result))
}

func (h *followHandler) respond(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready(w) {
			return
		}
		identity, _ := identityFromContext(r.Context())

		result, err := h.svc.RespondToFollowRequest(r.Context(), follow.RespondInput{
			CurrentUserID: identity.UserID,
			FollowID:      chi.URLParam(r, "id"),
			Action:        action,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toFollowResponse(result))
	}
}

func (h *followHandler) relationship(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	identity, _ := identityFromContext(r.Context())

	relationship, err := h.svc.Relationship(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(relationship)})
}

func (h *followHandler) counters(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	counters, err := h.svc.FollowCounters(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counters)
}

func (h *followHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	identity, _ := identityFromContext(r.Context())

	items, err := h.svc.ListFollowRequests(r.Context(), identity.UserID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]followRequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, followRequestResponse{
			ID:          item.ID,
			FollowerID:  item.FollowerID,
			FollowingID: item.FollowingID,
			CreatedAt:   item.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, listResponse[followRequestResponse]{Items: out})
}
