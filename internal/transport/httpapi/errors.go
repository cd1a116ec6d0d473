package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/errs"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeServiceError maps the error taxonomy onto stable HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	switch kind {
	case errs.KindNotFound:
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errs.KindForbidden:
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errs.KindInvalidOperation:
		writeError(w, http.StatusConflict, "INVALID_OPERATION", err.Error())
	case errs.KindStorageFailure:
		logging.Error(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusServiceUnavailable, "STORAGE_FAILURE", "storage is unavailable, retry later")
	default:
		logging.Error(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

// decodeJSON accepts an empty body as a zero-valued request.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
