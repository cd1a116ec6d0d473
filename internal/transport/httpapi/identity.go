package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"catalogo/internal/bootstrap/logging"
)

const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
)

// Identity is supplied by the upstream identity provider and trusted as is.
type Identity struct {
	UserID string
	Email  string
}

type identityKey struct{}

func identityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(headerUserID))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing "+headerUserID+" header")
			return
		}
		identity := Identity{
			UserID: userID,
			Email:  strings.TrimSpace(r.Header.Get(headerUserEmail)),
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		ctx = logging.WithAttrs(ctx, slog.String("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireModerator(isModerator func(email string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromContext(r.Context())
			if !ok || isModerator == nil || !isModerator(identity.Email) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "moderator access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
