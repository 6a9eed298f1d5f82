package auth

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	service "github.com/pikoUsername/roblox-searcher-backend/internal/services"
)

// SessionMiddleware guards the storefront purchase routes with an opaque
// session token carried in the Token header.
func SessionMiddleware(sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Token")
			if raw == "" {
				http.Error(w, "token header missing", http.StatusForbidden)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "invalid format of token", http.StatusBadRequest)
				return
			}

			valid, err := sessions.Validate(r.Context(), id)
			if err != nil {
				slog.Error("failed to validate session token", "token_id", id, "error", err)
				http.Error(w, "failed to validate token", http.StatusInternalServerError)
				return
			}
			if !valid {
				http.Error(w, "invalid or expired token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
