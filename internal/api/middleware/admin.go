package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tasksvc/tasksvc-api/internal/api/shared"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// AdminMiddleware gates administrative routes on the stored role. The role is
// read from the database on every request rather than trusted from the token,
// so a demotion takes effect before the token expires.
type AdminMiddleware struct {
	userStore store.UserStore
}

// NewAdminMiddleware creates an AdminMiddleware with the given dependencies.
func NewAdminMiddleware(userStore store.UserStore) *AdminMiddleware {
	return &AdminMiddleware{userStore: userStore}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// It must run after Authenticate.
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		user, err := m.userStore.GetByID(r.Context(), userID)
		if err != nil {
			// A valid token whose subject no longer exists is an auth
			// failure, not a server fault.
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to authorize request", err)
			return
		}

		if !user.IsAdmin() {
			slog.Debug("non-admin user denied administrative route",
				slog.String("user_id", userID.String()),
				slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusForbidden,
				"Administrator role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
