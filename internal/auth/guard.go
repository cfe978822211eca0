package auth

import (
	"context"
	"net/http"

	"github.com/isdelr/pinpass/internal/session"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey = contextKey("userID")

// RequireUser creates a middleware for protecting routes. Requests without a
// signed-in session are redirected to signInPath. It must run after the
// session middleware.
func RequireUser(signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				log.Error().Str("path", r.URL.Path).Msg("Session middleware not installed")
				http.Redirect(w, r, signInPath, http.StatusFound)
				return
			}

			userID, ok := sess.UserID()
			if !ok {
				http.Redirect(w, r, signInPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user ID stored by RequireUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}
