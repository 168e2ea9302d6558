package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"finlink/internal/shared/auth"
)

type ContextKey string

const UserIDKey ContextKey = "user_id"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth authenticates the caller from the access_token cookie or the
// Authorization header. The verified user ID is stored under UserIDKey and
// attached to the request logger.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			// Try HttpOnly cookie first (browser requests)
			if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				// Fall back to Authorization header (API clients)
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					writeError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				scheme, value, ok := strings.Cut(authHeader, " ")
				if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
					writeError(w, http.StatusUnauthorized, "invalid authorization header format")
					return
				}
				token = strings.TrimSpace(value)
			}

			claims, err := validator.Validate(token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			logger := zerolog.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
			ctx = logger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated user ID stored by Auth.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
