package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ltcare/familyhub/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// TokenParser validates a bearer token and returns its user id
type TokenParser interface {
	Parse(token string) (int64, error)
}

// UserChecker reports whether a user may still use the API
type UserChecker interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// Authenticate requires a valid "Bearer <token>" header belonging to an
// existing, active user and stores the user id in the request context.
func Authenticate(tokens TokenParser, users UserChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			active, err := users.IsActive(r.Context(), userID)
			if err != nil {
				logger.Error("failed to load user for token", zap.Int64("user_id", userID), zap.Error(err))
				response.InternalError(w, "Failed to authenticate")
				return
			}
			if !active {
				response.Unauthorized(w, "User not found or disabled")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
