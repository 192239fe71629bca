// File: internal/middleware/constants.go
package middleware

import "context"

// Context keys for middleware communication
type contextKey string

const (
    UserIDKey contextKey = "user_id"
)

// AuthCookieName is the cookie that carries the session token.
const AuthCookieName = "auth_token"

// UserIDFromContext returns the authenticated user id set by the JWT middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
    userID, ok := ctx.Value(UserIDKey).(string)
    return userID, ok && userID != ""
}

// WithUserID returns a context carrying userID, as the JWT middleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
    return context.WithValue(ctx, UserIDKey, userID)
}
