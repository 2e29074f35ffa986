package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/fkhayef/sharedexpenses/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// UserIDHeader carries the caller id set by the trusted gateway
	UserIDHeader = "X-User-ID"
)

// Identity reads the caller id from the X-User-ID header. When the header is
// absent and devUserID is positive, requests run as devUserID (development only).
// Requests with neither are rejected.
func Identity(devUserID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := devUserID

			if raw := strings.TrimSpace(r.Header.Get(UserIDHeader)); raw != "" {
				parsed, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || parsed <= 0 {
					response.Unauthorized(w, "Invalid "+UserIDHeader+" header")
					return
				}
				userID = parsed
			}

			if userID <= 0 {
				response.Unauthorized(w, UserIDHeader+" header required")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID adds the caller id to the context
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
