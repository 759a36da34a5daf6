// Package identity resolves the requesting user from a trusted header.
//
// Authentication itself is delegated to an external identity provider
// sitting in front of this service; by the time a request arrives here the
// proxy has verified the token and stamped the subject into a header.
// This middleware only lifts that subject into the request context and
// rejects requests that carry none.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Middleware extracts the user subject from the configured header.
type Middleware struct {
	header string
}

func NewMiddleware(header string) *Middleware {
	return &Middleware{header: header}
}

// Middleware rejects requests without a resolvable user subject with 401
// and stores the subject in the context otherwise.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := r.Header.Get(m.header)
		if subject == "" {
			// Same error shape as the API handlers.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user subject from the context, or ""
// when the request never passed through the middleware.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID injects a subject directly, for tests and internal calls.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
