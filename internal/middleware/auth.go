package middleware

import (
	"context"
	"net/http"

	"github.com/sheisgracious/mindwell/internal/auth"
	"github.com/sheisgracious/mindwell/internal/transport"
)

const AccessCookie = "mw_access"

type accountIDKey struct{}

// RequireAccount rejects requests without a valid access token and stores the
// authenticated account id in the request context.
func RequireAccount(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
				return
			}

			cookie, err := r.Cookie(AccessCookie)
			if err != nil || cookie.Value == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			claims, err := manager.Parse(cookie.Value)
			if err != nil || claims.TokenUse != "access" || claims.Subject == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AccountIDFromContext(ctx context.Context) string {
	if v := ctx.Value(accountIDKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AdminAPIKey guards the plan-catalog admin endpoints with a shared key.
func AdminAPIKey(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}
			if r.Header.Get("X-Admin-Key") != adminKey {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
