package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/statuscope-ai/statuscope/internal/api"
)

// ServiceKeyAuth authenticates the calling service with a shared key. The
// engine trusts its caller (the report generator backend), so this is a
// single key, not per-tenant credentials. An empty configured key disables
// the check for local development.
func ServiceKeyAuth(serviceKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if serviceKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Service-Key")
			if token == "" {
				authHeader := r.Header.Get("Authorization")
				if !strings.HasPrefix(authHeader, "Bearer ") {
					api.Error(w, http.StatusUnauthorized, "missing service key")
					return
				}
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(serviceKey)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid service key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
