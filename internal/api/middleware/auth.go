package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mcoot/userdata-go/internal/api/apierr"
)

// APIKey creates middleware that only lets userdata servers holding key
// through. An empty key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
