// Package middleware provides HTTP middleware for the hunt API.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKey guards routes behind a shared X-API-Key header. An empty
// configured key rejects all requests.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
