package middleware

import (
	"net/http"
)

// CacheControl returns a middleware that sets the Cache-Control header on
// every response.
func CacheControl(directive string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable. Used for responses that embed
// per-session tokens.
func NoStore(next http.Handler) http.Handler {
	return CacheControl("no-store, private")(next)
}
