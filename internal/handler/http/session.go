package http

import (
	"net/http"

	"github.com/utafrali/storefront/internal/security"
	"github.com/utafrali/storefront/pkg/logger"
)

// Session makes sure every request carries a storefront session cookie and
// stores the session ID in the request context. Mount it before
// middleware.RequestLogger so request logs carry session_id.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := security.EnsureSession(w, r, secure)
			ctx := logger.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
