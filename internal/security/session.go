package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie that carries the storefront session ID.
const SessionCookie = "storefront_sid"

const sessionMaxAge = 30 * 24 * time.Hour

// SessionFromRequest returns the session ID carried by the request cookie.
// Cookies that are not UUIDs are ignored.
func SessionFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// EnsureSession returns the request's session ID, creating one and setting
// the cookie on w when the request has none.
func EnsureSession(w http.ResponseWriter, r *http.Request, secure bool) (id string, created bool) {
	if id, ok := SessionFromRequest(r); ok {
		return id, false
	}

	id = uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}
