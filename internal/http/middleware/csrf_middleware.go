package middleware

import (
	"net/http"

	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/security"
)

// CSRFMiddleware enforces the double-submit pattern on state-changing
// dashboard routes: the value of the csrf cookie (issued at login, readable by
// the frontend) must be echoed in the X-CSRF-Token header. Safe methods pass
// through untouched.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		cookie := security.GetCookie(r, security.CSRFCookieName)
		header := r.Header.Get("X-CSRF-Token")
		if cookie == "" || header == "" || !security.SecretsEqual(header, cookie) {
			response.Error(w, r, http.StatusForbidden, "CSRF_REJECTED", "missing or mismatched csrf token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
