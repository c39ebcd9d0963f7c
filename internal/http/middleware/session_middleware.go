package middleware

import (
	"context"
	"net/http"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/security"
)

type contextKey string

const sessionContextKey contextKey = "admin_session"

// SessionValidator is the slice of the auth service this middleware needs.
type SessionValidator interface {
	Validate(token string) (*domain.AdminSession, error)
}

// RequireSession guards every dashboard route. Absent, expired, and revoked
// sessions are all answered with the same 401.
func RequireSession(auth SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.GetCookie(r, security.SessionCookieName)
			if token == "" {
				observability.RecordSessionValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			session, err := auth.Validate(token)
			if err != nil {
				observability.RecordSessionValidation(r.Context(), "error")
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not validate session")
				return
			}
			if session == nil {
				observability.RecordSessionValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "session expired or invalid")
				return
			}
			observability.RecordSessionValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*domain.AdminSession, bool) {
	s, ok := ctx.Value(sessionContextKey).(*domain.AdminSession)
	return s, ok
}
