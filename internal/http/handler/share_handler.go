package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shareport/shareport/internal/http/middleware"
	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/service"
)

type ShareHandler struct {
	gate *service.ShareAccessService
}

func NewShareHandler(gate *service.ShareAccessService) *ShareHandler {
	return &ShareHandler{gate: gate}
}

// Download backs the public share link. The password travels in the
// X-Share-Password header, with a query/form fallback for plain-browser access.
// Denials are generic on purpose; the body never explains which gate refused.
func (h *ShareHandler) Download(w http.ResponseWriter, r *http.Request) {
	password := r.Header.Get("X-Share-Password")
	if password == "" {
		password = r.FormValue("password")
	}
	decision, err := h.gate.Authorize(r.Context(), service.AccessRequest{
		PublicID:  chi.URLParam(r, "publicID"),
		Password:  password,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		observability.Audit(r, "share.download.error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not process download")
		return
	}

	switch decision.Outcome {
	case service.AccessAllowed:
		observability.Audit(r, "share.download.allowed", "ip", middleware.ClientIP(r))
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
	case service.AccessPasswordRequired:
		response.Error(w, r, http.StatusForbidden, "PASSWORD_REQUIRED", "this link requires a password")
	case service.AccessForbidden:
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "access denied")
	case service.AccessRateLimited:
		response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many downloads, try again later")
	default:
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "not found")
	}
}
