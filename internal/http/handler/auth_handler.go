package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shareport/shareport/internal/http/middleware"
	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/security"
	"github.com/shareport/shareport/internal/service"
)

type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

type loginRequest struct {
	Password    string `json:"password"`
	BypassToken string `json:"bypass_token,omitempty"`
}

type loginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	CSRFToken string    `json:"csrf_token"`
}

// Login exchanges the admin password (or the bypass token) for a session
// cookie. The error body never says which check failed beyond the two
// user-facing categories.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	session, token, err := h.auth.Login(service.LoginInput{
		Password:    req.Password,
		BypassToken: req.BypassToken,
		IP:          middleware.ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	switch {
	case errors.Is(err, service.ErrRateLimited):
		observability.Audit(r, "auth.login.rate_limited", "ip", middleware.ClientIP(r))
		response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many attempts, try again later")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		observability.Audit(r, "auth.login.failed", "ip", middleware.ClientIP(r))
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid password")
		return
	case err != nil:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	csrfToken, err := security.NewSessionToken()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}
	maxAge := int(h.auth.SessionTTL().Seconds())
	security.SetSessionCookie(w, token, maxAge, h.cookieSecure)
	security.SetCSRFCookie(w, csrfToken, maxAge, h.cookieSecure)
	observability.Audit(r, "auth.login.succeeded", "ip", session.IP, "session_id", session.ID)
	response.JSON(w, r, http.StatusOK, loginResponse{ExpiresAt: session.ExpiresAt, CSRFToken: csrfToken})
}

// Logout revokes the presented session, if any, and clears both cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := security.GetCookie(r, security.SessionCookieName)
	if err := h.auth.Revoke(token); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "logout failed")
		return
	}
	security.ClearSessionCookie(w, h.cookieSecure)
	security.ClearCSRFCookie(w, h.cookieSecure)
	observability.Audit(r, "auth.logout")
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

type sessionInfo struct {
	SessionID uint      `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	response.JSON(w, r, http.StatusOK, sessionInfo{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		IP:        session.IP,
		UserAgent: session.UserAgent,
	})
}
