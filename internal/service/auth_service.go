package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/security"
)

type LoginInput struct {
	Password    string
	BypassToken string
	IP          string
	UserAgent   string
}

// AuthService authenticates the single administrator and manages opaque
// dashboard sessions. Secrets arrive through the constructor; nothing here
// reads ambient process state.
type AuthService struct {
	sessions      repository.SessionRepository
	throttle      *LoginThrottle
	adminPassword string
	bypassToken   string
	pepper        string
	sessionTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	sessions repository.SessionRepository,
	throttle *LoginThrottle,
	adminPassword, bypassToken, pepper string,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		sessions:      sessions,
		throttle:      throttle,
		adminPassword: adminPassword,
		bypassToken:   bypassToken,
		pepper:        pepper,
		sessionTTL:    sessionTTL,
		now:           time.Now,
	}
}

// Login authenticates with either the admin password or the bypass token.
// The bypass token exists to recover from throttle lockouts, so it is checked
// first and skips the throttle entirely. Attempts rejected while locked are
// not recorded, which keeps the lockout bounded under automated probing.
// Returns the persisted session and the raw token to hand to the cookie.
func (s *AuthService) Login(in LoginInput) (*domain.AdminSession, string, error) {
	if in.BypassToken != "" && security.SecretsEqual(in.BypassToken, s.bypassToken) {
		observability.RecordAuthLogin("bypass", "success")
		return s.establishSession(in, "bypass")
	}

	locked, err := s.throttle.IsLocked(in.IP)
	if err != nil {
		return nil, "", fmt.Errorf("check lockout: %w", err)
	}
	if locked {
		observability.RecordAuthLogin("password", "rate_limited")
		slog.Warn("login rejected while locked", "ip", in.IP)
		return nil, "", ErrRateLimited
	}

	if !security.SecretsEqual(in.Password, s.adminPassword) {
		if err := s.throttle.RecordAttempt(in.IP, in.UserAgent, false); err != nil {
			return nil, "", fmt.Errorf("record failed attempt: %w", err)
		}
		observability.RecordAuthLogin("password", "failure")
		return nil, "", ErrInvalidCredentials
	}

	observability.RecordAuthLogin("password", "success")
	return s.establishSession(in, "password")
}

func (s *AuthService) establishSession(in LoginInput, method string) (*domain.AdminSession, string, error) {
	if err := s.throttle.RecordAttempt(in.IP, in.UserAgent, true); err != nil {
		return nil, "", fmt.Errorf("record successful attempt: %w", err)
	}
	token, err := security.NewSessionToken()
	if err != nil {
		return nil, "", err
	}
	session := &domain.AdminSession{
		TokenHash: security.HashSessionToken(token, s.pepper),
		UserAgent: in.UserAgent,
		IP:        in.IP,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, "", fmt.Errorf("persist session: %w", err)
	}
	slog.Info("admin session established", "method", method, "ip", in.IP, "expires_at", session.ExpiresAt)
	return session, token, nil
}

// Validate resolves a presented token to its live session. A nil session with
// a nil error means absent, expired, or revoked; expired rows are left in
// place for later cleanup.
func (s *AuthService) Validate(token string) (*domain.AdminSession, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.FindActiveByTokenHash(security.HashSessionToken(token, s.pepper), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// Revoke logs the session out. Revoking an unknown token is a no-op.
func (s *AuthService) Revoke(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByTokenHash(security.HashSessionToken(token, s.pepper))
}

// SessionTTL is exposed for the cookie max-age.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }
