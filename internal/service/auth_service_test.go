package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/repository"
)

type fakeSessionRepo struct {
	mu     sync.Mutex
	nextID uint
	byHash map[string]*domain.AdminSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1, byHash: map[string]*domain.AdminSession{}}
}

func (r *fakeSessionRepo) Create(s *domain.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.ID = r.nextID
	r.nextID++
	r.byHash[cp.TokenHash] = &cp
	s.ID = cp.ID
	return nil
}

func (r *fakeSessionRepo) FindActiveByTokenHash(hash string, now time.Time) (*domain.AdminSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byHash[hash]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) DeleteByTokenHash(hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHash, hash)
	return nil
}

func (r *fakeSessionRepo) CleanupExpired(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, s := range r.byHash {
		if !s.ExpiresAt.After(now) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}

func newTestAuthService(sessions *fakeSessionRepo, attempts *fakeLoginAttemptRepo) *AuthService {
	throttle := NewLoginThrottle(attempts, 5, 15*time.Minute)
	return NewAuthService(sessions, throttle, "correct horse battery", "bypass-secret", "pepper", 7*24*time.Hour)
}

func TestAuthServiceLoginSuccessEstablishesSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	attempts := &fakeLoginAttemptRepo{}
	svc := newTestAuthService(sessions, attempts)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	session, token, err := svc.Login(LoginInput{Password: "correct horse battery", IP: "10.0.0.1", UserAgent: "ua"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a raw token")
	}
	if got, want := session.ExpiresAt, base.Add(7*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expires_at: got %v want %v", got, want)
	}
	if attempts.count() != 1 {
		t.Fatalf("expected one recorded attempt, got %d", attempts.count())
	}

	// The raw token must resolve while the session lives, and the stored
	// row must not contain it.
	if _, ok := sessions.byHash[token]; ok {
		t.Fatal("raw token stored verbatim")
	}
	svc.now = func() time.Time { return base.Add(6*24*time.Hour + 23*time.Hour) }
	resolved, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resolved == nil || resolved.ID != session.ID {
		t.Fatalf("expected live session, got %v", resolved)
	}

	svc.now = func() time.Time { return base.Add(7*24*time.Hour + time.Minute) }
	resolved, err = svc.Validate(token)
	if err != nil {
		t.Fatalf("validate after expiry: %v", err)
	}
	if resolved != nil {
		t.Fatal("expected expired session to resolve to nil")
	}
}

func TestAuthServiceWrongPasswordRecordsFailure(t *testing.T) {
	svc := newTestAuthService(newFakeSessionRepo(), &fakeLoginAttemptRepo{})

	_, _, err := svc.Login(LoginInput{Password: "wrong", IP: "10.0.0.1", UserAgent: "ua"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceLockoutAfterRepeatedFailures(t *testing.T) {
	attempts := &fakeLoginAttemptRepo{}
	svc := newTestAuthService(newFakeSessionRepo(), attempts)

	for i := 0; i < 5; i++ {
		if _, _, err := svc.Login(LoginInput{Password: "wrong", IP: "10.0.0.1"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// The sixth try is refused before password verification, even with the
	// correct password, and leaves no new attempt row behind.
	before := attempts.count()
	_, _, err := svc.Login(LoginInput{Password: "correct horse battery", IP: "10.0.0.1"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if attempts.count() != before {
		t.Fatalf("locked-out attempt must not be recorded: before=%d after=%d", before, attempts.count())
	}

	// Another IP is unaffected.
	if _, _, err := svc.Login(LoginInput{Password: "correct horse battery", IP: "10.0.0.9"}); err != nil {
		t.Fatalf("other ip login: %v", err)
	}
}

func TestAuthServiceBypassTokenSkipsThrottle(t *testing.T) {
	attempts := &fakeLoginAttemptRepo{}
	svc := newTestAuthService(newFakeSessionRepo(), attempts)

	for i := 0; i < 5; i++ {
		_, _, _ = svc.Login(LoginInput{Password: "wrong", IP: "10.0.0.1"})
	}
	if _, _, err := svc.Login(LoginInput{Password: "correct horse battery", IP: "10.0.0.1"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected lockout, got %v", err)
	}

	session, token, err := svc.Login(LoginInput{BypassToken: "bypass-secret", IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("bypass login while locked: %v", err)
	}
	if session == nil || token == "" {
		t.Fatal("expected session from bypass login")
	}

	// A wrong bypass token falls through to the locked password path.
	if _, _, err := svc.Login(LoginInput{BypassToken: "nope", IP: "10.0.0.1"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected lockout for wrong bypass token, got %v", err)
	}
}

func TestAuthServiceRevokeIsIdempotent(t *testing.T) {
	svc := newTestAuthService(newFakeSessionRepo(), &fakeLoginAttemptRepo{})

	_, token, err := svc.Login(LoginInput{Password: "correct horse battery", IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	resolved, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate after revoke: %v", err)
	}
	if resolved != nil {
		t.Fatal("expected revoked session to resolve to nil")
	}
	if err := svc.Revoke(token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if err := svc.Revoke(""); err != nil {
		t.Fatalf("revoke empty token: %v", err)
	}
}

func TestAuthServiceValidateEmptyToken(t *testing.T) {
	svc := newTestAuthService(newFakeSessionRepo(), &fakeLoginAttemptRepo{})
	resolved, err := svc.Validate("")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resolved != nil {
		t.Fatal("expected nil session for empty token")
	}
}
