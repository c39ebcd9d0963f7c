package service

import (
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/repository"
)

// LoginThrottle is a sliding-window brute-force guard keyed by client IP. The
// window is computed over durable LoginAttempt rows, so lockout state survives
// restarts and is shared across replicas.
type LoginThrottle struct {
	attempts    repository.LoginAttemptRepository
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewLoginThrottle(attempts repository.LoginAttemptRepository, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{
		attempts:    attempts,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// IsLocked reports whether the IP has reached the failure budget inside the
// window. Callers must check this before verifying any password.
func (t *LoginThrottle) IsLocked(ip string) (bool, error) {
	since := t.now().Add(-t.window)
	count, err := t.attempts.CountFailedSince(ip, since)
	if err != nil {
		return false, err
	}
	return count >= int64(t.maxAttempts), nil
}

// RecordAttempt appends one immutable attempt row. A success does not clear
// earlier failures; they age out of the window on their own.
func (t *LoginThrottle) RecordAttempt(ip, userAgent string, succeeded bool) error {
	return t.attempts.Append(&domain.LoginAttempt{
		IP:        ip,
		UserAgent: userAgent,
		Succeeded: succeeded,
		CreatedAt: t.now(),
	})
}
