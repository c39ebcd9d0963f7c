package service

import "errors"

var (
	// ErrInvalidCredentials covers every authentication mismatch: wrong admin
	// password or a supplied-but-wrong bypass token. The caller must not be
	// able to tell which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when the per-IP login window is exhausted.
	ErrRateLimited = errors.New("too many attempts")
	// ErrInvalidSettings marks share-settings writes whose values are out of
	// bounds, at any tier.
	ErrInvalidSettings = errors.New("invalid share settings")
)
