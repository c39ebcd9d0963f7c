package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	sharePasswordSaltLen    = 16
	sharePasswordIterations = 120_000
	sharePasswordKeyLen     = 32
)

// HashSharePassword derives a storable hash for a per-file share password.
// PBKDF2-SHA256 with a high iteration count keeps offline guessing slow.
func HashSharePassword(password string) (hash string, salt string, err error) {
	rawSalt := make([]byte, sharePasswordSaltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), rawSalt, sharePasswordIterations, sharePasswordKeyLen, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(rawSalt), nil
}

// VerifySharePassword re-derives with the stored salt and compares in constant
// time. Malformed stored values never match and never panic.
func VerifySharePassword(password, hash, salt string) bool {
	storedKey, err := hex.DecodeString(hash)
	if err != nil || len(storedKey) == 0 {
		return false
	}
	rawSalt, err := hex.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return false
	}
	key := pbkdf2.Key([]byte(password), rawSalt, sharePasswordIterations, len(storedKey), sha256.New)
	return subtle.ConstantTimeCompare(key, storedKey) == 1
}

// SecretsEqual compares two configured secrets without leaking length or
// prefix timing. Empty expected secrets never match.
func SecretsEqual(supplied, expected string) bool {
	if expected == "" {
		return false
	}
	suppliedSum := sha256.Sum256([]byte(supplied))
	expectedSum := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(suppliedSum[:], expectedSum[:]) == 1
}
