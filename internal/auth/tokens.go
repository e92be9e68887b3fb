// One-time tokens for email verification and password reset.
//
// The plain token is sent to the user in a link; only its SHA256 hex digest
// is stored. SHA256 (not bcrypt) is sufficient here because the tokens are
// cryptographically random and cannot be dictionary-attacked, and lookup by
// hash has to be indexable.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// NewOneTimeToken returns a URL-safe random token (32 bytes of entropy).
func NewOneTimeToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; a broken entropy
		// source is unrecoverable.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// HashToken returns the SHA256 hex digest of a plain token, the form in
// which tokens are persisted and looked up.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// TokenExpired reports whether a token issued at sentAt has outlived ttl.
// A nil sentAt counts as expired: no token was ever issued.
func TokenExpired(sentAt *time.Time, ttl time.Duration, now time.Time) bool {
	if sentAt == nil {
		return true
	}
	return now.After(sentAt.Add(ttl))
}
