package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// refreshSecretBytes is the entropy of a raw refresh secret. 64 random bytes
// encode to ~86 base64url characters.
const refreshSecretBytes = 64

// GenerateRefreshSecret returns a cryptographically random, URL-safe refresh
// secret. The secret is never derived from user data.
func GenerateRefreshSecret() (string, error) {
	b := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshSecret returns the SHA-256 hex digest of a raw refresh secret.
// A fast hash is fine here: the input already carries 64 bytes of entropy
// and the digest is a lookup key, not a password.
func HashRefreshSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RefreshExpiry computes the absolute expiry of a refresh token issued at now.
func RefreshExpiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).UTC()
}
