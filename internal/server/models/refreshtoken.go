package models

import "time"

// RefreshToken is one issued, rotatable refresh credential. Only the SHA-256
// hex digest of the raw secret is stored; the raw secret never touches the
// database.
//
// A token is usable for refresh iff Revoked is false and ExpiresAt is in the
// future.
type RefreshToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
