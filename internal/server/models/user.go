// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. PasswordHash is opaque to everything except
// the credential hasher.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
