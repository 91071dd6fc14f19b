// Package common defines shared constants and sentinel errors used across
// the dockeeper server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors. The same sentinel covers both "no such user" and
	// "wrong password" so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access-token errors.
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidTokenPayload = errors.New("invalid token payload")
	ErrUserNotFound        = errors.New("user not found")

	// Refresh-token lifecycle errors.
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenOrphaned = errors.New("refresh token has no associated user")
)
