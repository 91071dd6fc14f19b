// Package auth implements the token codec: signed, expiring JWT access
// tokens and opaque refresh-token secrets.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vkuzmin/dockeeper/internal/common"
)

// TokenTypeAccess is the token_type claim value carried by access tokens.
// Parsing rejects any other value, so a refresh artifact can never be
// replayed as an access token.
const TokenTypeAccess = "access"

// AccessClaims are the claims embedded in and verified from an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// GenerateAccessToken builds claims {sub, token_type="access", iat=now,
// exp=now+ttl} and signs them with secret under the named algorithm.
func GenerateAccessToken(subject string, secret []byte, algorithm string, now time.Time, ttl time.Duration) (string, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return "", fmt.Errorf("unknown signing algorithm %q", algorithm)
	}

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: TokenTypeAccess,
	}

	return jwt.NewWithClaims(method, claims).SignedString(secret)
}

// ParseAccessToken verifies signature and expiry, returning
// common.ErrInvalidAccessToken for malformed, tampered, or expired tokens.
// A well-signed token whose token_type is not "access" or whose subject is
// empty fails with common.ErrInvalidTokenPayload.
func ParseAccessToken(tokenString string, secret []byte, algorithm string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{algorithm}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidAccessToken
	}

	if claims.TokenType != TokenTypeAccess || claims.Subject == "" {
		return nil, common.ErrInvalidTokenPayload
	}

	return claims, nil
}
