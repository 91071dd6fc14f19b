package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vkuzmin/dockeeper/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	now := time.Now()

	tok, err := GenerateAccessToken("alice", secret, "HS256", now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(tok, secret, "HS256")
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "alice")
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token_type mismatch: got %q", claims.TokenType)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("exp-iat mismatch: got %v want %v", got, time.Hour)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	issued := time.Now().Add(-16 * time.Minute)

	tok, err := GenerateAccessToken("u1", secret, "HS256", issued, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(tok, secret, "HS256"); err != common.ErrInvalidAccessToken {
		t.Fatalf("expected ErrInvalidAccessToken for expired token, got %v", err)
	}
}

func TestParseAccessToken_NotYetExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	issued := time.Now().Add(-14 * time.Minute)

	tok, err := GenerateAccessToken("u1", secret, "HS256", issued, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(tok, secret, "HS256"); err != nil {
		t.Fatalf("token at minute 14 of 15 must still parse, got %v", err)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("u2", []byte("right-secret"), "HS256", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(tok, []byte("wrong-secret"), "HS256"); err != common.ErrInvalidAccessToken {
		t.Fatalf("expected ErrInvalidAccessToken for bad signature, got %v", err)
	}
}

func TestParseAccessToken_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := ParseAccessToken("not.a.jwt", []byte("k"), "HS256"); err != common.ErrInvalidAccessToken {
		t.Fatalf("expected ErrInvalidAccessToken for malformed token, got %v", err)
	}
}

// A well-signed token with the wrong token_type must be rejected even though
// its signature verifies.
func TestParseAccessToken_TypeConfusion(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: "refresh",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := ParseAccessToken(tok, secret, "HS256"); err != common.ErrInvalidTokenPayload {
		t.Fatalf("expected ErrInvalidTokenPayload, got %v", err)
	}
}

func TestParseAccessToken_EmptySubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateAccessToken("", secret, "HS256", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(tok, secret, "HS256"); err != common.ErrInvalidTokenPayload {
		t.Fatalf("expected ErrInvalidTokenPayload for empty subject, got %v", err)
	}
}

func TestGenerateAccessToken_UnknownAlgorithm(t *testing.T) {
	t.Parallel()

	if _, err := GenerateAccessToken("u", []byte("k"), "HS25", time.Now(), time.Hour); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}
