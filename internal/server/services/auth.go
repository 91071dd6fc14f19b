// Package services contains server-side business logic. This file implements
// AuthService, which owns credential verification, access-token issuance and
// validation, and the refresh-token rotation lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vkuzmin/dockeeper/internal/common"
	"github.com/vkuzmin/dockeeper/internal/cryptox"
	"github.com/vkuzmin/dockeeper/internal/dbx"
	"github.com/vkuzmin/dockeeper/internal/logging"
	"github.com/vkuzmin/dockeeper/internal/server/auth"
	"github.com/vkuzmin/dockeeper/internal/server/config"
	"github.com/vkuzmin/dockeeper/internal/server/models"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. It is transient: returned to the transport layer and never persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// AuthResult is the outcome of a successful login or refresh.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// AuthService provides authentication-related operations:
//   - Authenticate: verify credentials and mint a token pair
//   - Refresh: rotate refresh tokens and mint a new pair
//   - DecodeAccessToken / ResolveUserFromToken: per-request identity checks
//   - RevokeAllSessions: bulk invalidation of a user's refresh tokens
//
// Access tokens are stateless and cannot be revoked before expiry; logout
// only ever invalidates refresh tokens.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	jwtAlgorithm                 string
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		logger:                       l.With("module", "auth_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		jwtAlgorithm:                 cfg.JWTAlgorithm,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Authenticate verifies username/password and, on success, returns the user
// together with a fresh token pair. An unknown username and a wrong password
// fail with the same common.ErrInvalidCredentials, so the error can not be
// used to enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !cryptox.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	s.purgeExpired(ctx)

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: *pair}, nil
}

// Refresh exchanges a raw refresh secret for a new token pair, revoking the
// consumed token. Revocation of the old token and creation of the new one
// commit in the same transaction: a crash between them can neither leave the
// old token replayable nor lose the new one.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, error) {
	s.purgeExpired(ctx)

	tokenHash := auth.HashRefreshSecret(rawRefreshToken)

	var result *AuthResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		stored, err := repo.FindValidByHash(ctx, tokenHash, time.Now().UTC())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		// the lookup already excludes revoked rows; re-check anyway
		if stored.Revoked {
			return common.ErrInvalidRefreshToken
		}

		if err := repo.Revoke(ctx, stored.ID); err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRefreshTokenOrphaned
			}
			return fmt.Errorf("error resolving token owner: %w", err)
		}

		pair, err := s.generateTokenPair(ctx, user, tx)
		if err != nil {
			return err
		}

		result = &AuthResult{User: user, Tokens: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeAccessToken validates an access token and returns its subject and
// token type. Codec failures are mapped to the service error taxonomy.
func (s *AuthService) DecodeAccessToken(token string) (string, string, error) {
	claims, err := auth.ParseAccessToken(token, s.jwtSecret, s.jwtAlgorithm)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.TokenType, nil
}

// ResolveUserFromToken decodes an access token and resolves its subject to a
// user record. A valid token whose subject no longer exists (user deleted
// after issuance) fails with common.ErrUserNotFound.
func (s *AuthService) ResolveUserFromToken(ctx context.Context, token string) (*models.User, error) {
	subject, _, err := s.DecodeAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// RevokeAllSessions revokes every active refresh token of a user and returns
// how many were revoked. There is no HTTP route for this; it exists for
// session-invalidation tooling.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID int64) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID)
}

// purgeExpired opportunistically deletes expired refresh tokens to bound
// table growth. Cleanup failure must never abort a login or refresh.
func (s *AuthService) purgeExpired(ctx context.Context) {
	if _, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn(ctx, "expired refresh token purge failed", "error", err.Error())
	}
}

// generateTokenPair mints an access token for the user and persists a new
// hashed refresh token row through tx.
func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	now := time.Now().UTC()

	access, err := auth.GenerateAccessToken(user.Username, s.jwtSecret, s.jwtAlgorithm, now, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := auth.GenerateRefreshSecret()
	if err != nil {
		return nil, common.ErrorInternal
	}

	_, err = s.repomanager.RefreshTokens(tx).Create(ctx, &models.RefreshToken{
		TokenHash: auth.HashRefreshSecret(refresh),
		UserID:    user.ID,
		ExpiresAt: auth.RefreshExpiry(now, s.refreshTokenValidityDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    common.TokenTypeBearer,
	}, nil
}
