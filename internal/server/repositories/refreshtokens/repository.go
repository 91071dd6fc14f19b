// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, revoking, and
// sweeping refresh tokens. Rows are always addressed by the SHA-256 hex
// digest of the raw secret; the raw secret itself is never persisted.
type Repository interface {
	// Create stores a new refresh token row; the id is assigned by the store.
	// The token_hash column carries a uniqueness constraint, which is the
	// actual safety net against colliding secrets.
	Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error)

	// FindValidByHash returns the row matching hash where revoked is false
	// and expires_at is after now. Revoked or expired rows are never
	// returned even if the hash matches; absence yields common.ErrorNotFound.
	FindValidByHash(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error)

	// Revoke marks the row with the given id as revoked.
	Revoke(ctx context.Context, id int64) error

	// RevokeAllForUser revokes every currently-unrevoked token belonging to
	// userID and returns how many rows changed.
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)

	// DeleteExpired purges rows with expires_at <= now, revoked or not, and
	// returns how many rows were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
