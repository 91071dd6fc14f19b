// Package users declares the server-side repository contract for user
// records in persistent storage.
package users

import (
	"context"

	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// Repository defines operations for creating and looking up users.
type Repository interface {
	// Create persists a new user; the id is assigned by the store.
	// A duplicate username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrorNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound
	// when absent.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
