// Package documents declares the repository contract for stored document
// blobs and their metadata.
package documents

import (
	"context"

	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// Repository defines persistence operations for documents.
type Repository interface {
	// Create persists a new document row; the id is assigned by the store.
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)

	// GetByID returns the document with the given id, or
	// common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id int64) (*models.Document, error)
}
