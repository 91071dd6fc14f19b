package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vkuzmin/dockeeper/internal/common"
	"github.com/vkuzmin/dockeeper/internal/dbx"
	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query := `
		INSERT INTO documents (filename, mime_type, uri, base64_content, file_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		doc.Filename, doc.MimeType, doc.URI, doc.Base64Content, doc.FileBytes, doc.StorageKey).
		Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `
		SELECT id, filename, mime_type, uri, base64_content, file_bytes, storage_key, created_at
		FROM documents
		WHERE id = $1
	`
	doc := &models.Document{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&doc.ID, &doc.Filename, &doc.MimeType, &doc.URI, &doc.Base64Content, &doc.FileBytes, &doc.StorageKey, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}
