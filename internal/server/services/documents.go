package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"

	"github.com/vkuzmin/dockeeper/internal/server/models"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/repomanager"
	"github.com/vkuzmin/dockeeper/internal/server/storage"
)

// DocumentService persists and retrieves uploaded document blobs.
//
// With a nil blob store the document bytes live inline in the database row.
// When a store is configured the bytes go to object storage and the row only
// records the storage key.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
}

// NewDocumentService constructs a DocumentService. blobs may be nil.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore) *DocumentService {
	return &DocumentService{db: db, repomanager: m, blobs: blobs}
}

// SaveUpload stores an uploaded file under the given uri label and returns
// the persisted document metadata. An empty mime type defaults to
// application/octet-stream.
func (s *DocumentService) SaveUpload(ctx context.Context, filename, mimeType, uri string, data []byte) (*models.Document, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc := &models.Document{
		Filename:      filename,
		MimeType:      mimeType,
		URI:           uri,
		Base64Content: base64.StdEncoding.EncodeToString(data),
	}

	if s.blobs != nil {
		key := storage.NewStorageKey()
		if err := s.blobs.Put(ctx, key, data, mimeType); err != nil {
			return nil, fmt.Errorf("error storing blob: %w", err)
		}
		doc.StorageKey = key
	} else {
		doc.FileBytes = data
	}

	created, err := s.repomanager.Documents(s.db).Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	return created, nil
}

// GetDocument returns a stored document with its content bytes populated,
// fetching them back from the blob store when they were offloaded.
// Absence yields common.ErrorNotFound.
func (s *DocumentService) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.StorageKey != "" && s.blobs != nil {
		data, err := s.blobs.Get(ctx, doc.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error fetching blob: %w", err)
		}
		doc.FileBytes = data
	}

	return doc, nil
}
