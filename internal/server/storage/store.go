// Package storage provides object storage for document bytes.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlobStore stores and retrieves opaque byte blobs by key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// NewStorageKey returns a fresh date-partitioned object key for an upload.
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
