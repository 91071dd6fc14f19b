package models

import "time"

// Document is an uploaded binary blob tied to a caller-supplied URI label.
//
// FileBytes holds the content when it is stored inline in the database.
// When a blob store is configured the content lives in object storage and
// StorageKey records its key; FileBytes is then empty on the row.
type Document struct {
	ID            int64
	Filename      string
	MimeType      string
	URI           string
	Base64Content string
	FileBytes     []byte
	StorageKey    string
	CreatedAt     time.Time
}
