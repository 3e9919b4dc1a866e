package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata record for an uploaded evidence file. The bytes
// themselves live in blob storage under BlobName; Postgres only holds this
// row.
type Document struct {
	ID               uuid.UUID `json:"id"`
	OrgID            uuid.UUID `json:"org_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	BlobName         string    `json:"blob_name"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	UploadedBy       string    `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
}
