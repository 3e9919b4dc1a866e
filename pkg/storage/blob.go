// Package storage provides blob container access for evidence uploads and
// ML results. The BlobStore interface is the port; Azure Blob Storage is
// the production implementation and MemoryStore backs local development
// and tests.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored blob.
type ObjectInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// BlobStore is the object-store port. Download and Delete report a missing
// blob as apperrors.ErrNotFound; callers decide whether absence is an
// error or an empty state.
type BlobStore interface {
	// Download returns the blob's bytes.
	Download(ctx context.Context, path string) ([]byte, error)

	// Upload writes the blob, overwriting any existing one at path.
	Upload(ctx context.Context, path string, body io.Reader, contentType string, metadata map[string]string) error

	// Delete removes the blob.
	Delete(ctx context.Context, path string) error

	// List returns blobs under the given prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
