package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/heighterses/cenaris/pkg/apperrors"
)

// MemoryStore is an in-memory BlobStore for local development and tests.
// It starts empty: a missing results file renders as the explicit no-data
// state, never as fabricated sample numbers.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Download(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[path]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return data, nil
}

func (s *MemoryStore) Upload(ctx context.Context, path string, body io.Reader, contentType string, metadata map[string]string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = memoryBlob{
		data:         data,
		contentType:  contentType,
		metadata:     metadata,
		lastModified: time.Now(),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[path]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.blobs, path)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []ObjectInfo
	for path, b := range s.blobs {
		if strings.HasPrefix(path, prefix) {
			objects = append(objects, ObjectInfo{
				Path:         path,
				Size:         int64(len(b.data)),
				LastModified: b.lastModified,
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Path < objects[j].Path })
	return objects, nil
}

// Put is a test convenience that stores raw bytes at path.
func (s *MemoryStore) Put(path string, data []byte) {
	_ = s.Upload(context.Background(), path, bytes.NewReader(data), "application/octet-stream", nil)
}

// Ensure MemoryStore implements BlobStore at compile time.
var _ BlobStore = (*MemoryStore)(nil)
