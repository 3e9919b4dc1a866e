package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/models"
	"github.com/heighterses/cenaris/pkg/repositories"
	"github.com/heighterses/cenaris/pkg/storage"
)

// DocumentService handles evidence document lifecycle: validated upload to
// blob storage plus a metadata row in Postgres, listing, download, delete.
type DocumentService interface {
	// Upload validates the file, stores its bytes, and records metadata.
	// If the metadata insert fails the uploaded blob is removed again so
	// storage and database stay consistent.
	Upload(ctx context.Context, orgID uuid.UUID, userID, userEmail, filename string, file io.Reader) (*models.Document, error)

	// List returns the organization's documents, newest first.
	List(ctx context.Context) ([]*models.Document, error)

	// Download returns a document's metadata and its bytes.
	Download(ctx context.Context, id uuid.UUID) (*models.Document, []byte, error)

	// Delete removes the blob and then the metadata row.
	Delete(ctx context.Context, id uuid.UUID) error
}

// documentService implements DocumentService.
type documentService struct {
	store     storage.BlobStore
	repo      repositories.DocumentRepository
	validator *FileValidationService
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(store storage.BlobStore, repo repositories.DocumentRepository, validator *FileValidationService, logger *zap.Logger) DocumentService {
	return &documentService{
		store:     store,
		repo:      repo,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload validates the file, stores its bytes, and records metadata.
func (s *documentService) Upload(ctx context.Context, orgID uuid.UUID, userID, userEmail, filename string, file io.Reader) (*models.Document, error) {
	// Read one byte past the cap so the validator can reject oversized
	// files without buffering arbitrarily large bodies.
	data, err := io.ReadAll(io.LimitReader(file, s.validator.MaxFileSize()+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType, err := s.validator.Validate(filename, data)
	if err != nil {
		return nil, err
	}

	docID := uuid.New()
	uploadedAt := s.now()
	blobName := storage.UploadBlobName(userID, filename, docID, uploadedAt)

	metadata := map[string]string{
		"uploaded_by":       userID,
		"uploaded_by_email": userEmail,
		"original_filename": filename,
		"upload_timestamp":  strconv.FormatInt(uploadedAt.Unix(), 10),
	}

	if err := s.store.Upload(ctx, blobName, bytes.NewReader(data), contentType, metadata); err != nil {
		return nil, fmt.Errorf("failed to store evidence file: %w", err)
	}

	doc := &models.Document{
		ID:               docID,
		OrgID:            orgID,
		Filename:         storage.SafeFilename(filename),
		OriginalFilename: filename,
		BlobName:         blobName,
		FileSize:         int64(len(data)),
		ContentType:      contentType,
		UploadedBy:       userID,
		CreatedAt:        uploadedAt,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// Remove the orphaned blob; losing the cleanup is logged but not
		// fatal to the error we return.
		if delErr := s.store.Delete(ctx, blobName); delErr != nil {
			s.logger.Error("Failed to clean up blob after metadata insert failure",
				zap.String("blob_name", blobName),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	s.logger.Info("Evidence document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("blob_name", blobName),
		zap.Int64("size", doc.FileSize))
	return doc, nil
}

// List returns the organization's documents, newest first.
func (s *documentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.repo.List(ctx)
}

// Download returns a document's metadata and its bytes.
func (s *documentService) Download(ctx context.Context, id uuid.UUID) (*models.Document, []byte, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.store.Download(ctx, doc.BlobName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch evidence file %s: %w", doc.BlobName, err)
	}

	return doc, data, nil
}

// Delete removes the blob and then the metadata row.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.BlobName); err != nil {
		s.logger.Warn("Failed to delete blob; removing metadata anyway",
			zap.String("blob_name", doc.BlobName),
			zap.Error(err))
	}

	return s.repo.Delete(ctx, id)
}

// Ensure documentService implements DocumentService at compile time.
var _ DocumentService = (*documentService)(nil)
