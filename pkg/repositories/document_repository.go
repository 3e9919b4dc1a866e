package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/database"
	"github.com/heighterses/cenaris/pkg/models"
)

// DocumentRepository defines the interface for evidence document metadata
// access. All operations run on the org-scoped connection from context.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// documentRepository implements DocumentRepository using PostgreSQL.
type documentRepository struct{}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

// Create inserts a new document metadata row.
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return fmt.Errorf("no org scope in context")
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO documents (id, org_id, filename, original_filename, blob_name, file_size, content_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		doc.ID,
		doc.OrgID,
		doc.Filename,
		doc.OriginalFilename,
		doc.BlobName,
		doc.FileSize,
		doc.ContentType,
		doc.UploadedBy,
		doc.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: blob name %s already recorded", apperrors.ErrConflict, doc.BlobName)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// Get retrieves a document by ID.
func (r *documentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no org scope in context")
	}

	query := `
		SELECT id, org_id, filename, original_filename, blob_name, file_size, content_type, uploaded_by, created_at
		FROM documents
		WHERE id = $1`

	var doc models.Document
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.OrgID,
		&doc.Filename,
		&doc.OriginalFilename,
		&doc.BlobName,
		&doc.FileSize,
		&doc.ContentType,
		&doc.UploadedBy,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// List returns the organization's documents, newest first.
func (r *documentRepository) List(ctx context.Context) ([]*models.Document, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no org scope in context")
	}

	query := `
		SELECT id, org_id, filename, original_filename, blob_name, file_size, content_type, uploaded_by, created_at
		FROM documents
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.OrgID,
			&doc.Filename,
			&doc.OriginalFilename,
			&doc.BlobName,
			&doc.FileSize,
			&doc.ContentType,
			&doc.UploadedBy,
			&doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document metadata row.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return fmt.Errorf("no org scope in context")
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure documentRepository implements DocumentRepository at compile time.
var _ DocumentRepository = (*documentRepository)(nil)
