package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/models"
	"github.com/heighterses/cenaris/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// DocumentListResponse for GET /api/orgs/{oid}/documents
type DocumentListResponse struct {
	Documents []*models.Document `json:"documents"`
	Total     int                `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// DocumentsHandler handles evidence document HTTP requests.
type DocumentsHandler struct {
	documentService services.DocumentService
	maxUploadBytes  int64
	logger          *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documentService services.DocumentService, maxUploadBytes int64, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// RegisterRoutes registers the documents handler's routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, orgMiddleware OrgMiddleware) {
	base := "/api/orgs/{oid}/documents"

	mux.HandleFunc("POST "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(orgMiddleware(h.Upload)))
	mux.HandleFunc("GET "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(orgMiddleware(h.List)))
	mux.HandleFunc("GET "+base+"/{did}",
		authMiddleware.RequireAuthWithPathValidation("oid")(orgMiddleware(h.Download)))
	mux.HandleFunc("DELETE "+base+"/{did}",
		authMiddleware.RequireAuthWithPathValidation("oid")(orgMiddleware(h.Delete)))
}

// Upload handles POST /api/orgs/{oid}/documents
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	claims, _ := auth.GetClaims(r.Context())
	_, userID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	// Multipart form cap leaves headroom for the non-file fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if err := ErrorResponse(w, http.StatusRequestEntityTooLarge, "upload_too_large", "Uploaded file exceeds the size limit"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "no_file", "No file selected. Please choose a file to upload."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(r.Context(), orgID, userID, claims.Email, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrFileTooLarge):
			err = ErrorResponse(w, http.StatusRequestEntityTooLarge, "upload_too_large", "Uploaded file exceeds the size limit")
		case errors.Is(err, apperrors.ErrUnsupportedFileType):
			err = ErrorResponse(w, http.StatusBadRequest, "unsupported_file_type", "Only PDF and DOCX files are accepted")
		default:
			h.logger.Error("Failed to upload document",
				zap.String("org_id", orgID.String()),
				zap.String("filename", header.Filename),
				zap.Error(err))
			err = ErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Upload failed. Please try again.")
		}
		if err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	docs, err := h.documentService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list documents",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_documents_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := DocumentListResponse{Documents: docs, Total: len(docs)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Download handles GET /api/orgs/{oid}/documents/{did}
func (h *DocumentsHandler) Download(w http.ResponseWriter, r *http.Request) {
	docID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, data, err := h.documentService.Download(r.Context(), docID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "document_not_found", "Document not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to download document",
			zap.String("document_id", docID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "download_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write document body", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/documents/{did}
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.documentService.Delete(r.Context(), docID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "document_not_found", "Document not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete document",
			zap.String("document_id", docID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "delete_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DocumentsHandler) writeAuthError(w http.ResponseWriter, err error) {
	h.logger.Error("Missing authentication context", zap.Error(err))
	if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
