package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/heighterses/cenaris/pkg/apperrors"
)

// Evidence uploads are restricted to the document types assessors accept.
var allowedContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// File signatures (magic bytes) per allowed extension. A docx file is a
// ZIP archive, so it shares the PK header.
var fileSignatures = map[string][]byte{
	".pdf":  []byte("%PDF-"),
	".docx": {0x50, 0x4B, 0x03, 0x04},
}

// FileValidationService checks uploaded evidence files before they touch
// blob storage: extension allow-list, size cap, and a magic-byte check so
// a renamed executable doesn't pass as a PDF.
type FileValidationService struct {
	maxFileSize int64
}

// NewFileValidationService creates a validator with the given size cap in
// bytes.
func NewFileValidationService(maxFileSize int64) *FileValidationService {
	return &FileValidationService{maxFileSize: maxFileSize}
}

// Validate checks the file and returns its content type.
// Failures are apperrors.ErrFileTooLarge or apperrors.ErrUnsupportedFileType.
func (s *FileValidationService) Validate(filename string, data []byte) (string, error) {
	if int64(len(data)) > s.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", apperrors.ErrFileTooLarge, len(data), s.maxFileSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", apperrors.ErrUnsupportedFileType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFileType, ext)
	}

	signature := fileSignatures[ext]
	if len(data) < len(signature) || !bytes.HasPrefix(data, signature) {
		return "", fmt.Errorf("%w: content does not match %s signature", apperrors.ErrUnsupportedFileType, ext)
	}

	return contentType, nil
}

// MaxFileSize returns the configured size cap in bytes.
func (s *FileValidationService) MaxFileSize() int64 {
	return s.maxFileSize
}

// AllowedExtensions returns the accepted file extensions.
func (s *FileValidationService) AllowedExtensions() []string {
	return []string{".pdf", ".docx"}
}
