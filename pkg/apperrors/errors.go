package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrSchemaMismatch       = errors.New("compliance file schema mismatch")
	ErrMalformedInput       = errors.New("malformed compliance file")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrStorageNotConfigured = errors.New("blob storage not configured")
)
