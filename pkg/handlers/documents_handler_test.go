package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/models"
)

// mockDocumentService is a hand-written mock for handler tests.
type mockDocumentService struct {
	doc       *models.Document
	docs      []*models.Document
	data      []byte
	err       error
	deletedID uuid.UUID
}

func (m *mockDocumentService) Upload(ctx context.Context, orgID uuid.UUID, userID, userEmail, filename string, file io.Reader) (*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockDocumentService) List(ctx context.Context) ([]*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Download(ctx context.Context, id uuid.UUID) (*models.Document, []byte, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.doc, m.data, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

func testDocument() *models.Document {
	return &models.Document{
		ID:               uuid.MustParse("7f1b7e6e-07d1-4c0a-8a62-94a0f3b7c002"),
		OrgID:            testOrgID,
		Filename:         "care_plan.pdf",
		OriginalFilename: "care plan.pdf",
		BlobName:         "uploads/2026/08/user_u/xyz_care_plan.pdf",
		FileSize:         120,
		ContentType:      "application/pdf",
		UploadedBy:       testUserID,
		CreatedAt:        time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
	}
}

// multipartUploadRequest builds an authenticated multipart POST carrying one
// file field.
func multipartUploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/orgs/"+testOrgID.String()+"/documents", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	r.SetPathValue("oid", testOrgID.String())

	claims := &auth.Claims{OrgID: testOrgID.String(), Email: "user@example.com"}
	claims.Subject = testUserID
	return r.WithContext(context.WithValue(r.Context(), auth.ClaimsKey, claims))
}

func TestDocumentUploadHandler(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{doc: testDocument()}, 1024, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUploadRequest(t, "care plan.pdf", []byte("%PDF-1.7 content")))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	doc := resp.Data.(map[string]interface{})
	assert.Equal(t, "care plan.pdf", doc["original_filename"])
}

func TestDocumentUploadHandlerNoFile(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{}, 1024, zap.NewNop())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/orgs/"+testOrgID.String()+"/documents", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	r.SetPathValue("oid", testOrgID.String())
	claims := &auth.Claims{OrgID: testOrgID.String()}
	claims.Subject = testUserID
	r = r.WithContext(context.WithValue(r.Context(), auth.ClaimsKey, claims))

	w := httptest.NewRecorder()
	handler.Upload(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_file", resp.Error)
}

func TestDocumentUploadHandlerUnsupportedType(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{err: apperrors.ErrUnsupportedFileType}, 1024, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUploadRequest(t, "virus.exe", []byte("MZ")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported_file_type", resp.Error)
}

func TestDocumentUploadHandlerFileTooLarge(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{err: apperrors.ErrFileTooLarge}, 1024, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUploadRequest(t, "big.pdf", []byte("%PDF-1.7")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDocumentListHandler(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{docs: []*models.Document{testDocument()}}, 1024, zap.NewNop())

	w := httptest.NewRecorder()
	handler.List(w, authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents"))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestDocumentDownloadHandler(t *testing.T) {
	svc := &mockDocumentService{doc: testDocument(), data: []byte("%PDF-1.7 content")}
	handler := NewDocumentsHandler(svc, 1024, zap.NewNop())

	r := authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents/"+svc.doc.ID.String())
	r.SetPathValue("did", svc.doc.ID.String())

	w := httptest.NewRecorder()
	handler.Download(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "care plan.pdf")
	assert.Equal(t, []byte("%PDF-1.7 content"), w.Body.Bytes())
}

func TestDocumentDownloadHandlerNotFound(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{err: apperrors.ErrNotFound}, 1024, zap.NewNop())

	docID := uuid.New()
	r := authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents/"+docID.String())
	r.SetPathValue("did", docID.String())

	w := httptest.NewRecorder()
	handler.Download(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentDeleteHandler(t *testing.T) {
	svc := &mockDocumentService{doc: testDocument()}
	handler := NewDocumentsHandler(svc, 1024, zap.NewNop())

	docID := svc.doc.ID
	r := authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents/"+docID.String())
	r.SetPathValue("did", docID.String())

	w := httptest.NewRecorder()
	handler.Delete(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, docID, svc.deletedID)
}

func TestDocumentDeleteHandlerNotFound(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{err: apperrors.ErrNotFound}, 1024, zap.NewNop())

	docID := uuid.New()
	r := authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents/"+docID.String())
	r.SetPathValue("did", docID.String())

	w := httptest.NewRecorder()
	handler.Delete(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentDeleteHandlerInvalidID(t *testing.T) {
	handler := NewDocumentsHandler(&mockDocumentService{}, 1024, zap.NewNop())

	r := authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/documents/abc")
	r.SetPathValue("did", "abc")

	w := httptest.NewRecorder()
	handler.Delete(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
