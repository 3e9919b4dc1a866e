package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/models"
)

// mockReportService returns fixed PDF bytes.
type mockReportService struct {
	pdf []byte
	err error
}

func (m *mockReportService) GenerateGapAnalysis(summary *models.ComplianceSummary, orgName string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pdf, nil
}

func TestGapAnalysisReport(t *testing.T) {
	handler := NewReportHandler(
		&mockComplianceService{summary: testSummary()},
		&mockReportService{pdf: []byte("%PDF-1.7 fake")},
		zap.NewNop())

	w := httptest.NewRecorder()
	handler.GapAnalysisReport(w, authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/reports/gap-analysis"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gap_analysis_2026-08-25.pdf")
	assert.Equal(t, []byte("%PDF-1.7 fake"), w.Body.Bytes())
}

func TestGapAnalysisReportUnusableFileIs422(t *testing.T) {
	handler := NewReportHandler(
		&mockComplianceService{err: fmt.Errorf("normalizing: %w", apperrors.ErrSchemaMismatch)},
		&mockReportService{},
		zap.NewNop())

	w := httptest.NewRecorder()
	handler.GapAnalysisReport(w, authenticatedRequest(t, "/api/orgs/"+testOrgID.String()+"/reports/gap-analysis"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGapAnalysisReportMissingClaims(t *testing.T) {
	handler := NewReportHandler(&mockComplianceService{summary: testSummary()}, &mockReportService{}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/api/orgs/"+testOrgID.String()+"/reports/gap-analysis", nil)
	r.SetPathValue("oid", testOrgID.String())
	w := httptest.NewRecorder()
	handler.GapAnalysisReport(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
