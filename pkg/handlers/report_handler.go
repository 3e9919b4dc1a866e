package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/services"
)

// ReportHandler serves generated PDF reports.
type ReportHandler struct {
	complianceService services.ComplianceService
	reportService     services.ReportService
	logger            *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(complianceService services.ComplianceService, reportService services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		complianceService: complianceService,
		reportService:     reportService,
		logger:            logger,
	}
}

// RegisterRoutes registers the report handler's routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/orgs/{oid}/reports/gap-analysis",
		authMiddleware.RequireAuthWithPathValidation("oid")(h.GapAnalysisReport))
}

// GapAnalysisReport handles GET /api/orgs/{oid}/reports/gap-analysis
func (h *ReportHandler) GapAnalysisReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	_, userID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		h.logger.Error("Missing authentication context", zap.Error(err))
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	summary, err := h.complianceService.GetSummary(r.Context(), orgID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSchemaMismatch) || errors.Is(err, apperrors.ErrMalformedInput) {
			if err := ErrorResponse(w, http.StatusUnprocessableEntity, "data_format_unrecognized", "The compliance results file could not be understood"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to load compliance summary for report",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "load_summary_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	pdf, err := h.reportService.GenerateGapAnalysis(summary, "")
	if err != nil {
		h.logger.Error("Failed to generate gap-analysis report",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "report_generation_failed", "Report generation failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	filename := fmt.Sprintf("gap_analysis_%s.pdf", summary.FetchedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("Failed to write report body", zap.Error(err))
	}
}
