package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/compliance"
	"github.com/heighterses/cenaris/pkg/models"
	"github.com/heighterses/cenaris/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// DashboardResponse for GET /api/orgs/{oid}/compliance/dashboard
type DashboardResponse struct {
	Tile      compliance.DashboardTile `json:"tile"`
	Source    string                   `json:"source_identifier"`
	FetchedAt string                   `json:"fetched_at"`
}

// GapAnalysisResponse for GET /api/orgs/{oid}/compliance/gap-analysis
type GapAnalysisResponse struct {
	View   compliance.GapAnalysisView `json:"view"`
	Source string                     `json:"source_identifier"`
}

// ResultFilesResponse for GET /api/orgs/{oid}/compliance/files
type ResultFilesResponse struct {
	Files []models.ResultFile `json:"files"`
	Total int                 `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// ComplianceHandler serves the dashboard, gap-analysis, and result-file
// views. Each request re-fetches the tenant's results file; there is no
// cross-request cache.
type ComplianceHandler struct {
	complianceService services.ComplianceService
	logger            *zap.Logger
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(complianceService services.ComplianceService, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		logger:            logger,
	}
}

// RegisterRoutes registers the compliance handler's routes on the given mux.
func (h *ComplianceHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/orgs/{oid}/compliance"

	mux.HandleFunc("GET "+base+"/dashboard",
		authMiddleware.RequireAuthWithPathValidation("oid")(h.Dashboard))
	mux.HandleFunc("GET "+base+"/gap-analysis",
		authMiddleware.RequireAuthWithPathValidation("oid")(h.GapAnalysis))
	mux.HandleFunc("GET "+base+"/files",
		authMiddleware.RequireAuthWithPathValidation("oid")(h.Files))
}

// Dashboard handles GET /api/orgs/{oid}/compliance/dashboard
func (h *ComplianceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.fetchSummary(w, r)
	if !ok {
		return
	}

	response := DashboardResponse{
		Tile:      compliance.BuildDashboardTile(summary),
		Source:    summary.SourcePath,
		FetchedAt: summary.FetchedAt.Format(time.RFC3339),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GapAnalysis handles GET /api/orgs/{oid}/compliance/gap-analysis
func (h *ComplianceHandler) GapAnalysis(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.fetchSummary(w, r)
	if !ok {
		return
	}

	response := GapAnalysisResponse{
		View:   compliance.BuildGapAnalysisView(summary),
		Source: summary.SourcePath,
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Files handles GET /api/orgs/{oid}/compliance/files
func (h *ComplianceHandler) Files(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	_, userID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	files, err := h.complianceService.ListResultFiles(r.Context(), orgID, userID)
	if err != nil {
		h.logger.Error("Failed to list result files",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_result_files_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ResultFilesResponse{Files: files, Total: len(files)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// fetchSummary resolves the tenant scope and loads the normalized summary,
// writing the error response itself on failure.
func (h *ComplianceHandler) fetchSummary(w http.ResponseWriter, r *http.Request) (*models.ComplianceSummary, bool) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return nil, false
	}

	_, userID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		h.writeAuthError(w, err)
		return nil, false
	}

	summary, err := h.complianceService.GetSummary(r.Context(), orgID, userID)
	if err != nil {
		// A present-but-broken results file is a data problem, not a
		// server fault: surface it as the "format unrecognized" state.
		if errors.Is(err, apperrors.ErrSchemaMismatch) || errors.Is(err, apperrors.ErrMalformedInput) {
			h.logger.Warn("Compliance summary file unusable",
				zap.String("org_id", orgID.String()),
				zap.Error(err))
			if err := ErrorResponse(w, http.StatusUnprocessableEntity, "data_format_unrecognized", "The compliance results file could not be understood"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return nil, false
		}

		h.logger.Error("Failed to load compliance summary",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "load_summary_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}

	return summary, true
}

func (h *ComplianceHandler) writeAuthError(w http.ResponseWriter, err error) {
	h.logger.Error("Missing authentication context", zap.Error(err))
	if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
