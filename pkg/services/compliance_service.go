package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/compliance"
	"github.com/heighterses/cenaris/pkg/models"
	"github.com/heighterses/cenaris/pkg/storage"
)

// ComplianceService reads the ML pipeline's results for one tenant and
// normalizes them for presentation. Every call re-fetches and re-parses:
// summaries are request-scoped projections, never cached or shared.
type ComplianceService interface {
	// GetSummary fetches and normalizes the tenant's compliance summary
	// file. A missing file (or an unreachable store) yields an empty
	// summary, not an error; structural defects in a present file yield
	// apperrors.ErrSchemaMismatch or apperrors.ErrMalformedInput.
	GetSummary(ctx context.Context, orgID uuid.UUID, userID string) (*models.ComplianceSummary, error)

	// ListResultFiles lists the CSV/JSON result files under the tenant's
	// results prefix.
	ListResultFiles(ctx context.Context, orgID uuid.UUID, userID string) ([]models.ResultFile, error)
}

// complianceService implements ComplianceService over a BlobStore.
type complianceService struct {
	store  storage.BlobStore
	paths  *storage.PathBuilder
	logger *zap.Logger
	now    func() time.Time
}

// NewComplianceService creates a new compliance service.
func NewComplianceService(store storage.BlobStore, paths *storage.PathBuilder, logger *zap.Logger) ComplianceService {
	return &complianceService{
		store:  store,
		paths:  paths,
		logger: logger,
		now:    time.Now,
	}
}

// GetSummary fetches and normalizes the tenant's compliance summary file.
func (s *complianceService) GetSummary(ctx context.Context, orgID uuid.UUID, userID string) (*models.ComplianceSummary, error) {
	fetchedAt := s.now()
	summaryPath := s.paths.SummaryPath(orgID.String(), userID, fetchedAt)

	data, err := s.store.Download(ctx, summaryPath)
	if err != nil {
		// Absence and fetch failures both surface as the explicit
		// no-data state. The upstream pipeline may simply not have run
		// yet; fabricating numbers here would mask that.
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to fetch compliance summary",
				zap.String("path", summaryPath),
				zap.Error(err))
		}
		return &models.ComplianceSummary{
			SourcePath: summaryPath,
			FetchedAt:  fetchedAt,
		}, nil
	}

	table, err := compliance.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", summaryPath, err)
	}

	summary, err := compliance.Normalize(table, summaryPath, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", summaryPath, err)
	}

	s.logger.Debug("Normalized compliance summary",
		zap.String("path", summaryPath),
		zap.Int("frameworks", len(summary.Frameworks)))
	return summary, nil
}

// ListResultFiles lists the CSV/JSON result files under the tenant's
// results prefix, newest first.
func (s *complianceService) ListResultFiles(ctx context.Context, orgID uuid.UUID, userID string) ([]models.ResultFile, error) {
	prefix := s.paths.ResultsPrefix(orgID.String(), userID, s.now())

	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []models.ResultFile{}, nil
		}
		return nil, fmt.Errorf("listing results under %s: %w", prefix, err)
	}

	files := make([]models.ResultFile, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Path, ".csv") && !strings.HasSuffix(obj.Path, ".json") {
			continue
		}
		files = append(files, models.ResultFile{
			Name:         path.Base(obj.Path),
			Path:         obj.Path,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
	return files, nil
}

// Ensure complianceService implements ComplianceService at compile time.
var _ ComplianceService = (*complianceService)(nil)
