package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heighterses/cenaris/pkg/config"
)

// PathBuilder composes tenant-scoped blob paths from configuration. It is
// constructed once at startup so request handling never reads the process
// environment.
type PathBuilder struct {
	resultsBase     string
	summaryFilename string
}

// NewPathBuilder creates a PathBuilder from the results configuration.
func NewPathBuilder(cfg config.ResultsConfig) *PathBuilder {
	return &PathBuilder{
		resultsBase:     strings.Trim(cfg.BasePath, "/"),
		summaryFilename: cfg.SummaryFilename,
	}
}

// ResultsPrefix returns the directory the ML pipeline writes this tenant's
// results into for the month containing now:
// {base}/{year}/{month:02d}/org_{orgID}/user_{userID}
func (b *PathBuilder) ResultsPrefix(orgID, userID string, now time.Time) string {
	return fmt.Sprintf("%s/%d/%02d/org_%s/user_%s",
		b.resultsBase, now.Year(), int(now.Month()), orgID, userID)
}

// SummaryPath returns the tenant-scoped path of the precomputed compliance
// summary file for the month containing now.
func (b *PathBuilder) SummaryPath(orgID, userID string, now time.Time) string {
	return b.ResultsPrefix(orgID, userID, now) + "/" + b.summaryFilename
}

// UploadBlobName builds a unique blob name for an uploaded evidence file:
// uploads/{year}/{month:02d}/user_{userID}/{uuid}_{safe_filename}
func UploadBlobName(userID, originalFilename string, id uuid.UUID, now time.Time) string {
	return fmt.Sprintf("uploads/%d/%02d/user_%s/%s_%s",
		now.Year(), int(now.Month()), userID, id.String(), SafeFilename(originalFilename))
}

// SafeFilename strips path components and replaces characters that are not
// safe in a blob name. An empty result falls back to "file".
func SafeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	safe := strings.Trim(sb.String(), "._")
	if safe == "" {
		return "file"
	}
	return safe
}
