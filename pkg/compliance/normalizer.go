package compliance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/heighterses/cenaris/pkg/apperrors"
	"github.com/heighterses/cenaris/pkg/models"
)

// Column names recognized in the ML pipeline's results file. Other columns
// are ignored.
const (
	ColumnFramework = "Framework"
	ColumnScore     = "Compliance_Score"
	ColumnStatus    = "Status"
)

// overallRowName is the distinguished row carrying the pipeline's own
// aggregate score. Matching is exact and case-sensitive after trimming.
const overallRowName = "Overall"

// Normalize builds a ComplianceSummary from a parsed results table.
//
// Structural defects (a required column missing from the header) fail with
// apperrors.ErrSchemaMismatch. Row-level defects never do: a row whose
// score cell does not parse as a decimal is dropped, and an unrecognized
// status maps to StatusUnknown. The producer is an external pipeline this
// service does not control, so the normalizer degrades row by row instead
// of aborting.
//
// Score values are used exactly as read. The file already carries
// percentages on a 0-100 scale; no rescaling is applied.
func Normalize(table *Table, sourcePath string, fetchedAt time.Time) (*models.ComplianceSummary, error) {
	for _, required := range []string{ColumnFramework, ColumnScore, ColumnStatus} {
		if !table.HasHeader(required) {
			return nil, fmt.Errorf("%w: missing required column %q", apperrors.ErrSchemaMismatch, required)
		}
	}

	summary := &models.ComplianceSummary{
		SourcePath: sourcePath,
		FetchedAt:  fetchedAt,
	}

	// Position of each framework name in summary.Frameworks. A repeated
	// name overwrites the earlier entry in place (last value wins, stable
	// position) so the UI never shows duplicates.
	positions := make(map[string]int)
	overallSeen := false

	for _, row := range table.Rows {
		name := strings.TrimSpace(row[ColumnFramework])
		if name == "" {
			continue
		}

		if name == overallRowName {
			// Only the first Overall row is honored; later ones are
			// ignored even when the first one's score was unusable.
			if !overallSeen {
				overallSeen = true
				if score, ok := parseScore(row[ColumnScore]); ok {
					summary.OverallScore = &score
				}
			}
			continue
		}

		score, ok := parseScore(row[ColumnScore])
		if !ok {
			// No placeholder entries: a framework without a usable score
			// is excluded rather than shown as zero.
			continue
		}

		framework := models.ComplianceFramework{
			Name:         name,
			ScorePercent: score,
			Status:       models.ParseComplianceStatus(strings.TrimSpace(row[ColumnStatus])),
		}

		if pos, exists := positions[name]; exists {
			summary.Frameworks[pos] = framework
			continue
		}
		positions[name] = len(summary.Frameworks)
		summary.Frameworks = append(summary.Frameworks, framework)
	}

	if summary.OverallScore == nil {
		if mean, ok := MeanScore(summary.Frameworks); ok {
			summary.OverallScore = &mean
		}
	}

	return summary, nil
}

// MeanScore returns the unweighted arithmetic mean of the frameworks'
// scores rounded to one decimal place, or false when there are none.
func MeanScore(frameworks []models.ComplianceFramework) (float64, bool) {
	if len(frameworks) == 0 {
		return 0, false
	}
	var total float64
	for _, f := range frameworks {
		total += f.ScorePercent
	}
	return roundToOneDecimal(total / float64(len(frameworks))), true
}

func parseScore(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
