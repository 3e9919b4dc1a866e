package compliance

import (
	"time"

	"github.com/heighterses/cenaris/pkg/models"
)

// DashboardTile is the dashboard's headline projection of a summary.
// OverallScore stays nil when no data is available so the UI can render an
// explicit "no data yet" state instead of a misleading 0%.
type DashboardTile struct {
	OverallScore     *float64 `json:"overall_score_percent"`
	FrameworkCount   int      `json:"framework_count"`
	CompleteCount    int      `json:"complete_count"`
	NeedsReviewCount int      `json:"needs_review_count"`
	MissingCount     int      `json:"missing_count"`
	UnknownCount     int      `json:"unknown_count"`
	HasData          bool     `json:"has_data"`
}

// GapAnalysisRow is one framework line on the gap-analysis page.
type GapAnalysisRow struct {
	Name          string                  `json:"name"`
	Status        models.ComplianceStatus `json:"status"`
	ScorePercent  float64                 `json:"score_percent"`
	EvidenceLabel string                  `json:"evidence_label"`
	LastUpdated   time.Time               `json:"last_updated"`
}

// GapAnalysisView is the full gap-analysis projection: per-framework rows
// plus the page's summary counters.
type GapAnalysisView struct {
	Rows             []GapAnalysisRow `json:"rows"`
	TotalCount       int              `json:"total_count"`
	CompleteCount    int              `json:"complete_count"`
	NeedsReviewCount int              `json:"needs_review_count"`
	MissingCount     int              `json:"missing_count"`
	UnknownCount     int              `json:"unknown_count"`
	MeanScore        *float64         `json:"mean_score_percent"`
}

// ReportSection is one status bucket of the narrative PDF report.
type ReportSection struct {
	Status     models.ComplianceStatus
	Frameworks []models.ComplianceFramework
}

// BuildDashboardTile projects a summary into the dashboard tile shape.
// Total over any valid summary, including the empty one.
func BuildDashboardTile(summary *models.ComplianceSummary) DashboardTile {
	counts := countByStatus(summary.Frameworks)
	return DashboardTile{
		OverallScore:     summary.OverallScore,
		FrameworkCount:   len(summary.Frameworks),
		CompleteCount:    counts[models.StatusComplete],
		NeedsReviewCount: counts[models.StatusNeedsReview],
		MissingCount:     counts[models.StatusMissing],
		UnknownCount:     counts[models.StatusUnknown],
		HasData:          summary.OverallScore != nil,
	}
}

// BuildGapAnalysisView projects a summary into the gap-analysis page shape.
// Every row carries the source file as its evidence label and the fetch
// time as its last-updated stamp.
func BuildGapAnalysisView(summary *models.ComplianceSummary) GapAnalysisView {
	rows := make([]GapAnalysisRow, 0, len(summary.Frameworks))
	for _, f := range summary.Frameworks {
		rows = append(rows, GapAnalysisRow{
			Name:          f.Name,
			Status:        f.Status,
			ScorePercent:  f.ScorePercent,
			EvidenceLabel: summary.SourcePath,
			LastUpdated:   summary.FetchedAt,
		})
	}

	counts := countByStatus(summary.Frameworks)
	view := GapAnalysisView{
		Rows:             rows,
		TotalCount:       len(rows),
		CompleteCount:    counts[models.StatusComplete],
		NeedsReviewCount: counts[models.StatusNeedsReview],
		MissingCount:     counts[models.StatusMissing],
		UnknownCount:     counts[models.StatusUnknown],
	}
	if mean, ok := MeanScore(summary.Frameworks); ok {
		view.MeanScore = &mean
	}
	return view
}

// reportSectionOrder lists the status buckets in the order the narrative
// report presents them: gaps first.
var reportSectionOrder = []models.ComplianceStatus{
	models.StatusMissing,
	models.StatusNeedsReview,
	models.StatusComplete,
	models.StatusUnknown,
}

// BuildReportSections groups frameworks by status for the PDF report.
// Scores are re-presented, never recomputed. Empty buckets are omitted.
func BuildReportSections(summary *models.ComplianceSummary) []ReportSection {
	buckets := make(map[models.ComplianceStatus][]models.ComplianceFramework)
	for _, f := range summary.Frameworks {
		buckets[f.Status] = append(buckets[f.Status], f)
	}

	var sections []ReportSection
	for _, status := range reportSectionOrder {
		if frameworks := buckets[status]; len(frameworks) > 0 {
			sections = append(sections, ReportSection{Status: status, Frameworks: frameworks})
		}
	}
	return sections
}

func countByStatus(frameworks []models.ComplianceFramework) map[models.ComplianceStatus]int {
	counts := make(map[models.ComplianceStatus]int)
	for _, f := range frameworks {
		counts[f.Status]++
	}
	return counts
}
