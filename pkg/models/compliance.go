package models

import "time"

// ComplianceStatus is the closed review-state vocabulary for a framework.
type ComplianceStatus string

const (
	StatusComplete    ComplianceStatus = "Complete"
	StatusNeedsReview ComplianceStatus = "Needs Review"
	StatusMissing     ComplianceStatus = "Missing"
	StatusUnknown     ComplianceStatus = "Unknown"
)

// ParseComplianceStatus maps a raw status cell onto the closed vocabulary.
// Matching is exact and case-sensitive; anything else (including empty)
// becomes StatusUnknown rather than an error.
func ParseComplianceStatus(raw string) ComplianceStatus {
	switch raw {
	case string(StatusComplete):
		return StatusComplete
	case string(StatusNeedsReview):
		return StatusNeedsReview
	case string(StatusMissing):
		return StatusMissing
	default:
		return StatusUnknown
	}
}

// ComplianceFramework is one scored compliance standard (e.g. "Aged Care").
// ScorePercent is always defined; rows without a parseable score never
// become a ComplianceFramework.
type ComplianceFramework struct {
	Name         string           `json:"name"`
	ScorePercent float64          `json:"score_percent"`
	Status       ComplianceStatus `json:"status"`
}

// ComplianceSummary is the normalized view of one tenant's results file at
// one point in time. It is built fresh on every read and never mutated or
// shared after construction.
type ComplianceSummary struct {
	// Frameworks preserves the source file's row order.
	Frameworks []ComplianceFramework `json:"frameworks"`

	// OverallScore is nil when the file had no "Overall" row and no
	// surviving framework rows to average.
	OverallScore *float64 `json:"overall_score_percent,omitempty"`

	// SourcePath is the storage path the summary was read from, kept for
	// audit display ("Evidence: compliance_summary.csv").
	SourcePath string `json:"source_identifier"`

	FetchedAt time.Time `json:"fetched_at"`
}

// ResultFile describes one ML results file found under the tenant's
// results prefix.
type ResultFile struct {
	Name         string    `json:"file_name"`
	Path         string    `json:"file_path"`
	Size         int64     `json:"file_size"`
	LastModified time.Time `json:"last_modified"`
}
