package services

import (
	"bytes"
	"fmt"
	"path"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/compliance"
	"github.com/heighterses/cenaris/pkg/models"
)

// sectionIntros gives each status bucket its narrative lead-in.
var sectionIntros = map[models.ComplianceStatus]string{
	models.StatusMissing:     "The following frameworks have no supporting evidence and require immediate attention.",
	models.StatusNeedsReview: "Evidence exists for the following frameworks but has not yet passed review.",
	models.StatusComplete:    "The following frameworks are fully evidenced.",
	models.StatusUnknown:     "The review state of the following frameworks could not be determined from the latest analysis.",
}

// ReportService renders compliance summaries as PDF documents.
type ReportService interface {
	// GenerateGapAnalysis renders the gap-analysis report for a summary.
	// It only re-presents normalized scores; nothing is recomputed here.
	GenerateGapAnalysis(summary *models.ComplianceSummary, orgName string) ([]byte, error)
}

// reportService implements ReportService using fpdf.
type reportService struct {
	logger *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(logger *zap.Logger) ReportService {
	return &reportService{logger: logger}
}

// GenerateGapAnalysis renders the gap-analysis report for a summary.
func (s *reportService) GenerateGapAnalysis(summary *models.ComplianceSummary, orgName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Compliance Gap Analysis", false)
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(26, 35, 126)
	pdf.CellFormat(0, 12, "Compliance Gap Analysis", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(66, 66, 66)
	if orgName != "" {
		pdf.CellFormat(0, 8, orgName, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 8, "Generated "+summary.FetchedAt.Format("2 January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Headline score
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(25, 118, 210)
	if summary.OverallScore != nil {
		pdf.CellFormat(0, 10, fmt.Sprintf("Overall compliance: %.1f%%", *summary.OverallScore), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 10, "Overall compliance: no data available yet", "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Evidence: "+path.Base(summary.SourcePath), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(summary.Frameworks) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(66, 66, 66)
		pdf.MultiCell(0, 6, "No compliance analysis results are available for this period. "+
			"Upload evidence documents and check back after the next analysis run.", "", "L", false)
		return s.output(pdf)
	}

	s.writeSummaryTable(pdf, summary.Frameworks)
	pdf.Ln(6)

	for _, section := range compliance.BuildReportSections(summary) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(25, 118, 210)
		pdf.CellFormat(0, 9, fmt.Sprintf("%s (%d)", section.Status, len(section.Frameworks)), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(66, 66, 66)
		pdf.MultiCell(0, 5, sectionIntros[section.Status], "", "L", false)
		pdf.Ln(1)

		for _, f := range section.Frameworks {
			pdf.CellFormat(0, 6, fmt.Sprintf("  - %s: %.1f%%", f.Name, f.ScorePercent), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	return s.output(pdf)
}

// writeSummaryTable renders the framework/score/status table.
func (s *reportService) writeSummaryTable(pdf *fpdf.Fpdf, frameworks []models.ComplianceFramework) {
	const (
		nameWidth   = 90.0
		scoreWidth  = 40.0
		statusWidth = 50.0
	)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(26, 35, 126)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(nameWidth, 8, "Framework", "1", 0, "L", true, 0, "")
	pdf.CellFormat(scoreWidth, 8, "Score (%)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(statusWidth, 8, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 33, 33)
	fill := false
	for _, f := range frameworks {
		pdf.SetFillColor(240, 242, 248)
		pdf.CellFormat(nameWidth, 7, f.Name, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(scoreWidth, 7, fmt.Sprintf("%.1f", f.ScorePercent), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(statusWidth, 7, string(f.Status), "1", 1, "C", fill, 0, "")
		fill = !fill
	}
}

func (s *reportService) output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure reportService implements ReportService at compile time.
var _ ReportService = (*reportService)(nil)
