package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/example/employee-portal/internal/application"
)

// IssuesPDF writes the issues as a landscape tabular PDF report.
func IssuesPDF(w io.Writer, issues []application.Issue) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Issue Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Issue Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	widths := []float64{55, 80, 22, 28, 40, 30}
	headers := []string{"Title", "Description", "Priority", "Status", "Raised By", "Created"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, issue := range issues {
		values := []string{
			truncate(issue.Title, 40),
			truncate(issue.Description, 60),
			string(issue.Priority),
			string(issue.Status),
			truncate(issue.RaisedBy.Name, 28),
			issue.CreatedAt.Format("2006-01-02"),
		}
		for i, value := range values {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf export: %w", err)
	}
	return nil
}

// truncate shortens s to at most max characters. It counts runes so a
// multibyte title is never cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
