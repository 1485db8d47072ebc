// Package export renders issue reports as downloadable Excel and PDF
// documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/employee-portal/internal/application"
)

var issueColumns = []string{"Title", "Description", "Priority", "Status", "Raised By", "Comments", "Created At"}

// IssuesExcel writes the issues as a single-sheet xlsx workbook.
func IssuesExcel(w io.Writer, issues []application.Issue) error {
	book := excelize.NewFile()
	defer book.Close()

	const sheet = "Issues"
	index, err := book.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("excel export: %w", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("excel export: %w", err)
	}

	for i, column := range issueColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("excel export: %w", err)
		}
		if err := book.SetCellValue(sheet, cell, column); err != nil {
			return fmt.Errorf("excel export: %w", err)
		}
	}

	for row, issue := range issues {
		values := []any{
			issue.Title,
			issue.Description,
			string(issue.Priority),
			string(issue.Status),
			issue.RaisedBy.Name,
			commentSummary(issue),
			issue.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("excel export: %w", err)
			}
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("excel export: %w", err)
			}
		}
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("excel export: %w", err)
	}
	return nil
}

func commentSummary(issue application.Issue) string {
	if len(issue.Comments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(issue.Comments))
	for _, comment := range issue.Comments {
		parts = append(parts, fmt.Sprintf("%s: %s", comment.CreatedBy.Name, comment.Text))
	}
	return strings.Join(parts, "; ")
}
