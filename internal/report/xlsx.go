// Package report renders an audit result to an XLSX workbook (spec §10),
// grounded on services/export.go's excelize usage: one sheet of individual
// issues, one summary sheet of per-URL totals.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

const (
	issuesSheet  = "Issues"
	summarySheet = "Summary"
)

var issueHeaders = []string{
	"URL", "Severity", "Type", "Message", "Causing Selector", "Elements",
}

var summaryHeaders = []string{
	"URL", "Total Issues", "Critical", "Major", "Minor", "Audited At",
}

// WriteXLSX renders result into an XLSX workbook and returns its bytes.
func WriteXLSX(result auditmodel.MultiURLAuditResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeIssuesSheet(f, result); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, result); err != nil {
		return nil, err
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report-write-failed: %w", err)
	}
	return buf.Bytes(), nil
}

func writeIssuesSheet(f *excelize.File, result auditmodel.MultiURLAuditResult) error {
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return fmt.Errorf("report-write-failed: new sheet: %w", err)
	}

	for i, h := range issueHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(issuesSheet, cell, h)
	}

	row := 2
	for _, audit := range result.Results {
		for _, issue := range audit.Issues {
			values := []any{
				audit.URL,
				string(issue.Severity),
				string(issue.Type),
				issue.Message,
				issue.CausingSelector,
				elementSummary(issue.Elements),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(issuesSheet, cell, v)
			}
			row++
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result auditmodel.MultiURLAuditResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("report-write-failed: new sheet: %w", err)
	}

	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, h)
	}

	row := 2
	for _, audit := range result.Results {
		values := []any{
			audit.URL,
			audit.Metadata.TotalIssuesFound,
			audit.Metadata.CriticalIssues,
			audit.Metadata.MajorIssues,
			audit.Metadata.MinorIssues,
			audit.Timestamp.Format(time.RFC3339),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(summarySheet, cell, v)
		}
		row++
	}
	return nil
}

func elementSummary(elements []auditmodel.ElementLocation) string {
	if len(elements) == 0 {
		return ""
	}
	out := elements[0].Selector
	for _, e := range elements[1:] {
		out += "; " + e.Selector
	}
	return out
}
