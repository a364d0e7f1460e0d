package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestWriteXLSX_ProducesIssuesAndSummarySheets(t *testing.T) {
	result := auditmodel.NewMultiURLAuditResult([]auditmodel.AuditResult{
		auditmodel.NewAuditResult("https://example.com", auditmodel.Viewport{Width: 1920, Height: 1080}, []auditmodel.Issue{
			{
				Type:     auditmodel.IssueOverlap,
				Severity: auditmodel.SeverityCritical,
				Message:  "elements overlap",
				Elements: []auditmodel.ElementLocation{{Selector: ".a"}, {Selector: ".b"}},
			},
		}),
	}, false)

	data, err := WriteXLSX(result)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Issues", "Summary"}, f.GetSheetList())

	cell, err := f.GetCellValue("Issues", "A2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cell)

	sevCell, err := f.GetCellValue("Issues", "B2")
	require.NoError(t, err)
	assert.Equal(t, "critical", sevCell)

	summaryURL, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", summaryURL)
}
