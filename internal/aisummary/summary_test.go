package aisummary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestBuildPrompt_IncludesIssueCountsAndBreakdown(t *testing.T) {
	result := auditmodel.NewMultiURLAuditResult([]auditmodel.AuditResult{
		auditmodel.NewAuditResult("https://example.com", auditmodel.Viewport{Width: 1920, Height: 1080}, []auditmodel.Issue{
			{Type: auditmodel.IssueOverlap, Severity: auditmodel.SeverityCritical},
			{Type: auditmodel.IssueSpacing, Severity: auditmodel.SeverityMinor},
		}),
	}, false)

	prompt := buildPrompt(result)
	assert.Contains(t, prompt, "Total issues: 2")
	assert.Contains(t, prompt, "critical: 1")
	assert.Contains(t, prompt, "overlap=1")
	assert.Contains(t, prompt, "spacing=1")
}

func TestNew_RejectsEmptyAPIKey(t *testing.T) {
	_, err := New(nil, "", "")
	assert.Error(t, err)
}
