package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

func TestComputeConsoleErrorIssues_SeverityClassification(t *testing.T) {
	messages := []browserdriver.ConsoleMessage{
		{Type: "error", Text: "Uncaught TypeError: x is not a function"},
		{Type: "error", Text: "Failed to load resource: 404"},
		{Type: "warning", Text: "this API is deprecated"},
		{Type: "warning", Text: "layout shift detected"},
	}
	issues := ComputeConsoleErrorIssues(messages, DefaultConsoleErrorConfig())
	require.Len(t, issues, 4)

	severities := make(map[string]int)
	for _, iss := range issues {
		severities[string(iss.Severity)]++
	}
	assert.Equal(t, 1, severities["critical"])
	assert.Equal(t, 2, severities["major"])
	assert.Equal(t, 1, severities["minor"])
}

func TestComputeConsoleErrorIssues_DropsIgnoredSources(t *testing.T) {
	messages := []browserdriver.ConsoleMessage{
		{Type: "error", Text: "blocked request", SourceURL: "https://googletagmanager.com/gtag.js"},
		{Type: "error", Text: "real bug"},
	}
	issues := ComputeConsoleErrorIssues(messages, DefaultConsoleErrorConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, "real bug", issues[0].Message)
}

func TestComputeConsoleErrorIssues_ExcludesWarningsWhenDisabled(t *testing.T) {
	messages := []browserdriver.ConsoleMessage{
		{Type: "warning", Text: "deprecated API"},
	}
	cfg := DefaultConsoleErrorConfig()
	cfg.IncludeWarnings = false
	assert.Empty(t, ComputeConsoleErrorIssues(messages, cfg))
}

func TestComputeConsoleErrorIssues_AllHaveKnownType(t *testing.T) {
	messages := []browserdriver.ConsoleMessage{{Type: "error", Text: "boom"}}
	issues := ComputeConsoleErrorIssues(messages, DefaultConsoleErrorConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.IssueConsoleError, issues[0].Type)
}
