package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScrollbarIssues_HorizontalSeverityBands(t *testing.T) {
	cases := []struct {
		overflow float64
		want     string
	}{
		{150, "critical"},
		{50, "major"},
		{10, "minor"},
	}
	for _, c := range cases {
		m := ScrollbarMetrics{ViewportWidth: 1000, DocumentWidth: 1000 + c.overflow, ViewportHeight: 800, DocumentHeight: 800}
		issues := ComputeScrollbarIssues(m, ScrollbarConfig{})
		require.Len(t, issues, 1)
		assert.Equal(t, c.want, string(issues[0].Severity))
	}
}

func TestComputeScrollbarIssues_NoIssueBelowThreshold(t *testing.T) {
	m := ScrollbarMetrics{ViewportWidth: 1000, DocumentWidth: 1003, ViewportHeight: 800, DocumentHeight: 800}
	assert.Empty(t, ComputeScrollbarIssues(m, ScrollbarConfig{}))
}

func TestComputeScrollbarIssues_VerticalOnlyWhenUnexpected(t *testing.T) {
	m := ScrollbarMetrics{ViewportWidth: 1000, DocumentWidth: 1000, ViewportHeight: 800, DocumentHeight: 900}
	issues := ComputeScrollbarIssues(m, ScrollbarConfig{ExpectVerticalScrollbar: false})
	require.Len(t, issues, 1)
	assert.Equal(t, "minor", string(issues[0].Severity))

	issues = ComputeScrollbarIssues(m, ScrollbarConfig{ExpectVerticalScrollbar: true})
	assert.Empty(t, issues)
}
