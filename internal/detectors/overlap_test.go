package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestComputeOverlapIssues_SpecScenario(t *testing.T) {
	// spec §8 scenario 4.
	elements := []PresentationalElement{
		{Selector: "#a", Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}},
		{Selector: "#b", Bounds: auditmodel.BoundingBox{X: 25, Y: 25, Width: 100, Height: 100}},
	}

	issues := ComputeOverlapIssues(elements, DefaultOverlapConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.IssueOverlap, issues[0].Type)
	assert.InDelta(t, 56.25, issues[0].OverlapArea.Percentage, 0.001)
	assert.Equal(t, auditmodel.SeverityCritical, issues[0].Severity)
}

func TestComputeOverlapIssues_NoOverlapWhenDisjoint(t *testing.T) {
	elements := []PresentationalElement{
		{Selector: "#a", Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}},
		{Selector: "#b", Bounds: auditmodel.BoundingBox{X: 200, Y: 200, Width: 100, Height: 100}},
	}
	issues := ComputeOverlapIssues(elements, DefaultOverlapConfig())
	assert.Empty(t, issues)
}

func TestComputeOverlapIssues_NavPairForcedCritical(t *testing.T) {
	elements := []PresentationalElement{
		{Selector: "nav.primary", Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 200, Height: 50}},
		{Selector: "div.banner", Bounds: auditmodel.BoundingBox{X: 5, Y: 5, Width: 200, Height: 50}},
	}
	issues := ComputeOverlapIssues(elements, DefaultOverlapConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.SeverityCritical, issues[0].Severity)
}

func TestComputeOverlapIssues_SkipsSmallNonInteractiveOverlap(t *testing.T) {
	elements := []PresentationalElement{
		{Selector: "span.a", Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 20, Height: 20}},
		{Selector: "span.b", Bounds: auditmodel.BoundingBox{X: 18, Y: 18, Width: 20, Height: 20}},
	}
	// intersection is 2x2=4px, well under the 50px area false-positive floor.
	issues := ComputeOverlapIssues(elements, DefaultOverlapConfig())
	assert.Empty(t, issues)
}
