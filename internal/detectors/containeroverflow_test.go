package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestComputeContainerOverflowIssues_SpecScenario(t *testing.T) {
	// spec §8 scenario 5.
	pairs := []ContainerPair{
		{
			ParentSelector: "div#p",
			ParentBounds:   auditmodel.BoundingBox{X: 100, Y: 100, Width: 200, Height: 200},
			ChildSelector:  "div#c",
			ChildBounds:    auditmodel.BoundingBox{X: 100, Y: 100, Width: 250, Height: 200},
		},
	}

	issues := ComputeContainerOverflowIssues(pairs, DefaultContainerOverflowConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, 50.0, issues[0].OverflowAmount.Right)
	assert.Equal(t, 0.0, issues[0].OverflowAmount.Top)
	assert.Equal(t, auditmodel.SeverityMajor, issues[0].Severity)
}

func TestComputeContainerOverflowIssues_NoIssueWhenContained(t *testing.T) {
	pairs := []ContainerPair{
		{
			ParentSelector: "div#p",
			ParentBounds:   auditmodel.BoundingBox{X: 0, Y: 0, Width: 200, Height: 200},
			ChildSelector:  "div#c",
			ChildBounds:    auditmodel.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100},
		},
	}
	assert.Empty(t, ComputeContainerOverflowIssues(pairs, DefaultContainerOverflowConfig()))
}

func TestComputeContainerOverflowIssues_SkipsIgnoredSelectors(t *testing.T) {
	pairs := []ContainerPair{
		{
			ParentSelector: "div.modal",
			ParentBounds:   auditmodel.BoundingBox{X: 0, Y: 0, Width: 200, Height: 200},
			ChildSelector:  "div#c",
			ChildBounds:    auditmodel.BoundingBox{X: 0, Y: 0, Width: 300, Height: 200},
		},
	}
	assert.Empty(t, ComputeContainerOverflowIssues(pairs, DefaultContainerOverflowConfig()))
}

func TestComputeContainerOverflowIssues_CriticalAtHighRatio(t *testing.T) {
	pairs := []ContainerPair{
		{
			ParentSelector: "div#p",
			ParentBounds:   auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100},
			ChildSelector:  "div#c",
			ChildBounds:    auditmodel.BoundingBox{X: 0, Y: 0, Width: 140, Height: 100},
		},
	}
	issues := ComputeContainerOverflowIssues(pairs, DefaultContainerOverflowConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.SeverityCritical, issues[0].Severity)
}
