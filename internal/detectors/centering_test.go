package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestComputeCenteringIssues_FlagsOffCenterElement(t *testing.T) {
	candidates := []CenteringCandidate{
		{
			Selector:     "div#0",
			Bounds:       auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 40},
			ParentBounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 400, Height: 40},
		},
	}
	issues := ComputeCenteringIssues(candidates, DefaultCenteringConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.IssueCentering, issues[0].Type)
	assert.Equal(t, auditmodel.SeverityMajor, issues[0].Severity)
}

func TestComputeCenteringIssues_NoIssueWhenCentered(t *testing.T) {
	candidates := []CenteringCandidate{
		{
			Selector:     "div#0",
			Bounds:       auditmodel.BoundingBox{X: 150, Y: 0, Width: 100, Height: 40},
			ParentBounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 400, Height: 40},
		},
	}
	assert.Empty(t, ComputeCenteringIssues(candidates, DefaultCenteringConfig()))
}

func TestComputeCenteringIssues_MinorWithinModeratelyOffCenter(t *testing.T) {
	candidates := []CenteringCandidate{
		{
			Selector:     "div#0",
			Bounds:       auditmodel.BoundingBox{X: 110, Y: 0, Width: 100, Height: 40},
			ParentBounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 400, Height: 40},
		},
	}
	issues := ComputeCenteringIssues(candidates, DefaultCenteringConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, auditmodel.SeverityMinor, issues[0].Severity)
}

func TestComputeCenteringIssues_SkipsZeroWidthParent(t *testing.T) {
	candidates := []CenteringCandidate{
		{
			Selector:     "div#0",
			Bounds:       auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 40},
			ParentBounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 0, Height: 40},
		},
	}
	assert.Empty(t, ComputeCenteringIssues(candidates, DefaultCenteringConfig()))
}
