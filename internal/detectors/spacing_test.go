package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestComputeSpacingIssues_SpecScenario(t *testing.T) {
	// spec §8 scenario 6.
	elements := []SpacingElement{
		{Selector: "a#1", ParentSelector: "ul.nav-list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 10, Y: 0, Width: 100, Height: 20}},
		{Selector: "a#2", ParentSelector: "ul.nav-list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 102, Y: 0, Width: 100, Height: 20}},
	}

	issues := ComputeSpacingIssues(elements, DefaultSpacingConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, -8.0, *issues[0].ActualSpacing)
	assert.Equal(t, 8.0, *issues[0].RecommendedSpacing)
	assert.Equal(t, auditmodel.SeverityCritical, issues[0].Severity)
}

func TestComputeSpacingIssues_NoIssueWhenSpacedEnough(t *testing.T) {
	elements := []SpacingElement{
		{Selector: "a#1", ParentSelector: "ul.nav-list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 50, Height: 20}},
		{Selector: "a#2", ParentSelector: "ul.nav-list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 70, Y: 0, Width: 50, Height: 20}},
	}
	assert.Empty(t, ComputeSpacingIssues(elements, DefaultSpacingConfig()))
}

func TestComputeSpacingIssues_VerticalGroupedBlockElements(t *testing.T) {
	elements := []SpacingElement{
		{Selector: "img#1", ParentSelector: "ul.gallery", IsInline: false, Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}},
		{Selector: "img#2", ParentSelector: "ul.gallery", IsInline: false, Bounds: auditmodel.BoundingBox{X: 0, Y: 52, Width: 100, Height: 50}},
	}
	issues := ComputeSpacingIssues(elements, DefaultSpacingConfig())
	require.Len(t, issues, 1)
	assert.Equal(t, 2.0, *issues[0].ActualSpacing)
}

func TestComputeSpacingIssues_SkipsContainerLikeParents(t *testing.T) {
	elements := []SpacingElement{
		{Selector: "a#1", ParentSelector: "div.hero", IsInline: true, Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 50, Height: 20}},
		{Selector: "a#2", ParentSelector: "div.hero", IsInline: true, Bounds: auditmodel.BoundingBox{X: 51, Y: 0, Width: 50, Height: 20}},
	}
	assert.Empty(t, ComputeSpacingIssues(elements, DefaultSpacingConfig()))
}

func TestComputeSpacingIssues_SkipsIgnoreList(t *testing.T) {
	elements := []SpacingElement{
		{Selector: "span.badge", ParentSelector: "ul.list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}},
		{Selector: "span.badge-2", ParentSelector: "ul.list", IsInline: true, Bounds: auditmodel.BoundingBox{X: 11, Y: 0, Width: 10, Height: 10}},
	}
	assert.Empty(t, ComputeSpacingIssues(elements, DefaultSpacingConfig()))
}
