package detectors

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// flexGridContainersScript returns candidate flex/grid containers with
// their styles and immediate children (spec §4.6.5).
const flexGridContainersScript = `(function(){
  function styleSubset(el){
    const cs = getComputedStyle(el);
    return {
      display: cs.display,
      flexDirection: cs.flexDirection,
      flexWrap: cs.flexWrap,
      gap: cs.gap, rowGap: cs.rowGap, columnGap: cs.columnGap,
      gridTemplateColumns: cs.gridTemplateColumns,
      gridTemplateRows: cs.gridTemplateRows,
      overflow: cs.overflow
    };
  }
  const out = [];
  document.querySelectorAll('*').forEach(function(el, idx){
    const cs = getComputedStyle(el);
    const cls = (el.className && typeof el.className === 'string') ? el.className : '';
    const looksFlexGrid = cs.display === 'flex' || cs.display === 'grid' || /flex|grid/.test(cls);
    if (!looksFlexGrid) return;
    const r = el.getBoundingClientRect();
    if (r.width === 0 || r.height === 0) return;
    if (cs.display === 'none' || cs.visibility === 'hidden') return;
    const children = Array.from(el.children);
    if (children.length === 0) return;

    out.push({
      selector: el.tagName.toLowerCase()+'#'+idx,
      bounds: {x:r.left,y:r.top,width:r.width,height:r.height},
      style: styleSubset(el),
      children: children.map(function(c){
        const cr = c.getBoundingClientRect();
        const ccs = getComputedStyle(c);
        return {
          bounds: {x:cr.left,y:cr.top,width:cr.width,height:cr.height},
          flexShrink: parseFloat(ccs.flexShrink)||0,
          flexGrow: parseFloat(ccs.flexGrow)||0
        };
      })
    });
  });
  return JSON.stringify(out);
})()`

// FlexGridChild is one immediate child of a flex/grid container.
type FlexGridChild struct {
	Bounds     auditmodel.BoundingBox `json:"bounds"`
	FlexShrink float64                `json:"flexShrink"`
	FlexGrow   float64                `json:"flexGrow"`
}

// FlexGridStyle is the relevant computed-style subset of a container.
type FlexGridStyle struct {
	Display             string `json:"display"`
	FlexDirection       string `json:"flexDirection"`
	FlexWrap            string `json:"flexWrap"`
	Gap                 string `json:"gap"`
	RowGap              string `json:"rowGap"`
	ColumnGap           string `json:"columnGap"`
	GridTemplateColumns string `json:"gridTemplateColumns"`
	GridTemplateRows    string `json:"gridTemplateRows"`
	Overflow            string `json:"overflow"`
}

// FlexGridContainer is the decoded shape of flexGridContainersScript.
type FlexGridContainer struct {
	Selector string                 `json:"selector"`
	Bounds   auditmodel.BoundingBox `json:"bounds"`
	Style    FlexGridStyle          `json:"style"`
	Children []FlexGridChild        `json:"children"`
}

// FlexGridConfig holds spec §4.6.5's tunables.
type FlexGridConfig struct {
	MinChildWidth float64
	MinGap        float64
}

func DefaultFlexGridConfig() FlexGridConfig {
	return FlexGridConfig{MinChildWidth: 10, MinGap: 4}
}

type FlexGridDetector struct {
	Config FlexGridConfig
}

func NewFlexGridDetector(cfg FlexGridConfig) *FlexGridDetector { return &FlexGridDetector{Config: cfg} }

func (d *FlexGridDetector) Name() string { return "flex-grid" }

func (d *FlexGridDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	var containers []FlexGridContainer
	if err := page.Evaluate(ctx, flexGridContainersScript, &containers); err != nil {
		return nil, fmt.Errorf("script-eval-failed: %w", err)
	}
	return ComputeFlexGridIssues(containers, d.Config), nil
}

// ComputeFlexGridIssues is the pure computation behind Detect (spec §4.6.5).
func ComputeFlexGridIssues(containers []FlexGridContainer, cfg FlexGridConfig) []auditmodel.Issue {
	minChildWidth := cfg.MinChildWidth
	if minChildWidth <= 0 {
		minChildWidth = 10
	}
	minGap := cfg.MinGap
	if minGap <= 0 {
		minGap = 4
	}

	var issues []auditmodel.Issue
	for _, c := range containers {
		var problems []string

		hasGap := c.Style.Gap != "" && c.Style.Gap != "0px" ||
			c.Style.RowGap != "" && c.Style.RowGap != "0px" ||
			c.Style.ColumnGap != "" && c.Style.ColumnGap != "0px"

		if c.Style.Display == "flex" {
			problems = append(problems, flexProblems(c, minChildWidth, minGap, hasGap)...)
		}
		if c.Style.Display == "grid" {
			problems = append(problems, gridProblems(c, hasGap)...)
		}

		for _, problem := range problems {
			issues = append(issues, auditmodel.Issue{
				Type:     auditmodel.IssueLayout,
				Severity: flexGridSeverity(problem),
				Message:  fmt.Sprintf("%s: %s", c.Selector, problem),
				Elements: []auditmodel.ElementLocation{{Selector: c.Selector, Bounds: c.Bounds}},
			})
		}
	}
	return issues
}

func flexProblems(c FlexGridContainer, minChildWidth, minGap float64, hasGap bool) []string {
	var problems []string

	if c.Style.FlexDirection == "" {
		problems = append(problems, "missing flex-direction")
	}

	horizontal := c.Style.FlexDirection == "" || c.Style.FlexDirection == "row" || c.Style.FlexDirection == "row-reverse"

	if c.Style.FlexWrap == "nowrap" && len(c.Children) > 3 {
		var sumExtent float64
		for _, child := range c.Children {
			if horizontal {
				sumExtent += child.Bounds.Width
			} else {
				sumExtent += child.Bounds.Height
			}
		}
		containerExtent := c.Bounds.Width
		if !horizontal {
			containerExtent = c.Bounds.Height
		}
		if sumExtent > 1.1*containerExtent {
			problems = append(problems, "children overflow container without flex-wrap")
		}
	}

	for _, child := range c.Children {
		if child.FlexShrink > 0 && child.FlexGrow == 0 {
			if child.Bounds.Width < minChildWidth || child.Bounds.Height < minChildWidth {
				problems = append(problems, "excessively squished child")
				break
			}
		}
	}

	if !hasGap {
		sortedChildren := append([]FlexGridChild{}, c.Children...)
		for i := 0; i+1 < len(sortedChildren); i++ {
			var gap float64
			if horizontal {
				gap = sortedChildren[i+1].Bounds.X - sortedChildren[i].Bounds.Right()
			} else {
				gap = sortedChildren[i+1].Bounds.Y - sortedChildren[i].Bounds.Bottom()
			}
			if gap >= 0 && gap < minGap {
				problems = append(problems, "insufficient spacing")
				break
			}
		}
	}

	return problems
}

func gridProblems(c FlexGridContainer, hasGap bool) []string {
	var problems []string

	if c.Style.GridTemplateColumns == "none" && c.Style.GridTemplateRows == "none" {
		problems = append(problems, "missing grid-template")
	}

	if len(c.Children) >= 3 {
		if cv(widths(c.Children)) > 0.3 || cv(heights(c.Children)) > 0.3 {
			problems = append(problems, "inconsistent sizing")
		}
	}

	if c.Style.Overflow == "hidden" {
		for _, child := range c.Children {
			if child.Bounds.Width > c.Bounds.Width || child.Bounds.Height > c.Bounds.Height {
				problems = append(problems, "children overflow grid container")
				break
			}
		}
	}

	if !hasGap {
		problems = append(problems, "missing gap property")
	}

	return problems
}

func widths(children []FlexGridChild) []float64 {
	out := make([]float64, len(children))
	for i, c := range children {
		out[i] = c.Bounds.Width
	}
	return out
}

func heights(children []FlexGridChild) []float64 {
	out := make([]float64, len(children))
	for i, c := range children {
		out[i] = c.Bounds.Height
	}
	return out
}

// cv returns the coefficient of variation (stddev/mean) of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

func flexGridSeverity(problem string) auditmodel.Severity {
	lower := strings.ToLower(problem)
	if strings.Contains(lower, "overflow") || strings.Contains(lower, "squished") ||
		strings.Contains(lower, "incorrect gap") || strings.Contains(lower, "misaligned") {
		return auditmodel.SeverityMajor
	}
	return auditmodel.SeverityMinor
}
