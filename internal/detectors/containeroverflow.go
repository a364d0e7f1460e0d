package detectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// containerOverflowScript returns (parent, child) pairs for each visible
// non-scrollable container among the tag set of spec §4.6.2.
const containerOverflowScript = `(function(){
  const tags = ['div','section','article','main','aside','header','footer','nav','form','ul','ol','table','tr','td','th'];
  const out = [];
  document.querySelectorAll(tags.join(',')).forEach(function(parent, idx){
    const pr = parent.getBoundingClientRect();
    if (pr.width < 20 || pr.height < 20) return;
    const cs = getComputedStyle(parent);
    if (cs.display === 'none' || cs.visibility === 'hidden') return;
    if (cs.overflow === 'scroll' || cs.overflow === 'auto' || cs.overflowX === 'scroll' || cs.overflowX === 'auto') return;
    parent.setAttribute('data-vda-index', String(idx));
    Array.from(parent.children).forEach(function(child){
      const cr = child.getBoundingClientRect();
      if (cr.width < 20 || cr.height < 20) return;
      out.push({
        parentSelector: parent.tagName.toLowerCase()+'#'+idx,
        parentBounds: {x:pr.left,y:pr.top,width:pr.width,height:pr.height},
        childSelector: child.tagName.toLowerCase(),
        childBounds: {x:cr.left,y:cr.top,width:cr.width,height:cr.height}
      });
    });
  });
  return JSON.stringify(out);
})()`

// ContainerPair is the decoded shape of containerOverflowScript.
type ContainerPair struct {
	ParentSelector string                 `json:"parentSelector"`
	ParentBounds   auditmodel.BoundingBox `json:"parentBounds"`
	ChildSelector  string                 `json:"childSelector"`
	ChildBounds    auditmodel.BoundingBox `json:"childBounds"`
}

var containerOverflowIgnoredSelectors = []string{
	".dropdown", ".tooltip", ".popup", ".modal",
	"[role='dialog']", "[role='tooltip']", "[role='menu']",
	".menu", ".overflow", "code", "pre",
}

// ContainerOverflowConfig holds spec §4.6.2's tunable.
type ContainerOverflowConfig struct {
	MinOverflowPx float64
}

func DefaultContainerOverflowConfig() ContainerOverflowConfig {
	return ContainerOverflowConfig{MinOverflowPx: 5}
}

type ContainerOverflowDetector struct {
	Config ContainerOverflowConfig
}

func NewContainerOverflowDetector(cfg ContainerOverflowConfig) *ContainerOverflowDetector {
	return &ContainerOverflowDetector{Config: cfg}
}

func (d *ContainerOverflowDetector) Name() string { return "container-overflow" }

func (d *ContainerOverflowDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	var pairs []ContainerPair
	if err := page.Evaluate(ctx, containerOverflowScript, &pairs); err != nil {
		return nil, fmt.Errorf("script-eval-failed: %w", err)
	}
	return ComputeContainerOverflowIssues(pairs, d.Config), nil
}

// ComputeContainerOverflowIssues is the pure computation behind Detect
// (spec §4.6.2, spec §8 scenario 5).
func ComputeContainerOverflowIssues(pairs []ContainerPair, cfg ContainerOverflowConfig) []auditmodel.Issue {
	threshold := cfg.MinOverflowPx
	if threshold <= 0 {
		threshold = 5
	}

	var issues []auditmodel.Issue
	for _, p := range pairs {
		if isIgnoredOverflowSelector(p.ParentSelector) || isIgnoredOverflowSelector(p.ChildSelector) {
			continue
		}

		parent, child := p.ParentBounds, p.ChildBounds
		top := maxf(0, parent.Y-child.Y)
		left := maxf(0, parent.X-child.X)
		right := maxf(0, child.Right()-parent.Right())
		bottom := maxf(0, child.Bottom()-parent.Bottom())

		if top == 0 && left == 0 && right == 0 && bottom == 0 {
			continue
		}
		if top < threshold && left < threshold && right < threshold && bottom < threshold {
			continue
		}

		ratio := maxSideRatio(top, left, right, bottom, parent)
		severity := auditmodel.SeverityMinor
		switch {
		case ratio >= 30:
			severity = auditmodel.SeverityCritical
		case ratio >= 15:
			severity = auditmodel.SeverityMajor
		}

		issues = append(issues, auditmodel.Issue{
			Type:     auditmodel.IssueContainerOverflow,
			Severity: severity,
			Message:  fmt.Sprintf("%s overflows its container %s", p.ChildSelector, p.ParentSelector),
			Elements: []auditmodel.ElementLocation{
				{Selector: p.ParentSelector, Bounds: parent},
				{Selector: p.ChildSelector, Bounds: child},
			},
			OverflowAmount: &auditmodel.OverflowAmount{Top: top, Left: left, Right: right, Bottom: bottom},
			CausingSelector: p.ChildSelector,
		})
	}
	return issues
}

func maxSideRatio(top, left, right, bottom float64, parent auditmodel.BoundingBox) float64 {
	ratio := 0.0
	if parent.Height > 0 {
		ratio = maxf(ratio, 100*top/parent.Height)
		ratio = maxf(ratio, 100*bottom/parent.Height)
	}
	if parent.Width > 0 {
		ratio = maxf(ratio, 100*left/parent.Width)
		ratio = maxf(ratio, 100*right/parent.Width)
	}
	return ratio
}

func isIgnoredOverflowSelector(selector string) bool {
	lower := strings.ToLower(selector)
	for _, ignored := range containerOverflowIgnoredSelectors {
		if strings.Contains(lower, strings.ToLower(strings.Trim(ignored, "[]'"))) {
			return true
		}
	}
	return false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
