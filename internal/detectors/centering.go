package detectors

import (
	"context"
	"fmt"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// centeringElementsScript finds elements that opt into a centering check
// via class/attribute hints, paired with their parent's bounds (SPEC_FULL
// §11 supplement — spec.md names "centering" but never defines it).
const centeringElementsScript = `(function(){
  const sel = ".mx-auto, .text-center, [style*='margin:auto'], [data-center-check]";
  const out = [];
  document.querySelectorAll(sel).forEach(function(el, idx){
    const parent = el.parentElement;
    if (!parent) return;
    const r = el.getBoundingClientRect();
    const pr = parent.getBoundingClientRect();
    out.push({
      selector: el.tagName.toLowerCase()+'#'+idx,
      bounds: {x:r.left,y:r.top,width:r.width,height:r.height},
      parentBounds: {x:pr.left,y:pr.top,width:pr.width,height:pr.height}
    });
  });
  return JSON.stringify(out);
})()`

// CenteringCandidate is the decoded shape of centeringElementsScript.
type CenteringCandidate struct {
	Selector     string                 `json:"selector"`
	Bounds       auditmodel.BoundingBox `json:"bounds"`
	ParentBounds auditmodel.BoundingBox `json:"parentBounds"`
}

// CenteringConfig holds the supplement's tunable (SPEC_FULL §11).
type CenteringConfig struct {
	ToleranceFraction float64 // fraction of parent width deviation tolerated
}

func DefaultCenteringConfig() CenteringConfig {
	return CenteringConfig{ToleranceFraction: 0.05}
}

// CenteringDetector is disabled by default (spec §6) and must be
// explicitly requested via --detectors.
type CenteringDetector struct {
	Config CenteringConfig
}

func NewCenteringDetector(cfg CenteringConfig) *CenteringDetector { return &CenteringDetector{Config: cfg} }

func (d *CenteringDetector) Name() string { return "centering" }

func (d *CenteringDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	var candidates []CenteringCandidate
	if err := page.Evaluate(ctx, centeringElementsScript, &candidates); err != nil {
		return nil, fmt.Errorf("script-eval-failed: %w", err)
	}
	return ComputeCenteringIssues(candidates, d.Config), nil
}

// ComputeCenteringIssues is the pure computation behind Detect.
func ComputeCenteringIssues(candidates []CenteringCandidate, cfg CenteringConfig) []auditmodel.Issue {
	tolerance := cfg.ToleranceFraction
	if tolerance <= 0 {
		tolerance = 0.05
	}

	var issues []auditmodel.Issue
	for _, c := range candidates {
		if c.ParentBounds.Width <= 0 {
			continue
		}
		elemMid := c.Bounds.X + c.Bounds.Width/2
		parentMid := c.ParentBounds.X + c.ParentBounds.Width/2
		deviation := abs(elemMid - parentMid)
		allowed := tolerance * c.ParentBounds.Width

		if deviation <= allowed {
			continue
		}

		severity := auditmodel.SeverityMinor
		ratio := deviation / c.ParentBounds.Width
		if ratio > 0.2 {
			severity = auditmodel.SeverityMajor
		}

		issues = append(issues, auditmodel.Issue{
			Type:     auditmodel.IssueCentering,
			Severity: severity,
			Message:  fmt.Sprintf("%s deviates %.1fpx from its parent's horizontal center", c.Selector, deviation),
			Elements: []auditmodel.ElementLocation{{Selector: c.Selector, Bounds: c.Bounds}},
		})
	}
	return issues
}
