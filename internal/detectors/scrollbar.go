package detectors

import (
	"context"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// scrollbarScript computes viewport/document extents and the element
// causing horizontal overhang, per spec §4.6.4.
const scrollbarScript = `(function(){
  const w = window.innerWidth, h = window.innerHeight;
  const doc = document.documentElement, body = document.body;
  const W = Math.max(body.scrollWidth, doc.scrollWidth, body.offsetWidth, doc.offsetWidth, body.clientWidth, doc.clientWidth);
  const H = Math.max(body.scrollHeight, doc.scrollHeight, body.offsetHeight, doc.offsetHeight, body.clientHeight, doc.clientHeight);

  let causingSelector = '';
  let maxOverhang = 0;
  if (W > w) {
    const candidates = document.querySelectorAll('body > *, .container, .wrapper, main, #content');
    candidates.forEach(function(el){
      const r = el.getBoundingClientRect();
      const overhang = r.right - w;
      if (overhang > maxOverhang) {
        maxOverhang = overhang;
        causingSelector = el.tagName.toLowerCase() + (el.id ? '#'+el.id : '');
      }
    });
  }

  return JSON.stringify({
    viewportWidth: w, viewportHeight: h,
    documentWidth: W, documentHeight: H,
    causingSelector: causingSelector
  });
})()`

// ScrollbarMetrics is the decoded shape of scrollbarScript.
type ScrollbarMetrics struct {
	ViewportWidth   float64 `json:"viewportWidth"`
	ViewportHeight  float64 `json:"viewportHeight"`
	DocumentWidth   float64 `json:"documentWidth"`
	DocumentHeight  float64 `json:"documentHeight"`
	CausingSelector string  `json:"causingSelector"`
}

// ScrollbarConfig holds spec §4.6.4's tunable.
type ScrollbarConfig struct {
	ExpectVerticalScrollbar bool
}

type ScrollbarDetector struct {
	Config ScrollbarConfig
}

func NewScrollbarDetector(cfg ScrollbarConfig) *ScrollbarDetector { return &ScrollbarDetector{Config: cfg} }

func (d *ScrollbarDetector) Name() string { return "scrollbar" }

// Detect never fails the pipeline: script errors are absorbed into an
// empty issue list (spec §4.6.4/§7).
func (d *ScrollbarDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	var metrics ScrollbarMetrics
	if err := page.Evaluate(ctx, scrollbarScript, &metrics); err != nil {
		return []auditmodel.Issue{}, nil
	}
	return ComputeScrollbarIssues(metrics, d.Config), nil
}

// ComputeScrollbarIssues is the pure computation behind Detect.
func ComputeScrollbarIssues(m ScrollbarMetrics, cfg ScrollbarConfig) []auditmodel.Issue {
	var issues []auditmodel.Issue

	if hOverflow := m.DocumentWidth - m.ViewportWidth; hOverflow > 5 {
		severity := auditmodel.SeverityMinor
		switch {
		case hOverflow > 100:
			severity = auditmodel.SeverityCritical
		case hOverflow > 20:
			severity = auditmodel.SeverityMajor
		}
		overflow := hOverflow
		issues = append(issues, auditmodel.Issue{
			Type:               auditmodel.IssueScrollbar,
			Severity:           severity,
			Message:            "unexpected horizontal scrollbar",
			CausingSelector:    m.CausingSelector,
			ScrollbarOverflow:  &overflow,
		})
	}

	if !cfg.ExpectVerticalScrollbar {
		if vOverflow := m.DocumentHeight - m.ViewportHeight; vOverflow > 50 {
			overflow := vOverflow
			issues = append(issues, auditmodel.Issue{
				Type:              auditmodel.IssueScrollbar,
				Severity:          auditmodel.SeverityMinor,
				Message:           "unexpected vertical scrollbar",
				ScrollbarOverflow: &overflow,
			})
		}
	}

	return issues
}
