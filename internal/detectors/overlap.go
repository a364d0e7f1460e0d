package detectors

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// presentationalElementsScript extracts interactive controls, media,
// headings, paragraphs, list items, spans, named UI classes, and
// navigation containers, applying the in-script filters of spec §4.6.1
// (size, visibility, absolute-in-relative, z-index) except for
// nav/header/menu/logo/brand elements, which are always kept.
const presentationalElementsScript = `(function(){
  const sel = "a, button, input, select, textarea, img, video, h1,h2,h3,h4,h5,h6, p, li, span, " +
    ".card, .btn, .nav-item, .menu-item, .logo, .brand, nav, header, [role='navigation']";
  const isNavLike = (s) => /nav|header|menu|navigation|navbar|logo|brand/i.test(s);
  const out = [];
  document.querySelectorAll(sel).forEach(function(el, idx){
    const r = el.getBoundingClientRect();
    const cs = getComputedStyle(el);
    const selector = el.tagName.toLowerCase() + (el.className && typeof el.className==='string' ? '.'+el.className.split(' ').join('.') : '') + '#'+idx;
    const navLike = isNavLike(selector);
    if (r.width < 10 || r.height < 10) { if (!navLike) return; }
    if (cs.display === 'none' || cs.visibility === 'hidden' || cs.opacity === '0' || el.getAttribute('aria-hidden') === 'true') {
      if (!navLike) return;
    }
    const zIndex = parseInt(cs.zIndex, 10);
    if (!isNaN(zIndex) && zIndex > 1 && !navLike) return;
    if (!navLike && cs.position === 'absolute' && el.parentElement && getComputedStyle(el.parentElement).position === 'relative') return;
    out.push({
      selector: selector,
      bounds: {x:r.left, y:r.top, width:r.width, height:r.height},
      isFixed: cs.position === 'fixed',
      textContent: (el.textContent||'').trim().slice(0,80)
    });
  });
  return JSON.stringify(out);
})()`

// headerSweepScript returns every element with top < 150px and both sides
// larger than 10px; computeHeaderSweep pairs them and keeps overlaps over
// 20%, top 10 descending (spec §4.6.1).
const headerSweepScript = `(function(){
  const els = [];
  document.querySelectorAll('*').forEach(function(el){
    const r = el.getBoundingClientRect();
    if (r.top < 150 && r.width > 10 && r.height > 10) {
      els.push({selector: el.tagName.toLowerCase(), bounds:{x:r.left,y:r.top,width:r.width,height:r.height}});
    }
  });
  return JSON.stringify(els);
})()`

var navLikeRe = regexp.MustCompile(`(?i)nav|header|menu|navigation|navbar|logo|brand`)

// PresentationalElement is the decoded shape of presentationalElementsScript.
type PresentationalElement struct {
	Selector    string                `json:"selector"`
	Bounds      auditmodel.BoundingBox `json:"bounds"`
	IsFixed     bool                  `json:"isFixed"`
	TextContent string                `json:"textContent"`
}

// OverlapConfig holds the overlap detector's tunables (spec §4.6.1).
type OverlapConfig struct {
	MinOverlapPercentage float64
	ScrollX, ScrollY     float64
}

// DefaultOverlapConfig matches spec.md's default minOverlapPercentage.
func DefaultOverlapConfig() OverlapConfig {
	return OverlapConfig{MinOverlapPercentage: 5}
}

// OverlapDetector implements spec §4.6.1.
type OverlapDetector struct {
	Config OverlapConfig
}

func NewOverlapDetector(cfg OverlapConfig) *OverlapDetector { return &OverlapDetector{Config: cfg} }

func (d *OverlapDetector) Name() string { return "overlap" }

func (d *OverlapDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	if !TestMode {
		var headerRaw []PresentationalElement
		if err := page.Evaluate(ctx, headerSweepScript, &headerRaw); err == nil {
			headerIssues := computeHeaderSweep(headerRaw)
			if len(headerIssues) > 0 {
				return headerIssues, nil
			}
		}
	}

	var elements []PresentationalElement
	if err := page.Evaluate(ctx, presentationalElementsScript, &elements); err != nil {
		return nil, fmt.Errorf("script-eval-failed: %w", err)
	}
	return ComputeOverlapIssues(elements, d.Config), nil
}

// computeHeaderSweep pairs elements from the header sweep and keeps pairs
// with >20% overlap (over the smaller area), top 10 descending.
func computeHeaderSweep(elements []PresentationalElement) []auditmodel.Issue {
	type pair struct {
		a, b    PresentationalElement
		percent float64
	}
	var pairs []pair
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			inter, ok := elements[i].Bounds.Intersect(elements[j].Bounds)
			if !ok {
				continue
			}
			smaller := elements[i].Bounds.Area()
			if elements[j].Bounds.Area() < smaller {
				smaller = elements[j].Bounds.Area()
			}
			if smaller <= 0 {
				continue
			}
			pct := 100 * inter.Area() / smaller
			if pct > 20 {
				pairs = append(pairs, pair{elements[i], elements[j], pct})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].percent > pairs[j].percent })
	if len(pairs) > 10 {
		pairs = pairs[:10]
	}

	issues := make([]auditmodel.Issue, 0, len(pairs))
	for _, p := range pairs {
		issues = append(issues, buildOverlapIssue(p.a, p.b, p.percent))
	}
	return issues
}

// ComputeOverlapIssues is the pure computation behind Detect, split out
// so it can be unit tested without a browser (spec §4.6.1).
func ComputeOverlapIssues(elements []PresentationalElement, cfg OverlapConfig) []auditmodel.Issue {
	var issues []auditmodel.Issue
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			issue, ok := computeOverlapPair(elements[i], elements[j], cfg)
			if ok {
				issues = append(issues, issue)
			}
		}
	}
	return issues
}

func computeOverlapPair(a, b PresentationalElement, cfg OverlapConfig) (auditmodel.Issue, bool) {
	boundsA, boundsB := a.Bounds, b.Bounds

	if a.IsFixed != b.IsFixed {
		nonFixed := &boundsA
		if a.IsFixed {
			nonFixed = &boundsB
		}
		nonFixed.X -= cfg.ScrollX
		nonFixed.Y -= cfg.ScrollY

		aAbove := boundsA.Y < -10 && boundsB.Y >= 0
		bAbove := boundsB.Y < -10 && boundsA.Y >= 0
		if aAbove || bAbove {
			return auditmodel.Issue{}, false
		}
	}

	inter, ok := boundsA.Intersect(boundsB)
	if !ok {
		return auditmodel.Issue{}, false
	}

	areaA, areaB := boundsA.Area(), boundsB.Area()
	minArea := areaA
	if areaB < minArea {
		minArea = areaB
	}
	if minArea <= 0 {
		return auditmodel.Issue{}, false
	}
	percentage := 100 * inter.Area() / minArea

	isNavPair := navLikeRe.MatchString(a.Selector) || navLikeRe.MatchString(b.Selector)
	threshold := cfg.MinOverlapPercentage
	if threshold <= 0 {
		threshold = 5
	}
	if isNavPair {
		threshold = 1
		if a.IsFixed != b.IsFixed && threshold < 25 {
			threshold = 25
		}
	}
	if percentage < threshold {
		return auditmodel.Issue{}, false
	}

	if !isNavPair && isFalsePositive(a, b, inter, percentage) {
		return auditmodel.Issue{}, false
	}

	return buildOverlapIssue(a, b, percentage), true
}

func buildOverlapIssue(a, b PresentationalElement, percentage float64) auditmodel.Issue {
	severity := auditmodel.SeverityMinor
	switch {
	case percentage >= 50:
		severity = auditmodel.SeverityCritical
	case percentage >= 25:
		severity = auditmodel.SeverityMajor
	}
	if navLikeRe.MatchString(a.Selector) || navLikeRe.MatchString(b.Selector) {
		severity = auditmodel.SeverityCritical
	}

	inter, _ := a.Bounds.Intersect(b.Bounds)

	return auditmodel.Issue{
		Type:     auditmodel.IssueOverlap,
		Severity: severity,
		Message:  fmt.Sprintf("%s overlaps %s by %.2f%%", a.Selector, b.Selector, percentage),
		Elements: []auditmodel.ElementLocation{
			{Selector: a.Selector, Bounds: a.Bounds, TextContent: a.TextContent},
			{Selector: b.Selector, Bounds: b.Bounds, TextContent: b.TextContent},
		},
		OverlapArea: &auditmodel.OverlapArea{
			Width:      inter.Width,
			Height:     inter.Height,
			Percentage: percentage,
		},
	}
}

// isFalsePositive applies spec §4.6.1's false-positive filter set,
// skipped entirely when either element is nav-like (checked by the
// caller before this is reached).
func isFalsePositive(a, b PresentationalElement, inter auditmodel.BoundingBox, percentage float64) bool {
	tagA, tagB := firstTag(a.Selector), firstTag(b.Selector)

	if (tagA == "div" || tagA == "section") && (tagB == "div" || tagB == "section") {
		return true
	}

	if isImageOrLinkButtonPair(tagA, tagB) || isImageOrLinkButtonPair(tagB, tagA) {
		return true
	}

	if isStackedText(a, b) {
		return true
	}

	if percentage < 15 && edgesTouch(a.Bounds, b.Bounds) {
		return true
	}

	if inter.Area() < 50 && !isInteractive(tagA) && !isInteractive(tagB) {
		return true
	}

	return false
}

func firstTag(selector string) string {
	s := selector
	if idx := strings.IndexAny(s, ".#["); idx >= 0 {
		s = s[:idx]
	}
	return strings.ToLower(s)
}

func isImageOrLinkButtonPair(outer, inner string) bool {
	return (outer == "a" || outer == "button") && (inner == "img" || inner == "span")
}

func isStackedText(a, b PresentationalElement) bool {
	tagA, tagB := firstTag(a.Selector), firstTag(b.Selector)
	if !isTextTag(tagA) || !isTextTag(tagB) {
		return false
	}
	widthClose := abs(a.Bounds.Width-b.Bounds.Width) < 5
	xClose := abs(a.Bounds.X-b.Bounds.X) < 5
	return widthClose && xClose
}

func isTextTag(tag string) bool {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func isInteractive(tag string) bool {
	switch tag {
	case "a", "button", "input", "select", "textarea":
		return true
	}
	return false
}

func edgesTouch(a, b auditmodel.BoundingBox) bool {
	const tolerance = 2.0
	return abs(a.Right()-b.X) < tolerance || abs(b.Right()-a.X) < tolerance ||
		abs(a.Bottom()-b.Y) < tolerance || abs(b.Bottom()-a.Y) < tolerance
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
