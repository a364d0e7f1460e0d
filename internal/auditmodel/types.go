// Package auditmodel holds the data shapes shared by the crawler, the
// detectors, and the analyzer: URLs, queue items, page results, issues,
// and the single- and multi-URL audit result wrappers.
package auditmodel

import "time"

// Severity grades an Issue. Invariant (spec §8.4): every Issue's severity
// is one of these three values.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// IssueType is the detector that produced an Issue.
type IssueType string

const (
	IssueOverlap            IssueType = "overlap"
	IssuePadding            IssueType = "padding"
	IssueSpacing            IssueType = "spacing"
	IssueContainerOverflow  IssueType = "container-overflow"
	IssueScrollbar          IssueType = "scrollbar"
	IssueLayout             IssueType = "layout"
	IssueCentering          IssueType = "centering"
	IssueConsoleError       IssueType = "console-error"
)

// KnownIssueTypes is the full kind vocabulary (spec §3/§6's issuesByType map).
var KnownIssueTypes = []IssueType{
	IssueOverlap, IssuePadding, IssueSpacing, IssueContainerOverflow,
	IssueScrollbar, IssueLayout, IssueCentering, IssueConsoleError,
}

// KnownDetectorNames is the CLI's --detectors vocabulary (spec §6).
var KnownDetectorNames = []string{
	"overlap", "padding", "spacing", "container-overflow",
	"scrollbar", "flex-grid", "centering", "console-error",
}

// DefaultDetectorNames are the detectors run when --detectors is not given.
// "centering" is excluded per spec §6 ("disabled by default").
var DefaultDetectorNames = []string{
	"overlap", "spacing", "container-overflow", "scrollbar", "flex-grid", "console-error",
}

// BoundingBox is an axis-aligned rectangle in viewport or document
// coordinates, as noted by the caller. Immutable value type.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Area() float64 { return b.Width * b.Height }

func (b BoundingBox) Right() float64  { return b.X + b.Width }
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

// Intersect returns the AABB intersection of b and o, and whether it is
// non-empty.
func (b BoundingBox) Intersect(o BoundingBox) (BoundingBox, bool) {
	left := max(b.X, o.X)
	top := max(b.Y, o.Y)
	right := min(b.Right(), o.Right())
	bottom := min(b.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return BoundingBox{}, false
	}
	return BoundingBox{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}

// ElementLocation identifies one affected element within an Issue.
type ElementLocation struct {
	Selector    string      `json:"selector"`
	Bounds      BoundingBox `json:"bounds"`
	TextContent string      `json:"textContent,omitempty"`
}

// OverlapArea describes the overlap §4.6.1 computes between two elements.
type OverlapArea struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Percentage float64 `json:"percentage"`
}

// OverflowAmount carries the four distances §4.6.2 computes.
type OverflowAmount struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Issue is the tagged-variant issue record of spec §3. Rather than a sum
// type, kind-specific fields are carried as optional (omitempty) members —
// Go's idiomatic substitute for the source's tagged union (spec §9).
type Issue struct {
	Type     IssueType    `json:"type"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
	Elements []ElementLocation `json:"elements"`

	OverlapArea      *OverlapArea    `json:"overlapArea,omitempty"`
	OverflowAmount   *OverflowAmount `json:"overflowAmount,omitempty"`
	ActualSpacing    *float64        `json:"actualSpacing,omitempty"`
	RecommendedSpacing *float64      `json:"recommendedSpacing,omitempty"`
	ScrollbarOverflow  *float64      `json:"scrollbarOverflow,omitempty"`
	CausingSelector    string        `json:"causingSelector,omitempty"`
}

// Viewport is the rendered viewport size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AuditMetadata summarizes an Issue list (spec §3, invariant spec §8.4).
type AuditMetadata struct {
	TotalIssuesFound int                 `json:"totalIssuesFound"`
	CriticalIssues   int                 `json:"criticalIssues"`
	MajorIssues      int                 `json:"majorIssues"`
	MinorIssues      int                 `json:"minorIssues"`
	IssuesByType     map[IssueType]int   `json:"issuesByType"`
}

// NewAuditMetadata partitions issues by severity and by type.
func NewAuditMetadata(issues []Issue) AuditMetadata {
	meta := AuditMetadata{IssuesByType: map[IssueType]int{}}
	for _, t := range KnownIssueTypes {
		meta.IssuesByType[t] = 0
	}
	for _, iss := range issues {
		meta.TotalIssuesFound++
		switch iss.Severity {
		case SeverityCritical:
			meta.CriticalIssues++
		case SeverityMajor:
			meta.MajorIssues++
		default:
			meta.MinorIssues++
		}
		meta.IssuesByType[iss.Type]++
	}
	return meta
}

// AuditResult is the per-URL result (spec §3/§6).
type AuditResult struct {
	URL       string        `json:"url"`
	Timestamp time.Time     `json:"timestamp"`
	Viewport  Viewport      `json:"viewport"`
	Issues    []Issue       `json:"issues"`
	Metadata  AuditMetadata `json:"metadata"`
}

// NewAuditResult builds a result with metadata derived from issues.
func NewAuditResult(url string, viewport Viewport, issues []Issue) AuditResult {
	if issues == nil {
		issues = []Issue{}
	}
	return AuditResult{
		URL:       url,
		Timestamp: time.Now().UTC(),
		Viewport:  viewport,
		Issues:    issues,
		Metadata:  NewAuditMetadata(issues),
	}
}

// CrawlMetadata is the crawl-specific tail of a CrawlAuditResult (spec §6).
type CrawlMetadata struct {
	StartURL             string        `json:"startUrl"`
	MaxDepthReached       int           `json:"maxDepthReached"`
	TotalPagesDiscovered  int           `json:"totalPagesDiscovered"`
	PagesSkipped          int           `json:"pagesSkipped"`
	CrawlDuration         time.Duration `json:"crawlDuration"`
	AveragePageTime       time.Duration `json:"averagePageTime"`
	SuccessfulPages       int           `json:"successfulPages"`
	FailedPages           int           `json:"failedPages"`
}

// MultiURLAuditResult wraps many AuditResults with an aggregate summary
// (spec §3/§6). CrawlMetadata is only populated for crawl-mode runs.
type MultiURLAuditResult struct {
	Results       []AuditResult  `json:"results"`
	Summary       AuditMetadata  `json:"summary"`
	ExitedEarly   bool           `json:"exitedEarly,omitempty"`
	CrawlMetadata *CrawlMetadata `json:"crawlMetadata,omitempty"`
}

// NewMultiURLAuditResult aggregates per-URL results into one summary.
func NewMultiURLAuditResult(results []AuditResult, exitedEarly bool) MultiURLAuditResult {
	all := make([]Issue, 0)
	for _, r := range results {
		all = append(all, r.Issues...)
	}
	if results == nil {
		results = []AuditResult{}
	}
	out := MultiURLAuditResult{
		Results: results,
		Summary: NewAuditMetadata(all),
	}
	if exitedEarly {
		out.ExitedEarly = true
	}
	return out
}

// PageStatus is a PageResult's lifecycle state (spec §3).
type PageStatus string

const (
	StatusPending    PageStatus = "pending"
	StatusProcessing PageStatus = "processing"
	StatusCompleted  PageStatus = "completed"
	StatusFailed     PageStatus = "failed"
	StatusSkipped    PageStatus = "skipped"
)

// PageResult is one completed (or failed/skipped) crawl item (spec §3).
type PageResult struct {
	URL           string         `json:"url"`
	NormalizedURL string         `json:"normalizedUrl"`
	Depth         int            `json:"depth"`
	ParentURL     string         `json:"parentUrl,omitempty"`
	Status        PageStatus     `json:"status"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       *time.Time     `json:"endTime,omitempty"`
	Duration      *time.Duration `json:"duration,omitempty"`
	Error         string         `json:"error,omitempty"`
	LinksFound    *int           `json:"linksFound,omitempty"`
	AuditResult   *AuditResult   `json:"auditResult,omitempty"`
}

// QueueItem is a URL awaiting processing (spec §3).
type QueueItem struct {
	URL           string
	NormalizedURL string
	Depth         int
	ParentURL     string
	DiscoveredAt  int64 // monotonic logical clock, not wall time (see crawlstate's nextDiscoveredAt)
}

// CrawlStats is what StateManager.GetStats derives from completed results
// (spec §4.4).
type CrawlStats struct {
	StartURL        string
	SuccessfulPages int
	FailedPages     int
	TotalLinks      int
	MaxDepthReached int
	AveragePageTime time.Duration
	UniqueLinks     int
	TotalDiscovered int
	PagesSkipped    int
	Stopped         bool
}
