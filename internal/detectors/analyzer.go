package detectors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// Analyzer runs an ordered list of detectors against one prepared page
// and aggregates their issues into an AuditResult (spec §4.6.7).
type Analyzer struct {
	Detectors []Detector
	Logger    *slog.Logger
}

// NewAnalyzer constructs an Analyzer over the given detectors, run in
// the order given (spec §4.6: "run order is stable").
func NewAnalyzer(logger *slog.Logger, detectors ...Detector) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{Detectors: detectors, Logger: logger}
}

// Run executes every configured detector, concatenating their issues. A
// detector error is logged and does not abort the remaining detectors
// (spec §7: "detector errors inside a page are logged ... the remaining
// detectors continue").
func (a *Analyzer) Run(ctx context.Context, page browserdriver.Page, url string, viewport auditmodel.Viewport) auditmodel.AuditResult {
	var allIssues []auditmodel.Issue

	for _, d := range a.Detectors {
		issues, err := d.Detect(ctx, page)
		if err != nil {
			a.Logger.Warn("detector-failed", "detector", d.Name(), "url", url, "error", err)
			continue
		}
		allIssues = append(allIssues, issues...)
	}

	return auditmodel.NewAuditResult(url, viewport, allIssues)
}

// BuildDetectors resolves the known detector names (spec §6) into
// Detector instances with default configuration, wiring the
// console-error detector's listener onto page beforehand.
func BuildDetectors(page browserdriver.Page, names []string) ([]Detector, error) {
	known := map[string]struct{}{}
	for _, n := range auditmodel.KnownDetectorNames {
		known[n] = struct{}{}
	}

	detectors := make([]Detector, 0, len(names))
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("config-invalid: unknown detector %q (known: %v)", name, auditmodel.KnownDetectorNames)
		}

		switch name {
		case "overlap":
			detectors = append(detectors, NewOverlapDetector(DefaultOverlapConfig()))
		case "padding":
			// padding is emitted by the spacing detector (SPEC_FULL §11);
			// requesting it alone still runs spacing so the bucket is
			// reachable.
			detectors = append(detectors, NewSpacingDetector(DefaultSpacingConfig()))
		case "spacing":
			detectors = append(detectors, NewSpacingDetector(DefaultSpacingConfig()))
		case "container-overflow":
			detectors = append(detectors, NewContainerOverflowDetector(DefaultContainerOverflowConfig()))
		case "scrollbar":
			detectors = append(detectors, NewScrollbarDetector(ScrollbarConfig{}))
		case "flex-grid":
			detectors = append(detectors, NewFlexGridDetector(DefaultFlexGridConfig()))
		case "centering":
			detectors = append(detectors, NewCenteringDetector(DefaultCenteringConfig()))
		case "console-error":
			ce := NewConsoleErrorDetector(DefaultConsoleErrorConfig())
			page.OnConsole(ce.Listener())
			page.OnPageError(func(err error) {
				ce.Listener()(browserdriver.ConsoleMessage{Type: "pageerror", Text: err.Error()})
			})
			detectors = append(detectors, ce)
		}
	}
	return detectors, nil
}
