package detectors

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// defaultIgnorePatterns mirrors spec §4.6.6's default ignore list.
var defaultIgnorePatterns = []string{
	"favicon.ico", "robots.txt", "sw.js", "service-worker", "chrome-extension://",
	"moz-extension://", "webpack", "hot-reload", "livereload",
	"googletagmanager", "google-analytics", "gtag", "facebook.net", "doubleclick.net",
}

// ConsoleErrorConfig holds spec §4.6.6's tunables.
type ConsoleErrorConfig struct {
	MaxMessages     int
	IncludeWarnings bool
	IgnorePatterns  []string
}

func DefaultConsoleErrorConfig() ConsoleErrorConfig {
	return ConsoleErrorConfig{
		MaxMessages:     50,
		IncludeWarnings: true,
		IgnorePatterns:  defaultIgnorePatterns,
	}
}

// ConsoleErrorDetector installs console/page-error listeners and
// collects messages for a 1-second window after navigation idle (spec
// §4.6.6). Unlike the other detectors it is stateful across the page's
// lifetime, so BuildDetectors wires its OnConsole/OnPageError hooks onto
// the page before navigation and the analyzer calls Detect after the
// stability wait.
type ConsoleErrorDetector struct {
	Config ConsoleErrorConfig

	mu       sync.Mutex
	messages []browserdriver.ConsoleMessage
}

func NewConsoleErrorDetector(cfg ConsoleErrorConfig) *ConsoleErrorDetector {
	return &ConsoleErrorDetector{Config: cfg}
}

func (d *ConsoleErrorDetector) Name() string { return "console-error" }

// Listener returns the handler to register via Page.OnConsole/OnPageError.
func (d *ConsoleErrorDetector) Listener() func(browserdriver.ConsoleMessage) {
	return func(msg browserdriver.ConsoleMessage) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.messages) >= d.effectiveMaxMessages() {
			return
		}
		d.messages = append(d.messages, msg)
	}
}

func (d *ConsoleErrorDetector) effectiveMaxMessages() int {
	if d.Config.MaxMessages <= 0 {
		return 50
	}
	return d.Config.MaxMessages
}

// Detect waits out the 1-second collection window, then builds issues
// from whatever messages the listener captured.
func (d *ConsoleErrorDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	select {
	case <-time.After(1 * time.Second):
	case <-ctx.Done():
	}

	d.mu.Lock()
	messages := append([]browserdriver.ConsoleMessage{}, d.messages...)
	d.mu.Unlock()

	return ComputeConsoleErrorIssues(messages, d.Config), nil
}

// ComputeConsoleErrorIssues is the pure computation behind Detect.
func ComputeConsoleErrorIssues(messages []browserdriver.ConsoleMessage, cfg ConsoleErrorConfig) []auditmodel.Issue {
	patterns := cfg.IgnorePatterns
	if patterns == nil {
		patterns = defaultIgnorePatterns
	}

	type retained struct {
		msg      browserdriver.ConsoleMessage
		severity auditmodel.Severity
	}
	var kept []retained

	for _, m := range messages {
		isError := m.Type == "error" || m.Type == "pageerror"
		isWarning := m.Type == "warning"
		if !isError && !(isWarning && cfg.IncludeWarnings) {
			continue
		}
		if matchesIgnorePattern(m.Text, patterns) || matchesIgnorePattern(m.SourceURL, patterns) {
			continue
		}
		kept = append(kept, retained{msg: m, severity: consoleSeverity(m.Text, isError)})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return severityRank(kept[i].severity) < severityRank(kept[j].severity)
	})

	issues := make([]auditmodel.Issue, 0, len(kept))
	for _, k := range kept {
		issues = append(issues, auditmodel.Issue{
			Type:     auditmodel.IssueConsoleError,
			Severity: k.severity,
			Message:  k.msg.Text,
		})
	}
	return issues
}

func consoleSeverity(text string, isError bool) auditmodel.Severity {
	lower := strings.ToLower(text)
	if isError {
		switch {
		case containsAny(lower, "syntaxerror", "typeerror", "referenceerror", "uncaught"):
			return auditmodel.SeverityCritical
		case containsAny(lower, "failed to load resource", "404", "net::err"):
			return auditmodel.SeverityMajor
		default:
			return auditmodel.SeverityMajor
		}
	}
	if containsAny(lower, "deprecated", "security", "unsafe") {
		return auditmodel.SeverityMajor
	}
	return auditmodel.SeverityMinor
}

func severityRank(s auditmodel.Severity) int {
	switch s {
	case auditmodel.SeverityMinor:
		return 0
	case auditmodel.SeverityMajor:
		return 1
	default:
		return 2
	}
}

func matchesIgnorePattern(text string, patterns []string) bool {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
