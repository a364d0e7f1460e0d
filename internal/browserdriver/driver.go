// Package browserdriver defines the headless-browser contract the rest of
// the auditor depends on (Driver/Page) and ships one concrete
// implementation, ChromeDriver, backed by github.com/chromedp/chromedp.
//
// Detectors, the page preparer, and the crawl engine depend only on the
// interfaces in this file; chromedp is imported nowhere else in the module.
package browserdriver

import (
	"context"
	"time"
)

// ConsoleMessage is one console/page-error event observed on a Page.
type ConsoleMessage struct {
	Type      string // "log", "warning", "error", "pageerror"
	Text      string
	SourceURL string
	Timestamp time.Time
}

// NavigationResult is what Navigate reports about the response it
// produced, used by the page preparer to fail fast on a non-ok response.
type NavigationResult struct {
	OK         bool
	StatusCode int
	StatusText string
}

// Driver opens Pages against one underlying browser instance. A Driver is
// safe for concurrent OpenPage calls; each returned Page is owned
// exclusively by its caller.
type Driver interface {
	OpenPage(ctx context.Context) (Page, error)
	Close(ctx context.Context) error
}

// Page is a single browser tab. The spec's minimal contract is
// SetViewport/Evaluate/OnConsole/OnPageError/Close; Navigate and WaitIdle
// are added here because the page preparer (spec §4.5) requires
// navigate-with-idle-wait and a standalone idle probe during the
// stability wait, and no narrower signature expresses that.
type Page interface {
	// Navigate loads url and waits for the main document response.
	Navigate(ctx context.Context, url string) (*NavigationResult, error)
	// WaitIdle blocks until no network activity has been observed for a
	// continuous window, or timeout elapses (best effort, never an error
	// on timeout — callers treat it as "idle enough").
	WaitIdle(ctx context.Context, timeout time.Duration) error
	SetViewport(ctx context.Context, width, height int) error
	// Evaluate runs script in page context and decodes its JSON result
	// into out (a pointer), or does nothing if out is nil.
	Evaluate(ctx context.Context, script string, out any) error
	// ScrollTo scrolls the page to the given vertical offset.
	ScrollTo(ctx context.Context, y float64) error
	OnConsole(handler func(ConsoleMessage))
	OnPageError(handler func(err error))
	Close(ctx context.Context) error
}
