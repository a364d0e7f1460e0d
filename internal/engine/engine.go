// Package engine drives one crawl or multi-URL audit run end to end (spec
// §4.7): it owns the browser driver, the state manager, and the task
// loop that turns queued URLs into AuditResults.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/cache"
	"github.com/nishaddevendra/webauditor/internal/concurrency"
	"github.com/nishaddevendra/webauditor/internal/crawlstate"
	"github.com/nishaddevendra/webauditor/internal/detectors"
	"github.com/nishaddevendra/webauditor/internal/linkextract"
	"github.com/nishaddevendra/webauditor/internal/normalize"
	"github.com/nishaddevendra/webauditor/internal/pagepreparer"
	"github.com/nishaddevendra/webauditor/internal/resilience"
)

// Config bundles everything one Run needs (spec §6's CLI options plus
// crawlstate.Config).
type Config struct {
	Crawl          bool // whether to follow links (spec §6 --crawl)
	Viewport       auditmodel.Viewport
	DetectorNames  []string
	ExitEarly      bool
	RetryCount     int
	RetryBaseDelay time.Duration
	CrawlConfig    crawlstate.Config
}

// Engine orchestrates a crawl over one or more seed URLs (spec §4.7).
type Engine struct {
	Driver     browserdriver.Driver
	Config     Config
	Logger     *slog.Logger
	LinkConfig linkextract.Config
	NavGuard   *resilience.Guard
	// Visited is an optional cross-run cache (spec §10); when set, RunCrawl
	// skips pages already marked visited by a prior run instead of
	// re-auditing them.
	Visited *cache.VisitedCache
}

// New constructs an Engine. A navigation circuit breaker/rate limiter
// (spec §10) is attached so repeated page-load failures against one site
// back off instead of hammering it.
func New(driver browserdriver.Driver, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	linkCfg := linkextract.DefaultConfig()
	linkCfg.IncludeSubdomains = cfg.CrawlConfig.IncludeSubdomains
	linkCfg.ExcludePatterns = cfg.CrawlConfig.ExcludePatterns
	linkCfg.IncludePatterns = cfg.CrawlConfig.IncludePatterns
	guard := resilience.NewGuard(resilience.Settings{Name: "browser-navigate"}, logger)
	return &Engine{Driver: driver, Config: cfg, Logger: logger, LinkConfig: linkCfg, NavGuard: guard}
}

// RunSingle audits a fixed list of URLs with no link following (spec §6's
// --urls mode): each URL is its own depth-0 task, no crawl state queue
// semantics apply beyond the per-URL concurrency cap.
func (e *Engine) RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult {
	controller := concurrency.NewController(max1(e.Config.CrawlConfig.MaxThreads))
	results := make([]auditmodel.AuditResult, 0, len(urls))
	exitedEarly := false

	for _, u := range urls {
		if exitedEarly {
			break
		}
		res, err := e.auditOneWithRetry(ctx, controller, u)
		if err != nil {
			e.Logger.Warn("page-audit-failed", "url", u, "error", err)
			continue
		}
		results = append(results, res)
		if e.Config.ExitEarly && hasCritical(res) {
			exitedEarly = true
		}
	}

	out := auditmodel.NewMultiURLAuditResult(results, exitedEarly)
	return out
}

// RunCrawl performs the BFS crawl loop of spec §4.7: seed, loop while
// ShouldContinue, spawn tasks while HasUrlsToProcess, pause briefly
// otherwise, and assemble a CrawlAuditResult once the state manager
// reports no more work.
func (e *Engine) RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult {
	state := crawlstate.NewStateManager(e.Config.CrawlConfig)
	controller := concurrency.NewController(max1(e.Config.CrawlConfig.MaxThreads))

	base, err := url.Parse(seed)
	if err != nil {
		state.AddError(fmt.Errorf("crawl-failed: invalid seed url %q: %w", seed, err))
		return e.assembleCrawlResult(state, seed, time.Now(), false)
	}
	normalizedSeed, err := normalize.Normalize(seed, base)
	if err != nil {
		state.AddError(fmt.Errorf("crawl-failed: %w", err))
		return e.assembleCrawlResult(state, seed, time.Now(), false)
	}
	state.EnqueueUrl(seed, normalizedSeed, 0, "")

	startTime := time.Now()
	exitedEarly := false

	done := make(chan struct{}, e.Config.CrawlConfig.MaxThreads+1)
	inFlight := 0

	for state.ShouldContinue() {
		if state.Stopped() {
			break
		}
		for state.HasUrlsToProcess() {
			item := state.DequeueUrl()
			if item == nil {
				break
			}
			inFlight++
			go func(item *auditmodel.QueueItem) {
				e.crawlTask(ctx, state, controller, item, &exitedEarly)
				done <- struct{}{}
			}(item)
		}

		if inFlight == 0 {
			pause(ctx, 100*time.Millisecond)
			continue
		}
		select {
		case <-done:
			inFlight--
		case <-ctx.Done():
			state.Stop()
		}
	}

	for inFlight > 0 {
		<-done
		inFlight--
	}

	return e.assembleCrawlResult(state, seed, startTime, exitedEarly)
}

// crawlTask implements spec §4.7.1's per-URL task: prepare the page, run
// the analyzer, extract and enqueue links, then always close the page
// and complete the queue item.
func (e *Engine) crawlTask(ctx context.Context, state *crawlstate.StateManager, controller *concurrency.Controller, item *auditmodel.QueueItem, exitedEarly *bool) {
	startTime := time.Now()
	result := auditmodel.PageResult{
		URL:       item.URL,
		Depth:     item.Depth,
		ParentURL: item.ParentURL,
		Status:    auditmodel.StatusProcessing,
		StartTime: startTime,
	}

	_, err := controller.ExecuteTaskWithRetry(ctx, item.NormalizedURL, func(ctx context.Context) (any, error) {
		return e.processPage(ctx, item, &result, state)
	}, e.effectiveRetryCount(), e.effectiveRetryDelay())

	end := time.Now()
	result.EndTime = &end
	duration := end.Sub(startTime)
	result.Duration = &duration

	if err != nil {
		result.Status = auditmodel.StatusFailed
		result.Error = err.Error()
		state.AddError(fmt.Errorf("page-task-failed: %s: %w", item.NormalizedURL, err))
	} else {
		if result.Status != auditmodel.StatusSkipped {
			result.Status = auditmodel.StatusCompleted
		}
		if e.Config.ExitEarly && result.AuditResult != nil && hasCritical(*result.AuditResult) {
			*exitedEarly = true
			state.Stop()
		}
	}

	state.CompleteUrl(item.NormalizedURL, result)
}

// processPage prepares the page, runs detectors, extracts links and
// enqueues them at depth+1. It always closes the page before returning,
// including on error (spec §4.5's "caller owns the page on success" plus
// spec §4.7.1's "always close page").
func (e *Engine) processPage(ctx context.Context, item *auditmodel.QueueItem, result *auditmodel.PageResult, state *crawlstate.StateManager) (any, error) {
	if e.Visited != nil {
		seen, err := e.Visited.Seen(ctx, item.NormalizedURL)
		if err == nil && seen {
			result.Status = auditmodel.StatusSkipped
			return nil, nil
		}
	}

	page, err := e.Driver.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("page-open-failed: %w", err)
	}

	detectorList, err := detectors.BuildDetectors(page, e.effectiveDetectorNames())
	if err != nil {
		_ = page.Close(ctx)
		return nil, err
	}
	analyzer := detectors.NewAnalyzer(e.Logger, detectorList...)

	// BuildDetectors already wired the console-error detector's listener
	// onto page, so Prepare needs no listener of its own here.
	if err := pagepreparer.Prepare(ctx, page, item.NormalizedURL, e.Config.Viewport.Width, e.Config.Viewport.Height, nil, e.NavGuard); err != nil {
		return nil, fmt.Errorf("page-prepare-failed: %w", err)
	}
	defer page.Close(ctx)

	auditResult := analyzer.Run(ctx, page, item.NormalizedURL, e.Config.Viewport)
	result.AuditResult = &auditResult

	if e.Visited != nil {
		if err := e.Visited.Mark(ctx, item.NormalizedURL); err != nil {
			e.Logger.Warn("cache-write-failed", "url", item.NormalizedURL, "error", err)
		}
	}

	if item.Depth >= e.Config.CrawlConfig.MaxDepth {
		return nil, nil
	}

	links, err := linkextract.Extract(ctx, page, item.NormalizedURL, e.LinkConfig)
	if err != nil {
		e.Logger.Warn("link-extraction-failed", "url", item.NormalizedURL, "error", err)
		zero := 0
		result.LinksFound = &zero
		return nil, nil
	}

	count := len(links)
	result.LinksFound = &count
	for _, link := range links {
		state.EnqueueUrl(link.URL, link.NormalizedURL, item.Depth+1, item.NormalizedURL)
	}

	return nil, nil
}

func (e *Engine) auditOneWithRetry(ctx context.Context, controller *concurrency.Controller, rawURL string) (auditmodel.AuditResult, error) {
	out, err := controller.ExecuteTaskWithRetry(ctx, rawURL, func(ctx context.Context) (any, error) {
		return e.auditOne(ctx, rawURL)
	}, e.effectiveRetryCount(), e.effectiveRetryDelay())
	if err != nil {
		return auditmodel.AuditResult{}, err
	}
	return out.(auditmodel.AuditResult), nil
}

func (e *Engine) auditOne(ctx context.Context, rawURL string) (auditmodel.AuditResult, error) {
	page, err := e.Driver.OpenPage(ctx)
	if err != nil {
		return auditmodel.AuditResult{}, fmt.Errorf("page-open-failed: %w", err)
	}

	detectorList, err := detectors.BuildDetectors(page, e.effectiveDetectorNames())
	if err != nil {
		_ = page.Close(ctx)
		return auditmodel.AuditResult{}, err
	}
	analyzer := detectors.NewAnalyzer(e.Logger, detectorList...)

	if err := pagepreparer.Prepare(ctx, page, rawURL, e.Config.Viewport.Width, e.Config.Viewport.Height, nil, e.NavGuard); err != nil {
		return auditmodel.AuditResult{}, fmt.Errorf("page-prepare-failed: %w", err)
	}
	defer page.Close(ctx)

	return analyzer.Run(ctx, page, rawURL, e.Config.Viewport), nil
}

func (e *Engine) assembleCrawlResult(state *crawlstate.StateManager, seed string, startTime time.Time, exitedEarly bool) auditmodel.MultiURLAuditResult {
	pageResults := state.Results()
	results := make([]auditmodel.AuditResult, 0, len(pageResults))
	for _, pr := range pageResults {
		if pr.AuditResult != nil {
			results = append(results, *pr.AuditResult)
		}
	}

	out := auditmodel.NewMultiURLAuditResult(results, exitedEarly)
	stats := state.GetStats(seed)

	out.CrawlMetadata = &auditmodel.CrawlMetadata{
		StartURL:             seed,
		MaxDepthReached:      stats.MaxDepthReached,
		TotalPagesDiscovered: stats.TotalDiscovered,
		PagesSkipped:         stats.PagesSkipped,
		CrawlDuration:        time.Since(startTime),
		AveragePageTime:      stats.AveragePageTime,
		SuccessfulPages:      stats.SuccessfulPages,
		FailedPages:          stats.FailedPages,
	}
	return out
}

func (e *Engine) effectiveDetectorNames() []string {
	if len(e.Config.DetectorNames) > 0 {
		return e.Config.DetectorNames
	}
	return auditmodel.DefaultDetectorNames
}

func (e *Engine) effectiveRetryCount() int {
	if e.Config.RetryCount > 0 {
		return e.Config.RetryCount
	}
	return 2
}

func (e *Engine) effectiveRetryDelay() time.Duration {
	if e.Config.RetryBaseDelay > 0 {
		return e.Config.RetryBaseDelay
	}
	return 500 * time.Millisecond
}

func hasCritical(res auditmodel.AuditResult) bool {
	return res.Metadata.CriticalIssues > 0
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
