package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/crawlstate"
	"github.com/nishaddevendra/webauditor/internal/engine"
)

var viewportPresets = map[string]auditmodel.Viewport{
	"desktop": {Width: 1920, Height: 1080},
	"tablet":  {Width: 768, Height: 1024},
	"mobile":  {Width: 375, Height: 667},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements spec §6's CLI surface; it never calls os.Exit itself so
// it stays testable.
func run(args []string) int {
	fs := flag.NewFlagSet("webauditor", flag.ContinueOnError)

	var (
		singleURL     string
		urlsRaw       string
		viewportRaw   string
		format        string
		savePath      string
		exitEarly     bool
		detectorsRaw  string
		verbose       bool
		crawl         bool
		maxDepth      int
		maxPages      int
		maxThreads    int
	)

	fs.StringVar(&singleURL, "url", "", "single URL to audit (exclusive with --urls)")
	fs.StringVar(&urlsRaw, "urls", "", "space-separated list of URLs to audit")
	fs.StringVar(&viewportRaw, "viewport", "desktop", "desktop, tablet, mobile, or WxH")
	fs.StringVar(&format, "format", "json", "output format (only json accepted)")
	fs.StringVar(&savePath, "save", "", "write result JSON to this path instead of stdout")
	fs.BoolVar(&exitEarly, "exit-early", false, "stop on first critical issue")
	fs.StringVar(&detectorsRaw, "detectors", "", "comma/space-separated detector names")
	fs.BoolVar(&verbose, "verbose", false, "verbose logging")
	fs.BoolVar(&crawl, "crawl", false, "enable crawl mode (requires exactly one URL)")
	fs.IntVar(&maxDepth, "max-depth", 3, "maximum crawl depth (1-10)")
	fs.IntVar(&maxPages, "max-pages", 50, "maximum pages to audit (1-1000)")
	fs.IntVar(&maxThreads, "max-threads", 3, "maximum concurrent page audits (1-10)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := newLogger(verbose)

	urls, detectorNames, viewport, err := validateArgs(singleURL, urlsRaw, viewportRaw, format, detectorsRaw, crawl, maxDepth, maxPages, maxThreads)
	if err != nil {
		logger.Error("config-invalid", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	driver, err := browserdriver.NewChromeDriver(ctx)
	if err != nil {
		logger.Error("browser-launch-failed", "error", err)
		return 1
	}
	defer driver.Close(context.Background())

	cfg := engine.Config{
		Crawl:          crawl,
		Viewport:       viewport,
		DetectorNames:  detectorNames,
		ExitEarly:      exitEarly,
		RetryCount:     2,
		RetryBaseDelay: 500 * time.Millisecond,
		CrawlConfig: crawlstate.Config{
			MaxDepth:   maxDepth,
			MaxPages:   maxPages,
			MaxThreads: maxThreads,
		},
	}
	eng := engine.New(driver, cfg, logger)

	var result auditmodel.MultiURLAuditResult
	if crawl {
		result = eng.RunCrawl(ctx, urls[0])
	} else {
		result = eng.RunSingle(ctx, urls)
	}

	if err := writeOutput(result, len(urls) == 1 && !crawl, savePath); err != nil {
		logger.Error("output-write-failed", "error", err)
		return 1
	}

	return 0
}

// validateArgs applies spec §6/§8's CLI validation rules and resolves the
// final url list, detector set, and viewport.
func validateArgs(singleURL, urlsRaw, viewportRaw, format, detectorsRaw string, crawl bool, maxDepth, maxPages, maxThreads int) ([]string, []string, auditmodel.Viewport, error) {
	if singleURL != "" && urlsRaw != "" {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: exactly one of --url or --urls is required")
	}
	if singleURL == "" && urlsRaw == "" {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: one of --url or --urls is required")
	}

	var urls []string
	if singleURL != "" {
		urls = []string{singleURL}
	} else {
		urls = splitFields(urlsRaw)
	}
	if len(urls) == 0 {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: no URLs provided")
	}

	if crawl && len(urls) != 1 {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: Crawling mode only supports a single starting URL")
	}

	if format != "json" {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: unsupported format %q, only \"json\" accepted", format)
	}

	if maxDepth < 1 || maxDepth > 10 {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: max-depth must be 1-10, got %d", maxDepth)
	}
	if maxPages < 1 || maxPages > 1000 {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: max-pages must be 1-1000, got %d", maxPages)
	}
	if maxThreads < 1 || maxThreads > 10 {
		return nil, nil, auditmodel.Viewport{}, fmt.Errorf("config-invalid: max-threads must be 1-10, got %d", maxThreads)
	}

	viewport, err := parseViewport(viewportRaw)
	if err != nil {
		return nil, nil, auditmodel.Viewport{}, err
	}

	detectorNames, err := parseDetectors(detectorsRaw)
	if err != nil {
		return nil, nil, auditmodel.Viewport{}, err
	}

	return urls, detectorNames, viewport, nil
}

func parseViewport(raw string) (auditmodel.Viewport, error) {
	if preset, ok := viewportPresets[raw]; ok {
		return preset, nil
	}

	parts := strings.SplitN(raw, "x", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(raw, "X", 2)
	}
	if len(parts) != 2 {
		return auditmodel.Viewport{}, fmt.Errorf("config-invalid: unrecognized --viewport %q (want desktop|tablet|mobile|WxH)", raw)
	}

	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w < 0 || h < 0 {
		return auditmodel.Viewport{}, fmt.Errorf("config-invalid: unrecognized --viewport %q (want desktop|tablet|mobile|WxH)", raw)
	}
	return auditmodel.Viewport{Width: w, Height: h}, nil
}

// parseDetectors applies spec §8 scenario 3's comma/space/empty-token
// tolerant split, rejecting any name outside the known set.
func parseDetectors(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	known := make(map[string]struct{}, len(auditmodel.KnownDetectorNames))
	for _, n := range auditmodel.KnownDetectorNames {
		known[n] = struct{}{}
	}

	var names []string
	for _, tok := range splitFields(strings.ReplaceAll(raw, ",", " ")) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, ok := known[tok]; !ok {
			return nil, fmt.Errorf("config-invalid: unknown detector %q, known detectors: %s", tok, strings.Join(auditmodel.KnownDetectorNames, ", "))
		}
		names = append(names, tok)
	}
	return names, nil
}

func splitFields(s string) []string {
	return strings.Fields(s)
}

func writeOutput(result auditmodel.MultiURLAuditResult, single bool, savePath string) error {
	var payload any = result
	if single && len(result.Results) == 1 {
		payload = result.Results[0]
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("output-write-failed: %w", err)
	}
	data = append(data, '\n')

	if savePath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(savePath, data, 0o644)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || os.Getenv("VERBOSE_LOGGING") != "" || os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
