// Package pagepreparer implements the single-URL page-preparation
// pipeline of spec §4.5: navigate, set viewport, scroll sweep, and a
// stability wait before detectors are allowed to run.
package pagepreparer

import (
	"context"
	"fmt"
	"time"

	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/resilience"
)

const navigateTimeout = 30 * time.Second

// animationProbeScript detects in-progress CSS animations/transitions so
// the stability wait can add extra settle time (spec §4.5).
const animationProbeScript = `(function(){
  const els = document.querySelectorAll('*');
  for (const el of els) {
    const cs = getComputedStyle(el);
    if (cs.animationName && cs.animationName !== 'none') return true;
    if (cs.transitionProperty && cs.transitionProperty !== 'none' && cs.transitionDuration !== '0s') return true;
    if (el.className && typeof el.className === 'string' && el.className.indexOf('animate-') !== -1) return true;
    if (el.hasAttribute && el.hasAttribute('data-framer-motion')) return true;
  }
  return false;
})()`

const scrollMetricsScript = `(function(){
  return JSON.stringify({
    scrollHeight: document.body.scrollHeight,
    innerHeight: window.innerHeight
  });
})()`

// Prepare runs the pipeline for one URL against an already-opened page,
// closing the page on any failure after it was opened (spec §4.5). On
// success the page stays open and the caller must close it. When guard
// is non-nil, the Navigate call runs through its circuit breaker and rate
// limiter (spec §10) instead of being called directly.
func Prepare(ctx context.Context, page browserdriver.Page, url string, viewportW, viewportH int, consoleListener func(browserdriver.ConsoleMessage), guard *resilience.Guard) error {
	if consoleListener != nil {
		page.OnConsole(consoleListener)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	result, err := navigate(navCtx, page, url, guard)
	if err != nil {
		_ = page.Close(ctx)
		return fmt.Errorf("page-load-failed: %w", err)
	}
	if result == nil || !result.OK {
		_ = page.Close(ctx)
		status := 0
		if result != nil {
			status = result.StatusCode
		}
		return fmt.Errorf("page-load-failed: non-ok response (status %d)", status)
	}

	if err := page.WaitIdle(ctx, navigateTimeout); err != nil {
		_ = page.Close(ctx)
		return fmt.Errorf("page-unresponsive: %w", err)
	}

	if err := page.SetViewport(ctx, viewportW, viewportH); err != nil {
		_ = page.Close(ctx)
		return fmt.Errorf("page-unresponsive: set viewport: %w", err)
	}

	if err := scrollSweep(ctx, page); err != nil {
		_ = page.Close(ctx)
		return err
	}

	if err := stabilityWait(ctx, page); err != nil {
		_ = page.Close(ctx)
		return err
	}

	return nil
}

// navigate calls page.Navigate directly, or through guard when one is
// configured; a tripped breaker surfaces as page-load-failed rather than
// hammering a dead site with further navigations.
func navigate(ctx context.Context, page browserdriver.Page, url string, guard *resilience.Guard) (*browserdriver.NavigationResult, error) {
	if guard == nil {
		return page.Navigate(ctx, url)
	}
	out, err := guard.Do(ctx, func(ctx context.Context) (any, error) {
		return page.Navigate(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	result, _ := out.(*browserdriver.NavigationResult)
	return result, nil
}

type scrollMetrics struct {
	ScrollHeight float64 `json:"scrollHeight"`
	InnerHeight  float64 `json:"innerHeight"`
}

// scrollSweep triggers lazy-loaded content by scrolling to 0, h/2, h, ...
// with a 200ms pause between steps, then scrolls back to top (spec §4.5).
func scrollSweep(ctx context.Context, page browserdriver.Page) error {
	var metrics scrollMetrics
	if err := page.Evaluate(ctx, scrollMetricsScript, &metrics); err != nil {
		return fmt.Errorf("script-eval-failed: scroll metrics: %w", err)
	}

	h := metrics.InnerHeight
	if h <= 0 {
		h = 800
	}

	for y := 0.0; y < metrics.ScrollHeight; y += h / 2 {
		if err := page.ScrollTo(ctx, y); err != nil {
			return fmt.Errorf("page-unresponsive: scroll sweep: %w", err)
		}
		pause(ctx, 200*time.Millisecond)
	}

	if err := page.ScrollTo(ctx, 0); err != nil {
		return fmt.Errorf("page-unresponsive: scroll back to top: %w", err)
	}
	return nil
}

// stabilityWait waits for network-idle, settles animations, and scrolls
// back to the top before returning control to the detectors (spec §4.5).
func stabilityWait(ctx context.Context, page browserdriver.Page) error {
	if err := page.WaitIdle(ctx, navigateTimeout); err != nil {
		return fmt.Errorf("page-unresponsive: %w", err)
	}
	pause(ctx, 500*time.Millisecond)
	pause(ctx, 2000*time.Millisecond)

	var animating bool
	if err := page.Evaluate(ctx, animationProbeScript, &animating); err == nil && animating {
		pause(ctx, 1000*time.Millisecond)
	}

	if err := page.ScrollTo(ctx, 0); err != nil {
		return fmt.Errorf("page-unresponsive: final scroll to top: %w", err)
	}
	pause(ctx, 300*time.Millisecond)
	return nil
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
