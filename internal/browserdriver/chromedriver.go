package browserdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 webauditor"

// networkIdleScript mirrors the teacher's waitForNetworkIdle: a
// PerformanceObserver-based idle probe run in page context rather than
// tracked through CDP network events, so it also works for navigations
// that started before the listener attached.
const networkIdleScript = `(function(waitMs){
  return new Promise((resolve)=>{
    if (!('PerformanceObserver' in window)) { setTimeout(resolve, waitMs); return; }
    let last = Date.now();
    const obs = new PerformanceObserver(()=>{ last = Date.now(); });
    try { obs.observe({entryTypes:['resource','navigation']}); } catch(e) {}
    const tick = () => {
      if (Date.now()-last >= waitMs) { try { obs.disconnect(); } catch(e){} resolve(true); return; }
      setTimeout(tick, 100);
    };
    tick();
  });
})(%d)`

// ChromeDriver is the chromedp-backed Driver implementation (spec §10,
// grounded on internal/crawler/crawler.go's renderPageHTML).
type ChromeDriver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeDriver launches a headless Chrome allocator. Callers must call
// Close to release the underlying process.
func NewChromeDriver(ctx context.Context) (*ChromeDriver, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.UserAgent(defaultUserAgent),
		)...,
	)
	return &ChromeDriver{allocCtx: allocCtx, allocCancel: allocCancel}, nil
}

func (d *ChromeDriver) OpenPage(ctx context.Context) (Page, error) {
	browserCtx, cancel := chromedp.NewContext(d.allocCtx)
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(context.Context) error { return nil })); err != nil {
		cancel()
		return nil, fmt.Errorf("browser-launch-failed: %w", err)
	}
	return &chromePage{ctx: browserCtx, cancel: cancel}, nil
}

func (d *ChromeDriver) Close(ctx context.Context) error {
	d.allocCancel()
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc

	consoleHandlers   []func(ConsoleMessage)
	pageErrorHandlers []func(error)
	listening         bool
}

func (p *chromePage) Navigate(ctx context.Context, url string) (*NavigationResult, error) {
	result := &NavigationResult{}
	var status int64
	var statusText string

	chromedp.ListenTarget(p.ctx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			status = resp.Response.Status
			statusText = resp.Response.StatusText
		}
	})

	err := chromedp.Run(p.ctx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("page-load-failed: %w", err)
	}

	waitCtx, waitCancel := context.WithTimeout(p.ctx, 10*time.Second)
	defer waitCancel()
	_ = chromedp.Run(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery))

	result.StatusCode = int(status)
	result.StatusText = statusText
	result.OK = status == 0 || (status >= 200 && status < 400)
	return result, nil
}

func (p *chromePage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	idleCap := timeout
	if idleCap > 5*time.Second {
		idleCap = 5 * time.Second
	}
	stepCtx, cancel := context.WithTimeout(p.ctx, idleCap+time.Second)
	defer cancel()
	script := fmt.Sprintf(networkIdleScript, int(idleCap.Milliseconds()))
	var ok bool
	// Best effort: a timed-out or erroring idle probe is not fatal, the
	// page preparer treats it as "idle enough" (spec §4.5).
	_ = chromedp.Run(stepCtx, chromedp.Evaluate(script, &ok))
	return nil
}

func (p *chromePage) SetViewport(ctx context.Context, width, height int) error {
	if err := chromedp.Run(p.ctx, chromedp.EmulateViewport(int64(width), int64(height))); err != nil {
		return fmt.Errorf("script-eval-failed: set viewport: %w", err)
	}
	return nil
}

func (p *chromePage) Evaluate(ctx context.Context, script string, out any) error {
	var raw json.RawMessage
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &raw, withAwaitPromise)); err != nil {
		return fmt.Errorf("script-eval-failed: %w", err)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("script-eval-failed: decode result: %w", err)
	}
	return nil
}

func withAwaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true).WithReturnByValue(true)
}

func (p *chromePage) ScrollTo(ctx context.Context, y float64) error {
	script := fmt.Sprintf("window.scrollTo(0, %f);", y)
	return chromedp.Run(p.ctx, chromedp.Evaluate(script, nil))
}

func (p *chromePage) OnConsole(handler func(ConsoleMessage)) {
	p.consoleHandlers = append(p.consoleHandlers, handler)
	p.ensureListening()
}

func (p *chromePage) OnPageError(handler func(error)) {
	p.pageErrorHandlers = append(p.pageErrorHandlers, handler)
	p.ensureListening()
}

func (p *chromePage) ensureListening() {
	if p.listening {
		return
	}
	p.listening = true
	chromedp.ListenTarget(p.ctx, func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			text := ""
			for _, a := range e.Args {
				text += string(a.Value) + " "
			}
			msg := ConsoleMessage{Type: string(e.Type), Text: text, Timestamp: time.Now()}
			for _, h := range p.consoleHandlers {
				h(msg)
			}
		case *runtime.EventExceptionThrown:
			err := fmt.Errorf("%s", e.ExceptionDetails.Text)
			for _, h := range p.pageErrorHandlers {
				h(err)
			}
		}
	})
}

func (p *chromePage) Close(ctx context.Context) error {
	p.cancel()
	return nil
}
