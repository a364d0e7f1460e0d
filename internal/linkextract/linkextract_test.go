package linkextract

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// fakePage is a minimal browserdriver.Page stub that returns a canned
// evaluation result, used to test Extract without a real browser (the
// teacher's crawler_js_test.go skips instead; here the driver surface is
// narrow enough to fake directly).
type fakePage struct {
	evalResult any
}

func (f *fakePage) Navigate(ctx context.Context, url string) (*browserdriver.NavigationResult, error) {
	return &browserdriver.NavigationResult{OK: true, StatusCode: 200}, nil
}
func (f *fakePage) WaitIdle(ctx context.Context, timeout time.Duration) error { return nil }
func (f *fakePage) SetViewport(ctx context.Context, w, h int) error           { return nil }
func (f *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	b, err := json.Marshal(f.evalResult)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
func (f *fakePage) ScrollTo(ctx context.Context, y float64) error       { return nil }
func (f *fakePage) OnConsole(handler func(browserdriver.ConsoleMessage)) {}
func (f *fakePage) OnPageError(handler func(error))                     {}
func (f *fakePage) Close(ctx context.Context) error                     { return nil }

func TestExtract_FiltersAndDedupes(t *testing.T) {
	page := &fakePage{evalResult: []rawLink{
		{Href: "/about", Text: "About"},
		{Href: "/about", Text: "About again"},
		{Href: "https://external.com/x", Text: "External"},
		{Href: "/logo.png", Text: "logo"},
		{Href: "/api/users", Text: "api"},
		{Href: "/contact?utm_source=foo", Text: "Contact"},
	}}

	links, err := Extract(context.Background(), page, "https://example.com/home", DefaultConfig())
	require.NoError(t, err)

	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.NormalizedURL)
	}
	assert.Equal(t, []string{"https://example.com/about", "https://example.com/contact"}, urls)
}

func TestExtract_FailsWhenOverMaxLinks(t *testing.T) {
	raws := make([]rawLink, 3)
	for i := range raws {
		raws[i] = rawLink{Href: "/a", Text: "a"}
	}
	page := &fakePage{evalResult: raws}
	cfg := DefaultConfig()
	cfg.MaxLinksPerPage = 2

	_, err := Extract(context.Background(), page, "https://example.com/", cfg)
	assert.Error(t, err)
}

func TestExtract_ExcludeAndIncludePatterns(t *testing.T) {
	page := &fakePage{evalResult: []rawLink{
		{Href: "/blog/post-1", Text: "post"},
		{Href: "/blog/archive", Text: "archive"},
	}}
	cfg := DefaultConfig()
	cfg.ExcludePatterns = []string{"archive"}

	links, err := Extract(context.Background(), page, "https://example.com/", cfg)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/blog/post-1", links[0].NormalizedURL)
}
