package pagepreparer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

type fakePage struct {
	navResult   *browserdriver.NavigationResult
	navErr      error
	evalResults map[string]any
	closed      bool
	scrolls     []float64
}

func (f *fakePage) Navigate(ctx context.Context, url string) (*browserdriver.NavigationResult, error) {
	return f.navResult, f.navErr
}
func (f *fakePage) WaitIdle(ctx context.Context, timeout time.Duration) error { return nil }
func (f *fakePage) SetViewport(ctx context.Context, w, h int) error           { return nil }
func (f *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	for key, val := range f.evalResults {
		if containsSubstr(script, key) {
			b, _ := json.Marshal(val)
			return json.Unmarshal(b, out)
		}
	}
	return nil
}
func (f *fakePage) ScrollTo(ctx context.Context, y float64) error {
	f.scrolls = append(f.scrolls, y)
	return nil
}
func (f *fakePage) OnConsole(handler func(browserdriver.ConsoleMessage)) {}
func (f *fakePage) OnPageError(handler func(error))                     {}
func (f *fakePage) Close(ctx context.Context) error                     { f.closed = true; return nil }

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestPrepare_ClosesPageOnNavigateFailure(t *testing.T) {
	page := &fakePage{navResult: &browserdriver.NavigationResult{OK: false, StatusCode: 500}}
	err := Prepare(context.Background(), page, "https://example.com", 1920, 1080, nil, nil)
	assert.Error(t, err)
	assert.True(t, page.closed)
}

func TestPrepare_SucceedsAndScrollsSweep(t *testing.T) {
	page := &fakePage{
		navResult: &browserdriver.NavigationResult{OK: true, StatusCode: 200},
		evalResults: map[string]any{
			"scrollHeight": scrollMetrics{ScrollHeight: 1000, InnerHeight: 500},
			"animationName": false,
		},
	}
	err := Prepare(context.Background(), page, "https://example.com", 1920, 1080, nil, nil)
	require.NoError(t, err)
	assert.False(t, page.closed)
	assert.NotEmpty(t, page.scrolls)
	assert.Equal(t, 0.0, page.scrolls[len(page.scrolls)-1])
}
