package detectors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

type fakeAnalyzerPage struct{}

func (f *fakeAnalyzerPage) Navigate(ctx context.Context, url string) (*browserdriver.NavigationResult, error) {
	return &browserdriver.NavigationResult{OK: true}, nil
}
func (f *fakeAnalyzerPage) WaitIdle(ctx context.Context, timeout time.Duration) error { return nil }
func (f *fakeAnalyzerPage) SetViewport(ctx context.Context, w, h int) error           { return nil }
func (f *fakeAnalyzerPage) Evaluate(ctx context.Context, script string, out any) error {
	return nil
}
func (f *fakeAnalyzerPage) ScrollTo(ctx context.Context, y float64) error { return nil }
func (f *fakeAnalyzerPage) OnConsole(handler func(browserdriver.ConsoleMessage)) {}
func (f *fakeAnalyzerPage) OnPageError(handler func(error))                     {}
func (f *fakeAnalyzerPage) Close(ctx context.Context) error                     { return nil }

type stubDetector struct {
	name   string
	issues []auditmodel.Issue
	err    error
}

func (s *stubDetector) Name() string { return s.name }
func (s *stubDetector) Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error) {
	return s.issues, s.err
}

func TestAnalyzer_ConcatenatesIssuesAcrossDetectors(t *testing.T) {
	a := NewAnalyzer(nil,
		&stubDetector{name: "one", issues: []auditmodel.Issue{{Type: auditmodel.IssueOverlap, Severity: auditmodel.SeverityCritical}}},
		&stubDetector{name: "two", issues: []auditmodel.Issue{{Type: auditmodel.IssueSpacing, Severity: auditmodel.SeverityMinor}}},
	)
	result := a.Run(context.Background(), &fakeAnalyzerPage{}, "https://example.com", auditmodel.Viewport{Width: 1920, Height: 1080})

	require.Len(t, result.Issues, 2)
	assert.Equal(t, "https://example.com", result.URL)
	assert.Equal(t, 2, result.Metadata.TotalIssuesFound)
	assert.Equal(t, 1, result.Metadata.CriticalIssues)
	assert.Equal(t, 1, result.Metadata.MinorIssues)
}

func TestAnalyzer_ContinuesAfterDetectorError(t *testing.T) {
	a := NewAnalyzer(nil,
		&stubDetector{name: "broken", err: errors.New("script-eval-failed")},
		&stubDetector{name: "ok", issues: []auditmodel.Issue{{Type: auditmodel.IssueOverlap, Severity: auditmodel.SeverityMajor}}},
	)
	result := a.Run(context.Background(), &fakeAnalyzerPage{}, "https://example.com", auditmodel.Viewport{})

	require.Len(t, result.Issues, 1)
	assert.Equal(t, auditmodel.SeverityMajor, result.Issues[0].Severity)
}

func TestAnalyzer_NoIssuesYieldsEmptySlice(t *testing.T) {
	a := NewAnalyzer(nil, &stubDetector{name: "quiet"})
	result := a.Run(context.Background(), &fakeAnalyzerPage{}, "https://example.com", auditmodel.Viewport{})
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0, result.Metadata.TotalIssuesFound)
}

func TestBuildDetectors_RejectsUnknownName(t *testing.T) {
	_, err := BuildDetectors(&fakeAnalyzerPage{}, []string{"nonsense"})
	assert.Error(t, err)
}

func TestBuildDetectors_BuildsRequestedSet(t *testing.T) {
	detectors, err := BuildDetectors(&fakeAnalyzerPage{}, auditmodel.DefaultDetectorNames)
	require.NoError(t, err)
	assert.Len(t, detectors, len(auditmodel.DefaultDetectorNames))
}
