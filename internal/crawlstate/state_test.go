package crawlstate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func newTestState(cfg Config) *StateManager {
	if cfg.MaxDepth == 0 && cfg.MaxPages == 0 && cfg.MaxThreads == 0 {
		cfg = Config{MaxDepth: 3, MaxPages: 50, MaxThreads: 3}
	}
	return NewStateManager(cfg)
}

func TestEnqueueDequeue_OrdersByDepthThenDiscoveredAt(t *testing.T) {
	s := newTestState(Config{MaxDepth: 3, MaxPages: 50, MaxThreads: 10})

	require.True(t, s.EnqueueUrl("https://a/2", "https://a/2", 2, ""))
	require.True(t, s.EnqueueUrl("https://a/0", "https://a/0", 0, ""))
	require.True(t, s.EnqueueUrl("https://a/1a", "https://a/1a", 1, ""))
	require.True(t, s.EnqueueUrl("https://a/1b", "https://a/1b", 1, ""))

	item := s.DequeueUrl()
	assert.Equal(t, "https://a/0", item.NormalizedURL)
	item = s.DequeueUrl()
	assert.Equal(t, "https://a/1a", item.NormalizedURL)
	item = s.DequeueUrl()
	assert.Equal(t, "https://a/1b", item.NormalizedURL)
	item = s.DequeueUrl()
	assert.Equal(t, "https://a/2", item.NormalizedURL)
}

func TestEnqueueUrl_RejectsDuplicatesAndVisited(t *testing.T) {
	s := newTestState(Config{MaxDepth: 3, MaxPages: 50, MaxThreads: 10})

	require.True(t, s.EnqueueUrl("https://a/1", "https://a/1", 0, ""))
	assert.False(t, s.EnqueueUrl("https://a/1", "https://a/1", 0, ""), "already in queue")

	item := s.DequeueUrl()
	require.NotNil(t, item)
	assert.False(t, s.EnqueueUrl("https://a/1", "https://a/1", 0, ""), "already visited")
}

func TestEnqueueUrl_RejectsOverMaxDepth(t *testing.T) {
	s := newTestState(Config{MaxDepth: 2, MaxPages: 50, MaxThreads: 10})
	assert.False(t, s.EnqueueUrl("https://a/deep", "https://a/deep", 3, ""))
	assert.Equal(t, 1, s.PagesSkipped())
}

func TestDequeueUrl_RespectsMaxPages(t *testing.T) {
	s := newTestState(Config{MaxDepth: 3, MaxPages: 1, MaxThreads: 10})
	require.True(t, s.EnqueueUrl("https://a/1", "https://a/1", 0, ""))

	item := s.DequeueUrl()
	require.NotNil(t, item)
	require.True(t, s.EnqueueUrl("https://a/2", "https://a/2", 0, ""))
	// maxPages=1 and one item is already processing: |results|+|processing| >= maxPages
	assert.Nil(t, s.DequeueUrl())
}

func TestMaxDepthZero_OnlyVisitsSeed(t *testing.T) {
	s := newTestState(Config{MaxDepth: 0, MaxPages: 50, MaxThreads: 10})
	require.True(t, s.EnqueueUrl("https://a/", "https://a/", 0, ""))
	assert.False(t, s.EnqueueUrl("https://a/child", "https://a/child", 1, "https://a/"))
}

func TestCrawlCapScenario_TwentyLinksMaxPagesTen(t *testing.T) {
	// spec §8 scenario 7: maxPages=10, maxDepth=3, seed exposes 20
	// same-depth links -> exactly 10 results, pagesSkipped >= 11.
	s := newTestState(Config{MaxDepth: 3, MaxPages: 10, MaxThreads: 10})
	require.True(t, s.EnqueueUrl("https://seed/", "https://seed/", 0, ""))

	seed := s.DequeueUrl()
	require.NotNil(t, seed)

	for i := 0; i < 20; i++ {
		u := fmt.Sprintf("https://seed/child-%d", i)
		s.EnqueueUrl(u, u, 1, "https://seed/")
	}

	s.CompleteUrl(seed.NormalizedURL, auditmodel.PageResult{Status: auditmodel.StatusCompleted, Depth: 0})

	var completed int
	for s.queue.Len() > 0 {
		item := s.DequeueUrl()
		if item == nil {
			break
		}
		s.CompleteUrl(item.NormalizedURL, auditmodel.PageResult{Status: auditmodel.StatusCompleted, Depth: item.Depth})
		completed++
	}

	assert.Equal(t, 10, len(s.Results()))
	assert.GreaterOrEqual(t, s.PagesSkipped(), 11)
}

func TestShouldContinueAndHasUrlsToProcess(t *testing.T) {
	s := newTestState(Config{MaxDepth: 3, MaxPages: 50, MaxThreads: 1})
	assert.False(t, s.ShouldContinue())

	require.True(t, s.EnqueueUrl("https://a/", "https://a/", 0, ""))
	assert.True(t, s.ShouldContinue())
	assert.True(t, s.HasUrlsToProcess())

	item := s.DequeueUrl()
	require.NotNil(t, item)
	assert.False(t, s.HasUrlsToProcess(), "maxThreads=1 already saturated")

	s.Stop()
	assert.False(t, s.ShouldContinue())
}

func TestGetStats_DerivesFromResults(t *testing.T) {
	s := newTestState(Config{MaxDepth: 3, MaxPages: 50, MaxThreads: 10})
	links := 4
	s.CompleteUrl("https://a/", auditmodel.PageResult{Status: auditmodel.StatusCompleted, Depth: 0, LinksFound: &links})
	s.CompleteUrl("https://a/2", auditmodel.PageResult{Status: auditmodel.StatusFailed, Depth: 1})

	stats := s.GetStats("https://a/")
	assert.Equal(t, 1, stats.SuccessfulPages)
	assert.Equal(t, 1, stats.FailedPages)
	assert.Equal(t, 4, stats.TotalLinks)
	assert.Equal(t, 1, stats.MaxDepthReached)
}
