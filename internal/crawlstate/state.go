// Package crawlstate owns the visited/processing sets, the depth-priority
// queue, results, and stats for one crawl run (spec §4.4). All mutations
// go through StateManager's methods, which serialize access under a
// single lock — no invariant in spec §3/§8 is enforced anywhere else.
package crawlstate

import (
	"container/heap"
	"sync"
	"time"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

// Config mirrors spec.md's CrawlConfig (depth/page/thread caps plus the
// internal-link filtering options the link extractor also consumes).
type Config struct {
	MaxDepth          int
	MaxPages          int
	MaxThreads        int
	IncludeSubdomains bool
	ExcludePatterns   []string
	IncludePatterns   []string
}

// StateManager is the single shared mutable object of a crawl run (spec §5).
type StateManager struct {
	mu sync.Mutex

	cfg Config

	visited    map[string]struct{}
	inQueue    map[string]struct{}
	processing map[string]struct{}
	queue      priorityQueue

	results []auditmodel.PageResult
	errors  []error

	startTime            time.Time
	totalPagesDiscovered int
	pagesSkipped         int
	stopped              bool

	discoveryClock int64
}

// NewStateManager constructs a StateManager for one crawl run.
func NewStateManager(cfg Config) *StateManager {
	return &StateManager{
		cfg:        cfg,
		visited:    make(map[string]struct{}),
		inQueue:    make(map[string]struct{}),
		processing: make(map[string]struct{}),
		queue:      make(priorityQueue, 0),
		startTime:  time.Now(),
	}
}

// nextDiscoveredAt returns a strictly increasing logical timestamp — a
// monotonic counter, not wall time, so equal-depth FIFO ordering (spec §3)
// never collides on clock resolution or moves backward under NTP skew.
func (s *StateManager) nextDiscoveredAt() int64 {
	s.discoveryClock++
	return s.discoveryClock
}

// EnqueueUrl implements spec §4.4's EnqueueUrl. Caller must already hold
// the normalized form (URL normalization is the caller's responsibility,
// per spec §4.1/§4.7).
func (s *StateManager) EnqueueUrl(rawURL, normalizedURL string, depth int, parentURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[normalizedURL]; ok {
		return false
	}
	if _, ok := s.inQueue[normalizedURL]; ok {
		return false
	}
	if depth > s.cfg.MaxDepth {
		s.pagesSkipped++
		return false
	}
	if len(s.results)+s.queue.Len() >= s.cfg.MaxPages {
		s.pagesSkipped++
		return false
	}

	item := &auditmodel.QueueItem{
		URL:           rawURL,
		NormalizedURL: normalizedURL,
		Depth:         depth,
		ParentURL:     parentURL,
		DiscoveredAt:  s.nextDiscoveredAt(),
	}
	heap.Push(&s.queue, item)
	s.inQueue[normalizedURL] = struct{}{}
	s.totalPagesDiscovered++
	return true
}

// DequeueUrl implements spec §4.4's DequeueUrl.
func (s *StateManager) DequeueUrl() *auditmodel.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Len() == 0 {
		return nil
	}
	if len(s.processing) >= s.cfg.MaxThreads {
		return nil
	}
	if len(s.results)+len(s.processing) >= s.cfg.MaxPages {
		return nil
	}

	item := heap.Pop(&s.queue).(*auditmodel.QueueItem)
	delete(s.inQueue, item.NormalizedURL)
	s.visited[item.NormalizedURL] = struct{}{}
	s.processing[item.NormalizedURL] = struct{}{}
	return item
}

// CompleteUrl implements spec §4.4's CompleteUrl.
func (s *StateManager) CompleteUrl(normalizedURL string, result auditmodel.PageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.processing, normalizedURL)
	result.NormalizedURL = normalizedURL
	s.results = append(s.results, result)
}

// AddError records a crawl-level error (distinct from a per-page failure,
// which is carried on the PageResult itself).
func (s *StateManager) AddError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

// Stop is idempotent.
func (s *StateManager) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether Stop has been called.
func (s *StateManager) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// ShouldContinue implements spec §4.4:
// ¬stopped ∧ (queue ∨ processing) ∧ |results| < maxPages.
func (s *StateManager) ShouldContinue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	hasWork := s.queue.Len() > 0 || len(s.processing) > 0
	return hasWork && len(s.results) < s.cfg.MaxPages
}

// HasUrlsToProcess implements spec §4.4:
// ¬stopped ∧ queue ∧ |processing| < maxThreads.
func (s *StateManager) HasUrlsToProcess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	return s.queue.Len() > 0 && len(s.processing) < s.cfg.MaxThreads
}

// ProcessingCount returns the number of URLs currently being worked.
func (s *StateManager) ProcessingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processing)
}

// Results returns a snapshot copy of completed page results.
func (s *StateManager) Results() []auditmodel.PageResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auditmodel.PageResult, len(s.results))
	copy(out, s.results)
	return out
}

// PagesSkipped returns the running skip count.
func (s *StateManager) PagesSkipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesSkipped
}

// GetStats implements spec §4.4's GetStats.
func (s *StateManager) GetStats(seed string) auditmodel.CrawlStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := auditmodel.CrawlStats{
		StartURL:        seed,
		TotalDiscovered: s.totalPagesDiscovered,
		PagesSkipped:    s.pagesSkipped,
		UniqueLinks:     len(s.visited),
		Stopped:         s.stopped,
	}

	var totalDuration time.Duration
	var timedCount int

	for _, r := range s.results {
		switch r.Status {
		case auditmodel.StatusCompleted:
			stats.SuccessfulPages++
		case auditmodel.StatusFailed:
			stats.FailedPages++
		}
		if r.Depth > stats.MaxDepthReached {
			stats.MaxDepthReached = r.Depth
		}
		if r.LinksFound != nil {
			stats.TotalLinks += *r.LinksFound
		}
		if r.Duration != nil {
			totalDuration += *r.Duration
			timedCount++
		}
	}

	if timedCount > 0 {
		stats.AveragePageTime = totalDuration / time.Duration(timedCount)
	}

	return stats
}
