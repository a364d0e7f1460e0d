package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

type fakeRunner struct {
	crawlCalls  int
	singleCalls int
}

func (f *fakeRunner) RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult {
	f.singleCalls++
	return auditmodel.NewMultiURLAuditResult(nil, false)
}

func (f *fakeRunner) RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult {
	f.crawlCalls++
	return auditmodel.NewMultiURLAuditResult(nil, false)
}

type fakeSaver struct {
	saved []string
}

func (f *fakeSaver) SaveRun(ctx context.Context, id, startURL, scheduleID string, result auditmodel.MultiURLAuditResult) error {
	f.saved = append(f.saved, scheduleID)
	return nil
}

func TestAuditJob_RunSingle_SavesResult(t *testing.T) {
	runner := &fakeRunner{}
	saver := &fakeSaver{}
	job := &AuditJob{
		Def:    Definition{ID: "s1", StartURL: "https://example.com", Crawl: false},
		Runner: runner,
		Saver:  saver,
	}

	require.NoError(t, job.Run())
	assert.Equal(t, 1, runner.singleCalls)
	assert.Equal(t, 0, runner.crawlCalls)
	assert.Equal(t, []string{"s1"}, saver.saved)
}

func TestAuditJob_RunCrawl_SavesResult(t *testing.T) {
	runner := &fakeRunner{}
	saver := &fakeSaver{}
	job := &AuditJob{
		Def:    Definition{ID: "s2", StartURL: "https://example.com", Crawl: true},
		Runner: runner,
		Saver:  saver,
	}

	require.NoError(t, job.Run())
	assert.Equal(t, 1, runner.crawlCalls)
}

func TestScheduler_ScheduleAndRemoveJob(t *testing.T) {
	s := NewScheduler(nil)
	ran := make(chan struct{}, 1)

	err := s.ScheduleInterval("test-job", 10*time.Millisecond, func() error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	require.NoError(t, s.RemoveJob("test-job"))
	assert.Empty(t, s.Jobs())
}
