package jobqueue

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

type fakeRunner struct {
	gotURL   string
	gotCrawl bool
}

func (f *fakeRunner) RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult {
	f.gotURL = urls[0]
	return auditmodel.NewMultiURLAuditResult(nil, false)
}

func (f *fakeRunner) RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult {
	f.gotURL = seed
	f.gotCrawl = true
	return auditmodel.NewMultiURLAuditResult(nil, false)
}

type fakeSaver struct {
	savedRunID string
}

func (f *fakeSaver) SaveRun(ctx context.Context, id, startURL, scheduleID string, result auditmodel.MultiURLAuditResult) error {
	f.savedRunID = id
	return nil
}

func TestProcessAuditRun_DispatchesToRunSingle(t *testing.T) {
	task, err := NewAuditRunTask("run-1", "https://example.com", false)
	require.NoError(t, err)

	runner := &fakeRunner{}
	saver := &fakeSaver{}
	p := NewProcessor(runner, saver, nil)

	require.NoError(t, p.ProcessAuditRun(context.Background(), task))
	assert.Equal(t, "https://example.com", runner.gotURL)
	assert.False(t, runner.gotCrawl)
	assert.Equal(t, "run-1", saver.savedRunID)
}

func TestProcessAuditRun_DispatchesToRunCrawl(t *testing.T) {
	task, err := NewAuditRunTask("run-2", "https://example.com", true)
	require.NoError(t, err)

	runner := &fakeRunner{}
	p := NewProcessor(runner, nil, nil)

	require.NoError(t, p.ProcessAuditRun(context.Background(), task))
	assert.True(t, runner.gotCrawl)
}

func TestProcessAuditRun_RejectsBadPayload(t *testing.T) {
	task := asynq.NewTask(TaskAuditRun, []byte("not json"))
	p := NewProcessor(&fakeRunner{}, nil, nil)

	err := p.ProcessAuditRun(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
