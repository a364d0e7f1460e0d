// Package jobqueue defines the async audit job submitted by
// cmd/webauditor-server and consumed by cmd/webauditor-worker (spec §10),
// grounded on internal/queue/tasks.go's task-creator/payload/processor
// shape using github.com/hibiken/asynq.
package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

// TaskAuditRun is the asynq task type for a submitted crawl/audit.
const TaskAuditRun = "audit:run"

// AuditRunPayload is the JSON body carried by a TaskAuditRun task.
type AuditRunPayload struct {
	RunID    string `json:"runId"`
	StartURL string `json:"startUrl"`
	Crawl    bool   `json:"crawl"`
}

// NewAuditRunTask builds the asynq.Task for one submitted audit.
func NewAuditRunTask(runID, startURL string, crawl bool) (*asynq.Task, error) {
	payload, err := json.Marshal(AuditRunPayload{RunID: runID, StartURL: startURL, Crawl: crawl})
	if err != nil {
		return nil, fmt.Errorf("jobqueue-enqueue-failed: %w", err)
	}
	return asynq.NewTask(
		TaskAuditRun,
		payload,
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Runner executes one audit; internal/engine.Engine satisfies this.
type Runner interface {
	RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult
	RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult
}

// ResultSaver persists a completed run; internal/store.Store satisfies this.
type ResultSaver interface {
	SaveRun(ctx context.Context, id, startURL, scheduleID string, result auditmodel.MultiURLAuditResult) error
}

// Processor handles TaskAuditRun tasks for an asynq.ServeMux.
type Processor struct {
	runner Runner
	saver  ResultSaver
	logger *slog.Logger
}

// NewProcessor builds a Processor.
func NewProcessor(runner Runner, saver ResultSaver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{runner: runner, saver: saver, logger: logger}
}

// ProcessAuditRun is the asynq.HandlerFunc for TaskAuditRun.
func (p *Processor) ProcessAuditRun(ctx context.Context, t *asynq.Task) error {
	var payload AuditRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	p.logger.Info("job-started", "run_id", payload.RunID, "url", payload.StartURL, "crawl", payload.Crawl)

	var result auditmodel.MultiURLAuditResult
	if payload.Crawl {
		result = p.runner.RunCrawl(ctx, payload.StartURL)
	} else {
		result = p.runner.RunSingle(ctx, []string{payload.StartURL})
	}

	if p.saver == nil {
		return nil
	}
	if err := p.saver.SaveRun(ctx, payload.RunID, payload.StartURL, "", result); err != nil {
		p.logger.Error("job-save-failed", "run_id", payload.RunID, "error", err)
		return err
	}
	p.logger.Info("job-completed", "run_id", payload.RunID, "issues", result.Summary.TotalIssuesFound)
	return nil
}
