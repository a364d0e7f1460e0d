// Package schedule drives recurring crawl/audit jobs (spec §10), adapted
// from internal/crawler/scheduler.go's gocron-based Scheduler (same
// Start/Stop/ScheduleJob/ScheduleInterval/RemoveJob shape) and
// services/cron.go's log-on-start/log-on-stop idiom.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

// Scheduler wraps a gocron.Scheduler for tagged, removable jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a scheduler running in UTC.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s, logger: logger}
}

// Start begins running scheduled jobs asynchronously.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler-started")
	s.scheduler.StartAsync()
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("scheduler-stopped")
	s.scheduler.Stop()
}

// ScheduleJob runs job on the given cron expression, tagged for later removal.
func (s *Scheduler) ScheduleJob(tag, cronExpr string, job func() error) error {
	_, err := s.scheduler.Cron(cronExpr).Tag(tag).Do(job)
	return err
}

// ScheduleInterval runs job every duration, tagged for later removal.
func (s *Scheduler) ScheduleInterval(tag string, interval time.Duration, job func() error) error {
	_, err := s.scheduler.Every(interval).Tag(tag).Do(job)
	return err
}

// RemoveJob cancels a previously scheduled job by tag.
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

// Jobs returns all scheduled jobs.
func (s *Scheduler) Jobs() []*gocron.Job {
	return s.scheduler.Jobs()
}

// Runner executes one audit for a schedule definition. Engine.RunSingle/
// RunCrawl satisfy this once adapted by the caller (cmd/webauditor-server
// wires the real engine in; tests supply a fake).
type Runner interface {
	RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult
	RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult
}

// ResultSaver persists a completed run; internal/store.Store satisfies this.
type ResultSaver interface {
	SaveRun(ctx context.Context, id, startURL, scheduleID string, result auditmodel.MultiURLAuditResult) error
}

// Definition is one recurring audit configuration.
type Definition struct {
	ID       string
	Name     string
	CronExpr string
	StartURL string
	Crawl    bool
}

// AuditJob binds a Definition to a Runner/ResultSaver pair so the
// scheduler's job closure stays a plain func() error (spec §10).
type AuditJob struct {
	Def    Definition
	Runner Runner
	Saver  ResultSaver
	Logger *slog.Logger
}

// Run executes one audit for the schedule's definition and persists it.
func (j *AuditJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var result auditmodel.MultiURLAuditResult
	if j.Def.Crawl {
		result = j.Runner.RunCrawl(ctx, j.Def.StartURL)
	} else {
		result = j.Runner.RunSingle(ctx, []string{j.Def.StartURL})
	}

	if j.Saver == nil {
		return nil
	}
	runID := fmt.Sprintf("%s-%d", j.Def.ID, time.Now().UnixNano())
	if err := j.Saver.SaveRun(ctx, runID, j.Def.StartURL, j.Def.ID, result); err != nil {
		if j.Logger != nil {
			j.Logger.Error("schedule-save-failed", "schedule", j.Def.ID, "error", err)
		}
		return err
	}
	return nil
}

// Register schedules one AuditJob onto s under its definition's cron
// expression.
func Register(s *Scheduler, job *AuditJob) error {
	return s.ScheduleJob(job.Def.ID, job.Def.CronExpr, job.Run)
}
