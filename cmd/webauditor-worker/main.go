// Command webauditor-worker runs the asynq server that consumes audit jobs
// submitted by cmd/webauditor-server (spec §10), grounded on
// cmd/worker/worker.go's server/mux assembly.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/config"
	"github.com/nishaddevendra/webauditor/internal/crawlstate"
	"github.com/nishaddevendra/webauditor/internal/engine"
	"github.com/nishaddevendra/webauditor/internal/jobqueue"
	"github.com/nishaddevendra/webauditor/internal/logger"
	"github.com/nishaddevendra/webauditor/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config-invalid", "error", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg)
	log := logger.Logger

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Error("mongo-connect-failed", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())
	resultStore := store.New(mongoClient.Database(cfg.DBName))

	ctx := context.Background()
	driver, err := browserdriver.NewChromeDriver(ctx)
	if err != nil {
		log.Error("browser-launch-failed", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)

	eng := engine.New(driver, engine.Config{
		Viewport: auditmodel.Viewport{Width: cfg.DefaultViewportW, Height: cfg.DefaultViewportH},
		CrawlConfig: crawlstate.Config{
			MaxDepth:   cfg.DefaultMaxDepth,
			MaxPages:   cfg.DefaultMaxPages,
			MaxThreads: cfg.DefaultMaxThreads,
		},
	}, log)

	processor := jobqueue.NewProcessor(eng, resultStore, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.DefaultMaxThreads,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("job-failed", "task", task.Type(), "error", err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobqueue.TaskAuditRun, processor.ProcessAuditRun)

	log.Info("worker-started", "queues", "default", "concurrency", cfg.DefaultMaxThreads)
	if err := server.Run(mux); err != nil {
		log.Error("worker-failed", "error", err)
		os.Exit(1)
	}
}
