// Command webauditor-server exposes the synchronous and asynchronous audit
// HTTP API (spec §10), grounded on cmd/main.go's config/mongo/redis/asynq
// wiring and graceful-shutdown loop.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nishaddevendra/webauditor/internal/aisummary"
	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/config"
	"github.com/nishaddevendra/webauditor/internal/crawlstate"
	"github.com/nishaddevendra/webauditor/internal/engine"
	"github.com/nishaddevendra/webauditor/internal/jobqueue"
	"github.com/nishaddevendra/webauditor/internal/logger"
	"github.com/nishaddevendra/webauditor/internal/schedule"
	"github.com/nishaddevendra/webauditor/internal/store"
	"github.com/nishaddevendra/webauditor/internal/telemetry"
	"github.com/nishaddevendra/webauditor/internal/webserver"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to mongodb:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	resultStore := store.New(mongoClient.Database(cfg.DBName))

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("failed to connect to redis:", err)
	}
	defer rdb.Close()

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	shutdownTracer, err := telemetry.InitTracer("webauditor-server")
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("metrics disabled: %v", err)
		metrics = nil
	}

	logger.InitLogger(cfg)
	logger.Info("server-starting", "gin_mode", cfg.GinMode, "port", cfg.Port)

	ctx := context.Background()
	driver, err := browserdriver.NewChromeDriver(ctx)
	if err != nil {
		log.Fatal("failed to launch browser:", err)
	}
	defer driver.Close(ctx)

	eng := engine.New(driver, engine.Config{
		Viewport: auditmodel.Viewport{Width: cfg.DefaultViewportW, Height: cfg.DefaultViewportH},
		CrawlConfig: crawlstate.Config{
			MaxDepth:   cfg.DefaultMaxDepth,
			MaxPages:   cfg.DefaultMaxPages,
			MaxThreads: cfg.DefaultMaxThreads,
		},
	}, logger.Logger)

	var summarizer *aisummary.Summarizer
	if cfg.GeminiAPIKey != "" {
		summarizer, err = aisummary.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("ai-summary-disabled", "error", err)
		} else {
			defer summarizer.Close()
		}
	}

	handlers := &webserver.Handlers{
		Config:     cfg,
		Engine:     eng,
		Store:      resultStore,
		Enqueuer:   jobqueue.NewEnqueuer(queueClient),
		Summarizer: summarizer,
	}

	router := webserver.NewRouter(cfg, mongoClient, rdb, metrics, handlers)

	var scheduler *schedule.Scheduler
	if cfg.ScheduleCron != "" && cfg.ScheduleStartURL != "" {
		scheduler = schedule.NewScheduler(logger.Logger)
		job := &schedule.AuditJob{
			Def: schedule.Definition{
				ID:       "default",
				Name:     "recurring-audit",
				CronExpr: cfg.ScheduleCron,
				StartURL: cfg.ScheduleStartURL,
				Crawl:    cfg.ScheduleCrawl,
			},
			Runner: eng,
			Saver:  resultStore,
			Logger: logger.Logger,
		}
		if err := schedule.Register(scheduler, job); err != nil {
			logger.Error("schedule-register-failed", "error", err)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server-listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("server-shutting-down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown:", err)
	}
	logger.Info("server-exited")
}
