package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nishaddevendra/webauditor/internal/config"
	"github.com/nishaddevendra/webauditor/internal/logger"
	"github.com/nishaddevendra/webauditor/internal/telemetry"
	"github.com/nishaddevendra/webauditor/middleware"
)

// NewRouter assembles the gin engine for cmd/webauditor-server, mirroring
// cmd/main.go's middleware chain (recovery, tracing, metrics, request ID,
// size limit, rate limit, CORS) with the multi-tenant/embed/template
// concerns dropped.
func NewRouter(cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client, metrics *telemetry.Metrics, h *Handlers) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic-recovered", "error", recovered, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error_code": "internal_error",
			"message":    "An unexpected error occurred",
		})
		c.Abort()
	}))

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ManualTracing())
	router.Use(middleware.EnrichTrace())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.RequestSizeLimit(1 << 20))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	router.GET("/health", healthHandler(mongoClient, rdb))
	router.GET("/ready", readyHandler(mongoClient, rdb))

	router.POST("/api/auth/login", h.Login)

	auth := middleware.NewAuthMiddleware(cfg)
	admin := router.Group("/api/admin")
	admin.Use(auth.RequireAuth())
	{
		admin.POST("/audit", h.RunAudit)
		admin.POST("/audit/async", h.SubmitAudit)
		admin.GET("/audit/runs", h.RecentRuns)
		admin.GET("/audit/report", h.RunReport)
	}

	return router
}

func healthHandler(mongoClient *mongo.Client, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{"status": "healthy", "timestamp": time.Now()}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := mongoClient.Ping(ctx, nil); err != nil {
			health["status"] = "unhealthy"
			health["mongodb"] = "unhealthy"
			health["mongodb_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["mongodb"] = "healthy"

		if err := rdb.Ping(ctx).Err(); err != nil {
			health["status"] = "unhealthy"
			health["redis"] = "unhealthy"
			health["redis_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["redis"] = "healthy"

		c.JSON(http.StatusOK, health)
	}
}

func readyHandler(mongoClient *mongo.Client, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := mongoClient.Ping(ctx, nil); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	}
}
