// Package webserver implements the HTTP surface for cmd/webauditor-server,
// grounded on cmd/main.go's route wiring and routes/auth.go's handler
// shapes, adapted from a multi-tenant chat API to a single-admin audit API.
package webserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nishaddevendra/webauditor/internal/aisummary"
	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/config"
	"github.com/nishaddevendra/webauditor/internal/jobqueue"
	"github.com/nishaddevendra/webauditor/internal/report"
	"github.com/nishaddevendra/webauditor/internal/store"
	"github.com/nishaddevendra/webauditor/utils"
)

// AuditRunner is the subset of engine.Engine the HTTP surface calls directly.
type AuditRunner interface {
	RunSingle(ctx context.Context, urls []string) auditmodel.MultiURLAuditResult
	RunCrawl(ctx context.Context, seed string) auditmodel.MultiURLAuditResult
}

// Handlers holds the dependencies shared by every route.
type Handlers struct {
	Config     *config.Config
	Engine     AuditRunner
	Store      *store.Store
	Enqueuer   *jobqueue.Enqueuer
	Summarizer *aisummary.Summarizer
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login issues a JWT for the single configured admin account.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithBadRequest(c, "invalid request body", nil)
		return
	}

	if req.Username != h.Config.AdminUsername || !utils.CheckPassword(req.Password, h.Config.AdminPasswordHash) {
		utils.RespondWithUnauthorized(c, "invalid credentials")
		return
	}

	expiresIn, err := time.ParseDuration(h.Config.JWTExpiresIn)
	if err != nil {
		expiresIn = 24 * time.Hour
	}

	token, err := utils.GenerateJWT(req.Username, "admin", "", h.Config.JWTSecret, expiresIn)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to issue token", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_in":   int(expiresIn.Seconds()),
	})
}

// AuditRequest is the shared payload for synchronous/asynchronous audits.
type AuditRequest struct {
	URL   string `json:"url" binding:"required"`
	Crawl bool   `json:"crawl"`
}

// AuditResponse wraps a MultiURLAuditResult with the optional AI-generated
// narrative summary, kept separate from auditmodel so the core audit types
// stay pure detector output.
type AuditResponse struct {
	auditmodel.MultiURLAuditResult
	AISummary string `json:"aiSummary,omitempty"`
}

// RunAudit executes a single-page or crawl audit inline and returns the
// full result. Intended for quick, interactive checks.
func (h *Handlers) RunAudit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithBadRequest(c, "invalid request body", nil)
		return
	}

	var result auditmodel.MultiURLAuditResult
	if req.Crawl {
		result = h.Engine.RunCrawl(c.Request.Context(), req.URL)
	} else {
		result = h.Engine.RunSingle(c.Request.Context(), []string{req.URL})
	}

	resp := AuditResponse{MultiURLAuditResult: result}
	if h.Summarizer != nil {
		resp.AISummary = h.Summarizer.Summarize(c.Request.Context(), result)
	}

	if h.Store != nil {
		runID := newRunID()
		if err := h.Store.SaveRun(c.Request.Context(), runID, req.URL, "", result); err != nil {
			c.Set("store_error", err.Error())
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitAudit enqueues a crawl/audit for background processing and returns
// immediately with the run ID the caller should poll for.
func (h *Handlers) SubmitAudit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithBadRequest(c, "invalid request body", nil)
		return
	}
	if h.Enqueuer == nil {
		utils.RespondWithInternalError(c, "job queue unavailable", nil)
		return
	}

	runID := newRunID()
	if err := h.Enqueuer.Enqueue(runID, req.URL, req.Crawl); err != nil {
		utils.RespondWithInternalError(c, "failed to enqueue audit", gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"run_id": runID, "status": "queued"})
}

// RecentRuns lists the most recent saved runs for a given start URL.
func (h *Handlers) RecentRuns(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		utils.RespondWithBadRequest(c, "url query parameter is required", nil)
		return
	}
	runs, err := h.Store.RecentRuns(c.Request.Context(), url, 20)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to load runs", gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// RunReport streams the XLSX report for the most recent saved run matching
// the url query parameter.
func (h *Handlers) RunReport(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		utils.RespondWithBadRequest(c, "url query parameter is required", nil)
		return
	}
	runs, err := h.Store.RecentRuns(c.Request.Context(), url, 1)
	if err != nil || len(runs) == 0 {
		utils.RespondWithNotFound(c, "no run found for url")
		return
	}

	xlsx, err := report.WriteXLSX(runs[0].Result)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to build report", gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=audit-report.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}

func newRunID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "run-" + time.Now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(buf)
}
