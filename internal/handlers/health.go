package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is the part of the draft database the readiness check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	bundle    *dataset.Bundle
	clock     clockwork.Clock
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance. db is nil when the
// draft archive is disabled.
func NewHealthHandler(db Pinger, bundle *dataset.Bundle, clock clockwork.Clock, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		bundle:    bundle,
		clock:     clock,
		startTime: clock.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Dataset  string `json:"dataset"`
	Database string `json:"database"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	Uptime        string `json:"uptime"`
	StudyYears    []int  `json:"study_years"`
	Areas         int    `json:"areas"`
	DraftsEnabled bool   `json:"drafts_enabled"`
}

// Health handles GET /health endpoint.
// This is a basic health check that always returns 200 OK.
// It does not check any dependencies and is used for basic liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// The service is ready once the study dataset has at least one area and,
// when drafts are enabled, the database answers a ping.
// Returns 200 OK when ready, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := ReadyResponse{Status: "ready", Dataset: "loaded", Database: "disabled"}
	ready := true

	if h.bundle == nil || len(h.bundle.Areas()) == 0 {
		resp.Dataset = "empty"
		ready = false
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			resp.Database = "disconnected"
			ready = false
		} else {
			resp.Database = "connected"
		}
	}

	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, uptime and the
// loaded study.
func (h *HealthHandler) Info(c *gin.Context) {
	resp := InfoResponse{
		Version:       APIVersion,
		Environment:   h.env,
		Uptime:        formatUptime(h.clock.Since(h.startTime)),
		StudyYears:    []int{},
		DraftsEnabled: h.db != nil,
	}
	if h.bundle != nil {
		resp.StudyYears = h.bundle.Years()
		resp.Areas = len(h.bundle.Areas())
	}

	c.JSON(http.StatusOK, resp)
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
