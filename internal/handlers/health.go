package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cityscope/api/internal/database"
	"github.com/cityscope/api/internal/dataset"
	"github.com/cityscope/api/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        *database.Database
	data      *dataset.Store
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance. db is nil when the
// dataset source is CSV; readiness then depends on the dataset alone.
func NewHealthHandler(db *database.Database, data *dataset.Store, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		data:      data,
		startTime: time.Now(),
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
	Database string `json:"database,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
	Records     int    `json:"records"`
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
// Readiness requires a loaded dataset and, when a database is configured, a
// reachable connection. Returns 503 Service Unavailable in degraded mode so
// orchestrators keep traffic away until data is present.
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := ReadyResponse{
		Status:  "ready",
		Dataset: "loaded",
	}
	status := http.StatusOK

	if h.data.Empty() {
		resp.Status = "not_ready"
		resp.Dataset = "empty"
		status = http.StatusServiceUnavailable
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
			resp.Status = "not_ready"
			resp.Database = "disconnected"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "connected"
		}
	}

	c.JSON(status, resp)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, uptime, and the number
// of loaded historical records.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
		Records:     h.data.Len(),
	})
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
