package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"opstock/internal/infrastructure/storage/postgres"
)

const appVersion = "0.1.0"

// HealthHandler serves the probe endpoints. Liveness is unconditional;
// readiness gates on the database.
type HealthHandler struct {
	pool      *postgres.Pool
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool, startedAt: time.Now().UTC()}
}

// Live responds as long as the process can serve requests.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can reach its database.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	started := time.Now()
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": gin.H{"status": "unreachable", "error": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":          "ok",
			"ping_latency_ms": time.Since(started).Milliseconds(),
		},
	})
}

// Info returns build and pool details for operators.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Stat()

	c.JSON(http.StatusOK, gin.H{
		"app":            "opstock",
		"version":        appVersion,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"pool": gin.H{
			"total":    stat.TotalConns(),
			"acquired": stat.AcquiredConns(),
			"idle":     stat.IdleConns(),
			"max":      stat.MaxConns(),
		},
	})
}
