package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogapi/pkg/database"
	"blogapi/pkg/redis"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "blogapi",
	})
}

// Ready checks if the service is ready to accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "connected"
	cacheStatus := "connected"
	if err := h.db.HealthCheck(ctx); err != nil {
		dbStatus = "disconnected"
	}
	if err := h.redis.HealthCheck(ctx); err != nil {
		cacheStatus = "disconnected"
	}

	status := http.StatusOK
	ready := "ready"
	if dbStatus != "connected" || cacheStatus != "connected" {
		status = http.StatusServiceUnavailable
		ready = "not_ready"
	}

	c.JSON(status, gin.H{
		"status":   ready,
		"service":  "blogapi",
		"database": dbStatus,
		"redis":    cacheStatus,
	})
}
