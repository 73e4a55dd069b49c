package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackiq/internal/infrastructure/storage/postgres"
)

// Pinger reports database health.
type Pinger interface {
	Healthy(ctx context.Context) error
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db          Pinger
	environment string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

// Live handles GET /health. It never touches the database.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "API is running",
		"timestamp":   time.Now().UTC(),
		"environment": h.environment,
	})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Healthy(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"checks":   map[string]string{"database": "healthy"},
		"database": h.db.Stats(),
	})
}
