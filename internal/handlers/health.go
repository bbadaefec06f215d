package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/animedex/backend/internal/database"
)

// Health reports liveness plus database reachability
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	overall := "ok"
	dbStatus := "ok"
	status := http.StatusOK
	if err := database.Health(); err != nil {
		overall = "degraded"
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
	})
}
