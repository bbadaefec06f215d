package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/animedex/backend/internal/logger"
)

// Reindex rebuilds both search indices from the catalog. Synchronous: the
// response carries the run summary, so callers should use a generous
// client timeout.
// POST /api/v1/admin/reindex
func (h *Handlers) Reindex(c *gin.Context) {
	summary, err := h.indexer.ReindexAll(c.Request.Context())
	if err != nil {
		logger.Error("Reindex failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reindex_failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reindex": summary})
}

// IndexStats reports document counts and storage size per index
// GET /api/v1/admin/indices/stats
func (h *Handlers) IndexStats(c *gin.Context) {
	stats, err := h.client.Stats(c.Request.Context())
	if err != nil {
		logger.Error("Index stats lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"indices": stats})
}

// DeleteIndices drops both search indices. Destructive; intended for
// re-seeding workflows only.
// DELETE /api/v1/admin/indices
func (h *Handlers) DeleteIndices(c *gin.Context) {
	if err := h.client.DeleteIndices(c.Request.Context()); err != nil {
		logger.Error("Index deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
