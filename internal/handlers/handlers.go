package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/animedex/backend/internal/search"
)

// Handlers holds the dependencies shared by all HTTP endpoints
type Handlers struct {
	search  search.Searcher
	indexer *search.Indexer
	client  *search.Client
}

// New creates the handler set
func New(searcher search.Searcher, indexer *search.Indexer, client *search.Client) *Handlers {
	return &Handlers{search: searcher, indexer: indexer, client: client}
}

// RegisterRoutes mounts all endpoints on the given engine
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/search", h.Search)
		v1.GET("/search/advanced", h.AdvancedSearch)
		v1.GET("/search/suggest", h.Suggest)
		v1.GET("/anime/:id", h.GetAnime)
		v1.GET("/browse/:kind/:name", h.Browse)
		v1.GET("/filters", h.FilterOptions)

		admin := v1.Group("/admin")
		{
			admin.POST("/reindex", h.Reindex)
			admin.GET("/indices/stats", h.IndexStats)
			admin.DELETE("/indices", h.DeleteIndices)
		}
	}
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseIntPtr(value string) *int {
	if value == "" {
		return nil
	}
	if v, err := strconv.Atoi(value); err == nil {
		return &v
	}
	return nil
}

func parseFloatPtr(value string) *float64 {
	if value == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return &v
	}
	return nil
}
