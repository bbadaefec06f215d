package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/repository"
	"github.com/animedex/backend/internal/search"
)

// filtersFromQuery reads filter parameters off the request. Absent
// parameters and the "All" sentinel both mean unfiltered; the query
// builder treats them the same.
func filtersFromQuery(c *gin.Context) search.Filters {
	return search.Filters{
		Type:         c.Query("type"),
		Status:       c.Query("status"),
		Rating:       c.Query("rating"),
		Source:       c.Query("source"),
		Season:       c.Query("season"),
		ScoreRange:   c.Query("score_range"),
		EpisodeRange: c.Query("episode_range"),
		Genres:       c.QueryArray("genre"),
		Studios:      c.QueryArray("studio"),
		Themes:       c.QueryArray("theme"),
		Demographics: c.QueryArray("demographic"),
		MinScore:     parseFloatPtr(c.Query("min_score")),
		MaxScore:     parseFloatPtr(c.Query("max_score")),
		MinYear:      parseIntPtr(c.Query("min_year")),
		MaxYear:      parseIntPtr(c.Query("max_year")),
		MinEpisodes:  parseIntPtr(c.Query("min_episodes")),
		MaxEpisodes:  parseIntPtr(c.Query("max_episodes")),
		MinDuration:  parseIntPtr(c.Query("min_duration")),
		MaxDuration:  parseIntPtr(c.Query("max_duration")),
		PopularOnly:  c.Query("popular") == "true",
	}
}

// Search runs a relevance-ranked anime search
// GET /api/v1/search?q=query&type=TV&genre=Action&page=1&size=20
func (h *Handlers) Search(c *gin.Context) {
	query := c.Query("q")
	page := parseInt(c.DefaultQuery("page", "1"), 1)
	size := parseInt(c.DefaultQuery("size", "20"), 20)

	results, err := h.search.Search(c.Request.Context(), query, filtersFromQuery(c), page, size)
	if err != nil {
		logger.Error("Search request failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":      results.Hits,
		"aggregations": results.Aggregations,
		"meta": gin.H{
			"query":       query,
			"total":       results.Total,
			"page":        results.Page,
			"total_pages": results.TotalPages,
			"size":        results.Size,
		},
	})
}

// AdvancedSearch runs a search with an explicit sort order
// GET /api/v1/search/advanced?q=query&sort_by=score&order=desc&page=1&size=20
func (h *Handlers) AdvancedSearch(c *gin.Context) {
	query := c.Query("q")
	sortBy := c.DefaultQuery("sort_by", "score")
	order := c.DefaultQuery("order", "desc")
	page := parseInt(c.DefaultQuery("page", "1"), 1)
	size := parseInt(c.DefaultQuery("size", "20"), 20)

	results, err := h.search.AdvancedSearch(c.Request.Context(), query, filtersFromQuery(c), sortBy, order, page, size)
	if err != nil {
		logger.Error("Advanced search request failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":      results.Hits,
		"aggregations": results.Aggregations,
		"meta": gin.H{
			"query":       query,
			"sort_by":     sortBy,
			"order":       order,
			"total":       results.Total,
			"page":        results.Page,
			"total_pages": results.TotalPages,
			"size":        results.Size,
		},
	})
}

// Suggest returns autocomplete options for a prefix
// GET /api/v1/search/suggest?q=prefix&type=anime&limit=10
func (h *Handlers) Suggest(c *gin.Context) {
	prefix := c.Query("q")
	entityType := c.Query("type")
	limit := parseInt(c.DefaultQuery("limit", "10"), 10)
	if limit > 50 {
		limit = 50
	}

	suggestions, err := h.search.Suggest(c.Request.Context(), prefix, entityType, limit)
	if err != nil {
		logger.Error("Suggest request failed", zap.String("prefix", prefix), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggest_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"meta": gin.H{
			"query": prefix,
			"count": len(suggestions),
		},
	})
}

// GetAnime fetches one anime by MAL ID
// GET /api/v1/anime/:id
func (h *Handlers) GetAnime(c *gin.Context) {
	malID := parseInt(c.Param("id"), 0)
	if malID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_anime_id"})
		return
	}

	doc, err := h.search.GetByID(c.Request.Context(), malID)
	if err != nil {
		if errors.Is(err, repository.ErrAnimeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "anime_not_found"})
			return
		}
		logger.Error("Get anime failed", zap.Int("mal_id", malID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"anime": doc})
}

// Browse lists anime carrying an exact entity name, most popular first
// GET /api/v1/browse/:kind/:name?page=1&size=20
func (h *Handlers) Browse(c *gin.Context) {
	kind := c.Param("kind")
	name := c.Param("name")
	page := parseInt(c.DefaultQuery("page", "1"), 1)
	size := parseInt(c.DefaultQuery("size", "20"), 20)

	results, err := h.search.GetByCategory(c.Request.Context(), kind, name, page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results.Hits,
		"meta": gin.H{
			"kind":        kind,
			"name":        name,
			"total":       results.Total,
			"page":        results.Page,
			"total_pages": results.TotalPages,
			"size":        results.Size,
		},
	})
}

// FilterOptions enumerates facet values for filter UIs
// GET /api/v1/filters
func (h *Handlers) FilterOptions(c *gin.Context) {
	options, err := h.search.FilterOptions(c.Request.Context())
	if err != nil {
		logger.Error("Filter options lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "filters_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"filters": options})
}
