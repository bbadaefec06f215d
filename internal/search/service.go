package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/metrics"
	"github.com/animedex/backend/internal/repository"
)

// Results is one page of search hits with facet aggregations
type Results struct {
	Total        int                        `json:"total"`
	Hits         []AnimeDoc                 `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
	Page         int                        `json:"page"`
	TotalPages   int                        `json:"total_pages"`
	Size         int                        `json:"size"`
}

// Suggestion is one autocomplete option returned to clients
type Suggestion struct {
	Type       string   `json:"type"`
	MalID      int      `json:"mal_id,omitempty"`
	Name       string   `json:"name"`
	Subtype    *string  `json:"subtype,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Popularity *int     `json:"popularity,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
}

// Searcher is the read-side search contract consumed by the HTTP layer
type Searcher interface {
	Search(ctx context.Context, query string, filters Filters, page, size int) (*Results, error)
	AdvancedSearch(ctx context.Context, query string, filters Filters, sortBy, order string, page, size int) (*Results, error)
	GetByID(ctx context.Context, malID int) (*AnimeDoc, error)
	GetByCategory(ctx context.Context, kind, name string, page, size int) (*Results, error)
	Suggest(ctx context.Context, prefix, entityType string, limit int) ([]Suggestion, error)
	FilterOptions(ctx context.Context) (*repository.FilterOptions, error)
}

// Service is the search façade over the engine client and the catalog
type Service struct {
	client  *Client
	catalog repository.CatalogRepository
}

// NewService creates a new search service
func NewService(client *Client, catalog repository.CatalogRepository) *Service {
	return &Service{client: client, catalog: catalog}
}

// Search runs a relevance-ranked text search with filters and facets.
// Engine failures degrade to an empty page instead of an error so a sick
// search cluster does not take the whole API down with it.
func (s *Service) Search(ctx context.Context, query string, filters Filters, page, size int) (*Results, error) {
	page, size = normalizePage(page, size)
	body := buildSearchBody(query, filters, page, size)
	return s.runSearch(ctx, body, page, size, "search")
}

// AdvancedSearch is Search with an explicit sort order instead of relevance
func (s *Service) AdvancedSearch(ctx context.Context, query string, filters Filters, sortBy, order string, page, size int) (*Results, error) {
	page, size = normalizePage(page, size)
	body := buildAdvancedSearchBody(query, filters, sortBy, order, page, size)
	return s.runSearch(ctx, body, page, size, "advanced_search")
}

func (s *Service) runSearch(ctx context.Context, body map[string]interface{}, page, size int, operation string) (*Results, error) {
	resp, err := s.client.executeSearch(ctx, s.client.AnimeIndex(), body)
	if err != nil {
		logger.Error("Search degraded to empty results", zap.String("operation", operation), zap.Error(err))
		return &Results{Hits: []AnimeDoc{}, Page: page, Size: size}, nil
	}

	results := &Results{
		Total:        resp.Hits.Total.Value,
		Hits:         make([]AnimeDoc, 0, len(resp.Hits.Hits)),
		Aggregations: resp.Aggregations,
		Page:         page,
		TotalPages:   TotalPages(resp.Hits.Total.Value, size),
		Size:         size,
	}

	for _, hit := range resp.Hits.Hits {
		var doc AnimeDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			logger.Warn("Skipping undecodable search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		results.Hits = append(results.Hits, doc)
	}

	return results, nil
}

// GetByID fetches one anime document. Returns repository.ErrAnimeNotFound
// when no document carries the given MAL ID; engine failures are logged and
// degrade to the same not-found contract.
func (s *Service) GetByID(ctx context.Context, malID int) (*AnimeDoc, error) {
	doc, err := s.client.GetAnime(ctx, malID)
	if err != nil {
		logger.Error("Anime lookup degraded to not-found", logger.WithMalID(malID), zap.Error(err))
		return nil, fmt.Errorf("anime %d: %w", malID, repository.ErrAnimeNotFound)
	}
	if doc == nil {
		return nil, fmt.Errorf("anime %d: %w", malID, repository.ErrAnimeNotFound)
	}
	return doc, nil
}

// categoryFields maps a browsable entity kind to its exact-match field
var categoryFields = map[string]string{
	"genre":       "genre_names",
	"studio":      "studio_names",
	"theme":       "theme_names",
	"demographic": "demographic_names",
	"character":   "character_names",
}

// GetByCategory lists all anime carrying an exact entity name, most
// popular first
func (s *Service) GetByCategory(ctx context.Context, kind, name string, page, size int) (*Results, error) {
	field, ok := categoryFields[kind]
	if !ok {
		return nil, fmt.Errorf("unknown category kind %q", kind)
	}

	page, size = normalizePage(page, size)
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{field: name},
		},
		"from": (page - 1) * size,
		"size": size,
		"sort": []interface{}{
			map[string]interface{}{"popularity": map[string]interface{}{"order": "asc", "missing": "_last"}},
		},
	}

	return s.runSearch(ctx, body, page, size, "category")
}

// Suggest returns autocomplete options for a prefix. The first option is
// always a raw-search entry echoing the prefix, so clients can offer "search
// for <text>" even when nothing matches. Prefixes shorter than two
// characters yield only that entry.
func (s *Service) Suggest(ctx context.Context, prefix, entityType string, limit int) ([]Suggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if limit <= 0 {
		limit = 10
	}

	suggestions := []Suggestion{{Type: "search", Name: prefix}}
	if len([]rune(prefix)) < 2 {
		return suggestions, nil
	}

	body := buildSuggestBody(prefix, entityType, limit)

	resp, err := s.client.executeSearch(ctx, s.client.SuggestionsIndex(), body)
	if err != nil {
		metrics.SuggestTotal.WithLabelValues("error").Inc()
		logger.Error("Suggest degraded to raw-search option only", zap.Error(err))
		return suggestions, nil
	}
	metrics.SuggestTotal.WithLabelValues("success").Inc()

	seen := make(map[string]struct{}, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc SuggestionDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			logger.Warn("Skipping undecodable suggestion hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}

		if _, dup := seen[doc.DocID()]; dup {
			continue
		}
		seen[doc.DocID()] = struct{}{}

		suggestions = append(suggestions, Suggestion{
			Type:       doc.Type,
			MalID:      doc.MalID,
			Name:       doc.MainName,
			Subtype:    doc.Subtype,
			Score:      doc.Score,
			Popularity: doc.Popularity,
			ImageURL:   doc.ImageURL,
		})
		if len(suggestions) > limit {
			break
		}
	}

	return suggestions, nil
}

// FilterOptions enumerates the facet values for filter UIs, straight from
// the catalog so options stay available even while indices rebuild
func (s *Service) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return s.catalog.FilterOptions(ctx)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
