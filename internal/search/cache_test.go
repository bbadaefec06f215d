package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animedex/backend/internal/repository"
)

// stubSearcher records calls and returns canned values
type stubSearcher struct {
	searchCalls  int
	suggestCalls int
	results      *Results
}

func (s *stubSearcher) Search(ctx context.Context, query string, filters Filters, page, size int) (*Results, error) {
	s.searchCalls++
	return s.results, nil
}

func (s *stubSearcher) AdvancedSearch(ctx context.Context, query string, filters Filters, sortBy, order string, page, size int) (*Results, error) {
	s.searchCalls++
	return s.results, nil
}

func (s *stubSearcher) GetByID(ctx context.Context, malID int) (*AnimeDoc, error) {
	return &AnimeDoc{MalID: malID}, nil
}

func (s *stubSearcher) GetByCategory(ctx context.Context, kind, name string, page, size int) (*Results, error) {
	s.searchCalls++
	return s.results, nil
}

func (s *stubSearcher) Suggest(ctx context.Context, prefix, entityType string, limit int) ([]Suggestion, error) {
	s.suggestCalls++
	return []Suggestion{{Type: "search", Name: prefix}}, nil
}

func (s *stubSearcher) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return &repository.FilterOptions{Types: []string{"All", "TV"}}, nil
}

func TestCachedServiceNilRedisPassesThrough(t *testing.T) {
	stub := &stubSearcher{results: &Results{Total: 3, Page: 1}}
	cached := NewCachedService(stub, nil)
	ctx := context.Background()

	results, err := cached.Search(ctx, "q", Filters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, results.Total)

	// Without Redis every call reaches the origin
	_, err = cached.Search(ctx, "q", Filters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.searchCalls)

	doc, err := cached.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, doc.MalID)

	options, err := cached.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Contains(t, options.Types, "TV")
}

func TestCachedServiceSuggestUncached(t *testing.T) {
	stub := &stubSearcher{}
	cached := NewCachedService(stub, nil)

	suggestions, err := cached.Suggest(context.Background(), "cow", "", 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "search", suggestions[0].Type)
	assert.Equal(t, 1, stub.suggestCalls)
}

func TestCacheKeyStable(t *testing.T) {
	a := cacheKey("search", "q", Filters{Type: "TV"}, 1, 20)
	b := cacheKey("search", "q", Filters{Type: "TV"}, 1, 20)
	c := cacheKey("search", "q", Filters{Type: "Movie"}, 1, 20)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "animedex:search:search:")
}
