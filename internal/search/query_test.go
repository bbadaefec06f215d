package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterActive(t *testing.T) {
	assert.False(t, filterActive(""))
	assert.False(t, filterActive("All"))
	assert.False(t, filterActive("all"))
	assert.True(t, filterActive("TV"))
}

func TestFilterClausesSentinel(t *testing.T) {
	clauses := filterClauses(Filters{
		Type:   "All",
		Season: "",
		Genres: []string{"All", ""},
	})
	assert.Empty(t, clauses)
}

func TestFilterClauses(t *testing.T) {
	filters := Filters{
		Type:        "TV",
		Genres:      []string{"Action", "All", "Sci-Fi"},
		MinScore:    floatPtr(7.5),
		MinYear:     intPtr(2010),
		MaxYear:     intPtr(2020),
		MinEpisodes: intPtr(12),
		MaxDuration: intPtr(30),
		PopularOnly: true,
	}

	clauses := filterClauses(filters)
	require.Len(t, clauses, 7)

	assert.Contains(t, clauses, map[string]interface{}{
		"term": map[string]interface{}{"type": "TV"},
	})
	// Sentinel entries drop out of the terms list
	assert.Contains(t, clauses, map[string]interface{}{
		"terms": map[string]interface{}{"genre_names": []string{"Action", "Sci-Fi"}},
	})
	assert.Contains(t, clauses, map[string]interface{}{
		"range": map[string]interface{}{"score": map[string]interface{}{"gte": 7.5}},
	})
	assert.Contains(t, clauses, map[string]interface{}{
		"range": map[string]interface{}{"year": map[string]interface{}{"gte": 2010, "lte": 2020}},
	})
	assert.Contains(t, clauses, map[string]interface{}{
		"range": map[string]interface{}{"episodes": map[string]interface{}{"gte": 12}},
	})
	assert.Contains(t, clauses, map[string]interface{}{
		"range": map[string]interface{}{"duration_minutes": map[string]interface{}{"lte": 30}},
	})
	assert.Contains(t, clauses, map[string]interface{}{
		"term": map[string]interface{}{"is_popular": true},
	})
}

func TestBuildSearchBodyEmptyQuery(t *testing.T) {
	body := buildSearchBody("", Filters{}, 1, 20)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
	assert.NotContains(t, boolQuery, "filter")
}

func TestBuildSearchBodyTextQuery(t *testing.T) {
	body := buildSearchBody("cowboy bebop", Filters{Type: "TV"}, 2, 20)

	assert.Equal(t, 20, body["from"])
	assert.Equal(t, 20, body["size"])

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "cowboy bebop", multiMatch["query"])
	assert.Contains(t, multiMatch["fields"], "title^3")
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])

	require.Contains(t, boolQuery, "filter")
	assert.Len(t, boolQuery["filter"], 1)
}

func TestBuildSearchBodyDefaultSort(t *testing.T) {
	body := buildSearchBody("q", Filters{}, 1, 10)

	sort := body["sort"].([]interface{})
	require.Len(t, sort, 3)
	assert.Contains(t, sort[0], "_score")
	assert.Contains(t, sort[1], "popularity")
	assert.Contains(t, sort[2], "score")
}

func TestBuildSearchBodyAggregations(t *testing.T) {
	body := buildSearchBody("", Filters{}, 1, 10)

	aggs := body["aggs"].(map[string]interface{})
	for _, name := range []string{"genres", "types", "seasons", "years", "score_ranges"} {
		assert.Contains(t, aggs, name)
	}
}

func TestBuildSearchBodyPageClamp(t *testing.T) {
	body := buildSearchBody("q", Filters{}, 0, 20)
	assert.Equal(t, 0, body["from"])

	body = buildSearchBody("q", Filters{}, -5, 20)
	assert.Equal(t, 0, body["from"])
}

func TestSortClause(t *testing.T) {
	sort := sortClause("popularity", "asc")
	require.Len(t, sort, 1)
	clause := sort[0].(map[string]interface{})["popularity"].(map[string]interface{})
	assert.Equal(t, "asc", clause["order"])
	assert.Equal(t, 0, clause["missing"])

	sort = sortClause("title", "asc")
	clause = sort[0].(map[string]interface{})["title.keyword"].(map[string]interface{})
	assert.Equal(t, "_last", clause["missing"])

	sort = sortClause("title", "desc")
	clause = sort[0].(map[string]interface{})["title.keyword"].(map[string]interface{})
	assert.Equal(t, "_first", clause["missing"])

	// Unknown keys and bogus orders degrade to score desc
	sort = sortClause("bogus", "sideways")
	clause = sort[0].(map[string]interface{})["score"].(map[string]interface{})
	assert.Equal(t, "desc", clause["order"])
}

// "relevance" keeps the default three-level tie-break rather than sorting on
// the score field of the same name
func TestSortClauseRelevance(t *testing.T) {
	sort := sortClause("relevance", "desc")
	assert.Equal(t, defaultSort(), sort)

	require.Len(t, sort, 3)
	assert.Contains(t, sort[0], "_score")
}

func TestBuildAdvancedSearchBodyOverridesSort(t *testing.T) {
	body := buildAdvancedSearchBody("q", Filters{}, "year", "desc", 1, 10)

	sort := body["sort"].([]interface{})
	require.Len(t, sort, 1)
	assert.Contains(t, sort[0], "year")
}

func TestBuildSuggestBodyTypeFilter(t *testing.T) {
	// The suggestion index stores lowercase type keywords, so mixed-case
	// input folds before the term clause
	body := buildSuggestBody("death", "Anime", 10)
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	require.Contains(t, boolQuery, "filter")
	filter := boolQuery["filter"].([]interface{})
	require.Len(t, filter, 1)
	assert.Equal(t, map[string]interface{}{
		"term": map[string]interface{}{"type": "anime"},
	}, filter[0])

	for _, entityType := range []string{"", "All"} {
		body = buildSuggestBody("death", entityType, 10)
		boolQuery = body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		assert.NotContains(t, boolQuery, "filter")
	}

	assert.Equal(t, 10, body["size"])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 5, TotalPages(95, 20))
	assert.Equal(t, 5, TotalPages(100, 20))
	assert.Equal(t, 6, TotalPages(101, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}
