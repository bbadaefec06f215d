package search

import "strings"

// Filters narrows a search. Zero values and the "All" sentinel mean the
// dimension is unconstrained.
type Filters struct {
	Type         string
	Status       string
	Rating       string
	Source       string
	Season       string
	ScoreRange   string
	EpisodeRange string

	Genres       []string
	Studios      []string
	Themes       []string
	Demographics []string

	MinScore    *float64
	MaxScore    *float64
	MinYear     *int
	MaxYear     *int
	MinEpisodes *int
	MaxEpisodes *int
	MinDuration *int
	MaxDuration *int

	PopularOnly bool
}

const sentinelAll = "All"

func filterActive(value string) bool {
	return value != "" && !strings.EqualFold(value, sentinelAll)
}

// buildSearchBody assembles the request body for a text search. An empty
// query string matches everything, which makes browsing with filters alone
// work the same as searching.
func buildSearchBody(query string, filters Filters, page, size int) map[string]interface{} {
	var queryClause map[string]interface{}
	if strings.TrimSpace(query) == "" {
		queryClause = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		queryClause = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": query,
				"fields": []string{
					"title^3",
					"title_english^2",
					"title_synonyms.text^1.5",
					"character_names",
					"synopsis",
				},
				"fuzziness": "AUTO",
				"operator":  "or",
			},
		}
	}

	boolQuery := map[string]interface{}{
		"must": []interface{}{queryClause},
	}
	if clauses := filterClauses(filters); len(clauses) > 0 {
		boolQuery["filter"] = clauses
	}

	if page < 1 {
		page = 1
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  (page - 1) * size,
		"size":  size,
		"sort":  defaultSort(),
		"aggs":  facetAggregations(),
	}
}

// filterClauses converts active filters into term/range clauses
func filterClauses(filters Filters) []interface{} {
	clauses := []interface{}{}

	term := func(field, value string) {
		if filterActive(value) {
			clauses = append(clauses, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}

	terms := func(field string, values []string) {
		active := make([]string, 0, len(values))
		for _, v := range values {
			if filterActive(v) {
				active = append(active, v)
			}
		}
		if len(active) > 0 {
			clauses = append(clauses, map[string]interface{}{
				"terms": map[string]interface{}{field: active},
			})
		}
	}

	intRange := func(field string, min, max *int) {
		if min == nil && max == nil {
			return
		}
		bounds := map[string]interface{}{}
		if min != nil {
			bounds["gte"] = *min
		}
		if max != nil {
			bounds["lte"] = *max
		}
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{field: bounds},
		})
	}

	term("type", filters.Type)
	term("status", filters.Status)
	term("rating", filters.Rating)
	term("source", filters.Source)
	term("season", filters.Season)
	term("score_range", filters.ScoreRange)
	term("episode_range", filters.EpisodeRange)

	terms("genre_names", filters.Genres)
	terms("studio_names", filters.Studios)
	terms("theme_names", filters.Themes)
	terms("demographic_names", filters.Demographics)

	if filters.MinScore != nil || filters.MaxScore != nil {
		scoreRange := map[string]interface{}{}
		if filters.MinScore != nil {
			scoreRange["gte"] = *filters.MinScore
		}
		if filters.MaxScore != nil {
			scoreRange["lte"] = *filters.MaxScore
		}
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{"score": scoreRange},
		})
	}

	intRange("year", filters.MinYear, filters.MaxYear)
	intRange("episodes", filters.MinEpisodes, filters.MaxEpisodes)
	intRange("duration_minutes", filters.MinDuration, filters.MaxDuration)

	if filters.PopularOnly {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{"is_popular": true},
		})
	}

	return clauses
}

// defaultSort breaks relevance ties with popularity rank, then score.
// Documents missing either value sort last so unranked entries never
// crowd out ranked ones.
func defaultSort() []interface{} {
	return []interface{}{
		map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
		map[string]interface{}{"popularity": map[string]interface{}{"order": "asc", "missing": "_last"}},
		map[string]interface{}{"score": map[string]interface{}{"order": "desc", "missing": "_last"}},
	}
}

// sortClause maps an advanced-search sort key to an engine sort so ordering
// holds across the whole result set, not just the current page. Numeric
// fields treat missing values as zero; title sorts missing entries to the
// far end.
func sortClause(sortBy, order string) []interface{} {
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	switch sortBy {
	case "relevance":
		return defaultSort()
	case "popularity", "year", "episodes":
		return []interface{}{
			map[string]interface{}{sortBy: map[string]interface{}{"order": order, "missing": 0}},
		}
	case "title":
		missing := "_last"
		if order == "desc" {
			missing = "_first"
		}
		return []interface{}{
			map[string]interface{}{"title.keyword": map[string]interface{}{"order": order, "missing": missing}},
		}
	default:
		return []interface{}{
			map[string]interface{}{"score": map[string]interface{}{"order": order, "missing": 0}},
		}
	}
}

// buildAdvancedSearchBody is buildSearchBody with a caller-chosen sort
// replacing the relevance ordering
func buildAdvancedSearchBody(query string, filters Filters, sortBy, order string, page, size int) map[string]interface{} {
	body := buildSearchBody(query, filters, page, size)
	body["sort"] = sortClause(sortBy, order)
	return body
}

// buildSuggestBody matches a prefix against the suggestion index. The type
// filter compares against the lowercase type keyword, so the caller's value
// is folded before the term clause.
func buildSuggestBody(prefix, entityType string, limit int) map[string]interface{} {
	must := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     prefix,
				"fields":    []string{"search_full_names^6", "search_key_names^4"},
				"operator":  "and",
				"fuzziness": "AUTO",
			},
		},
	}

	boolQuery := map[string]interface{}{"must": must}
	if filterActive(entityType) {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"type": strings.ToLower(entityType)}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  limit,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"popularity": map[string]interface{}{"order": "asc", "missing": "_last"}},
		},
	}
}

func facetAggregations() map[string]interface{} {
	return map[string]interface{}{
		"genres": map[string]interface{}{
			"terms": map[string]interface{}{"field": "genre_names", "size": 20},
		},
		"types": map[string]interface{}{
			"terms": map[string]interface{}{"field": "type", "size": 10},
		},
		"seasons": map[string]interface{}{
			"terms": map[string]interface{}{"field": "season", "size": 10},
		},
		"years": map[string]interface{}{
			"histogram": map[string]interface{}{"field": "year", "interval": 1},
		},
		"score_ranges": map[string]interface{}{
			"terms": map[string]interface{}{"field": "score_range", "size": 5},
		},
	}
}

// TotalPages is ceil(total/size); zero results mean zero pages
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
