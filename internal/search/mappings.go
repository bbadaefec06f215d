package search

// animeIndexMapping declares analyzers and field mappings for the anime index.
// Titles carry keyword subfields for exact matching; relationship collections
// are nested so their fields can be queried jointly; the flat *_names arrays
// exist for exact-match filtering without nested-query overhead.
func animeIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"anime_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "english_stop", "english_stemmer"},
					},
					"japanese_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "ja_stop"},
					},
				},
				"filter": map[string]interface{}{
					"english_stop": map[string]interface{}{
						"type":      "stop",
						"stopwords": "_english_",
					},
					"english_stemmer": map[string]interface{}{
						"type":     "stemmer",
						"language": "english",
					},
					"ja_stop": map[string]interface{}{
						"type":      "stop",
						"stopwords": []string{"の", "に", "は", "を", "た", "が", "で", "て", "と", "し", "れ", "さ", "ある"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"mal_id": map[string]interface{}{"type": "integer"},

				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "anime_analyzer",
					"fields": map[string]interface{}{
						"keyword":  map[string]interface{}{"type": "keyword"},
						"japanese": map[string]interface{}{"type": "text", "analyzer": "japanese_analyzer"},
					},
				},
				"title_english": map[string]interface{}{
					"type":     "text",
					"analyzer": "anime_analyzer",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"title_japanese": map[string]interface{}{
					"type":     "text",
					"analyzer": "japanese_analyzer",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"title_synonyms": map[string]interface{}{
					// Each array item is a separate exact value
					"type": "keyword",
					"fields": map[string]interface{}{
						"text": map[string]interface{}{"type": "text", "analyzer": "anime_analyzer"},
					},
				},

				"synopsis": map[string]interface{}{"type": "text", "analyzer": "anime_analyzer"},

				"type":   map[string]interface{}{"type": "keyword"},
				"source": map[string]interface{}{"type": "keyword"},
				"status": map[string]interface{}{"type": "keyword"},
				"rating": map[string]interface{}{"type": "keyword"},

				"score":            map[string]interface{}{"type": "float"},
				"popularity":       map[string]interface{}{"type": "integer"},
				"episodes":         map[string]interface{}{"type": "integer"},
				"duration":         map[string]interface{}{"type": "keyword", "index": false},
				"duration_minutes": map[string]interface{}{"type": "integer"},

				"season":       map[string]interface{}{"type": "keyword"},
				"year":         map[string]interface{}{"type": "integer"},
				"aired_string": map[string]interface{}{"type": "keyword", "index": false},

				"image_url":   map[string]interface{}{"type": "keyword", "index": false},
				"trailer_url": map[string]interface{}{"type": "keyword", "index": false},

				"studios":      nestedEntityMapping(),
				"genres":       nestedEntityMapping(),
				"themes":       nestedEntityMapping(),
				"demographics": nestedEntityMapping(),
				"characters": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"mal_id":    map[string]interface{}{"type": "integer"},
						"name":      map[string]interface{}{"type": "text", "analyzer": "anime_analyzer"},
						"role":      map[string]interface{}{"type": "keyword"},
						"favorites": map[string]interface{}{"type": "integer"},
						"image_url": map[string]interface{}{"type": "keyword", "index": false},
						"voice_actors": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"mal_id":    map[string]interface{}{"type": "integer"},
								"name":      map[string]interface{}{"type": "text", "analyzer": "anime_analyzer"},
								"image_url": map[string]interface{}{"type": "keyword", "index": false},
							},
							// Stored for display, never queried directly
							"enabled": false,
						},
					},
				},

				"studio_names":      map[string]interface{}{"type": "keyword"},
				"genre_names":       map[string]interface{}{"type": "keyword"},
				"theme_names":       map[string]interface{}{"type": "keyword"},
				"demographic_names": map[string]interface{}{"type": "keyword"},
				"character_names":   map[string]interface{}{"type": "keyword"},

				"is_popular":    map[string]interface{}{"type": "boolean"},
				"score_range":   map[string]interface{}{"type": "keyword"},
				"episode_range": map[string]interface{}{"type": "keyword"},
			},
		},
	}
}

func nestedEntityMapping() map[string]interface{} {
	return map[string]interface{}{
		"type": "nested",
		"properties": map[string]interface{}{
			"mal_id":      map[string]interface{}{"type": "integer"},
			"name":        map[string]interface{}{"type": "keyword"},
			"name_search": map[string]interface{}{"type": "text", "analyzer": "anime_analyzer"},
		},
	}
}

// suggestionsIndexMapping declares the autocomplete index: edge n-gram
// expansion at index time paired with a standard analyzer at search time, plus
// a completion field with an entity_type category context.
func suggestionsIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"autocomplete_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "autocomplete_filter"},
					},
				},
				"filter": map[string]interface{}{
					"autocomplete_filter": map[string]interface{}{
						"type":     "edge_ngram",
						"min_gram": 2,
						"max_gram": 10,
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"type":      map[string]interface{}{"type": "keyword"},
				"mal_id":    map[string]interface{}{"type": "integer"},
				"main_name": map[string]interface{}{"type": "keyword", "index": false},
				"search_full_names": map[string]interface{}{
					"type":            "text",
					"analyzer":        "autocomplete_analyzer",
					"search_analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"search_key_names": map[string]interface{}{
					"type":            "text",
					"analyzer":        "autocomplete_analyzer",
					"search_analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"subtype":    map[string]interface{}{"type": "keyword"},
				"score":      map[string]interface{}{"type": "float"},
				"popularity": map[string]interface{}{"type": "integer"},
				"image_url":  map[string]interface{}{"type": "keyword", "index": false},
				"suggest": map[string]interface{}{
					"type": "completion",
					"contexts": []map[string]interface{}{
						{
							"name": "entity_type",
							"type": "category",
						},
					},
				},
			},
		},
	}
}
