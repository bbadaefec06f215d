package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Elasticsearch metrics for monitoring search performance and health
var (
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "elasticsearch_query_duration_seconds",
			Help:    "Duration of Elasticsearch queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index", "operation", "status"},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elasticsearch_queries_total",
			Help: "Total number of Elasticsearch queries",
		},
		[]string{"index", "operation", "status"},
	)

	SuggestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autocomplete_suggest_total",
			Help: "Total number of autocomplete suggest requests",
		},
		[]string{"status"},
	)

	IndexOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elasticsearch_index_operations_total",
			Help: "Total number of Elasticsearch index operations",
		},
		[]string{"index", "operation"},
	)

	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elasticsearch_documents_indexed_total",
			Help: "Total number of documents written by bulk indexing",
		},
		[]string{"index", "status"},
	)

	ReindexRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reindex_runs_total",
			Help: "Total number of full reindex runs",
		},
	)

	ReindexDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reindex_duration_seconds",
			Help:    "Duration of full reindex runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	ConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elasticsearch_connection_errors_total",
			Help: "Total number of Elasticsearch connection errors",
		},
	)
)
