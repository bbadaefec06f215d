package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/metrics"
	"github.com/elastic/go-elasticsearch/v9"
)

// Default index names. Configurable via environment, but must remain stable
// for the lifetime of a process since document IDs live inside them.
const (
	defaultAnimeIndex       = "anime_index"
	defaultSuggestionsIndex = "search_suggestions_index"
)

// Client wraps the Elasticsearch client with catalog-specific functionality
type Client struct {
	es               *elasticsearch.Client
	animeIndex       string
	suggestionsIndex string
}

// NewClient creates a new Elasticsearch client and verifies connectivity
func NewClient() (*Client, error) {
	esURL := os.Getenv("ELASTICSEARCH_URL")
	if esURL == "" {
		esURL = "http://localhost:9200"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
		// Transient failures retry a bounded number of times before surfacing
		MaxRetries:    3,
		RetryOnStatus: []int{429, 502, 503, 504},
		Transport: &http.Transport{
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{
		es:               es,
		animeIndex:       envOrDefault("ANIME_INDEX", defaultAnimeIndex),
		suggestionsIndex: envOrDefault("SUGGESTIONS_INDEX", defaultSuggestionsIndex),
	}

	// Verify connection
	if _, err := es.Info(); err != nil {
		metrics.ConnectionErrors.Inc()
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	return client, nil
}

// AnimeIndex returns the configured anime index name
func (c *Client) AnimeIndex() string {
	return c.animeIndex
}

// SuggestionsIndex returns the configured suggestions index name
func (c *Client) SuggestionsIndex() string {
	return c.suggestionsIndex
}

// EnsureIndices creates both indices with their mappings if absent.
// Creation is idempotent; existing indices are left untouched.
func (c *Client) EnsureIndices(ctx context.Context) error {
	if err := c.createIndex(ctx, c.animeIndex, animeIndexMapping()); err != nil {
		return fmt.Errorf("failed to create anime index: %w", err)
	}

	if err := c.createIndex(ctx, c.suggestionsIndex, suggestionsIndexMapping()); err != nil {
		return fmt.Errorf("failed to create suggestions index: %w", err)
	}

	return nil
}

// createIndex creates an Elasticsearch index with the given mapping
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	// If index exists (status 200), skip creation
	if res.StatusCode == 200 {
		logger.Info("Index already exists, skipping creation", logger.WithIndex(indexName))
		return nil
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error creating index: [%s] %v", res.Status(), errResp["error"])
	}

	metrics.IndexOperationsTotal.WithLabelValues(indexName, "create").Inc()
	logger.Info("Created index", logger.WithIndex(indexName))
	return nil
}

// DeleteIndices unconditionally drops both indices. Destructive and
// irreversible; intended only for re-seeding workflows.
func (c *Client) DeleteIndices(ctx context.Context) error {
	for _, indexName := range []string{c.animeIndex, c.suggestionsIndex} {
		res, err := c.es.Indices.Delete([]string{indexName},
			c.es.Indices.Delete.WithContext(ctx),
			c.es.Indices.Delete.WithIgnoreUnavailable(true),
		)
		if err != nil {
			return fmt.Errorf("failed to delete index %s: %w", indexName, err)
		}
		res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("error deleting index %s: [%s]", indexName, res.Status())
		}

		metrics.IndexOperationsTotal.WithLabelValues(indexName, "delete").Inc()
		logger.Info("Deleted index", logger.WithIndex(indexName))
	}

	return nil
}

// SetRefreshInterval updates the refresh interval on an index. Bulk loads
// disable near-real-time refresh ("-1") for throughput and restore it after.
func (c *Client) SetRefreshInterval(ctx context.Context, indexName, interval string) error {
	settings := map[string]interface{}{
		"index": map[string]interface{}{
			"refresh_interval": interval,
		},
	}

	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	res, err := c.es.Indices.PutSettings(bytes.NewReader(body),
		c.es.Indices.PutSettings.WithIndex(indexName),
		c.es.Indices.PutSettings.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to update index settings: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error updating settings on %s: [%s]", indexName, res.Status())
	}

	return nil
}

// Refresh forces a refresh so freshly indexed documents become searchable
func (c *Client) Refresh(ctx context.Context, indexNames ...string) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(indexNames...),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to refresh indices: %w", err)
	}
	res.Body.Close()
	return nil
}

// bulkDoc is one document in a bulk upsert request
type bulkDoc struct {
	ID     string
	Source interface{}
}

// bulkIndex submits one batched upsert call. Individual document failures are
// counted, not fatal; only transport-level errors abort the batch.
func (c *Client) bulkIndex(ctx context.Context, indexName string, docs []bulkDoc) (succeeded, failed int, err error) {
	if len(docs) == 0 {
		return 0, 0, nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		meta := map[string]map[string]string{
			"index": {"_index": indexName, "_id": doc.ID},
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		sourceJSON, err := json.Marshal(doc.Source)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}
		buf.Write(metaJSON)
		buf.WriteByte('\n')
		buf.Write(sourceJSON)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return 0, len(docs), fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, len(docs), fmt.Errorf("bulk request error: [%s]", res.Status())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return 0, len(docs), fmt.Errorf("failed to decode bulk response: %w", err)
	}

	if !bulkResp.Errors {
		succeeded = len(docs)
	} else {
		for _, item := range bulkResp.Items {
			for _, result := range item {
				if result.Status >= 200 && result.Status < 300 {
					succeeded++
				} else {
					failed++
				}
			}
		}
	}

	metrics.DocumentsIndexed.WithLabelValues(indexName, "success").Add(float64(succeeded))
	metrics.DocumentsIndexed.WithLabelValues(indexName, "failed").Add(float64(failed))

	return succeeded, failed, nil
}

// searchResponse is the subset of the engine's search reply the façade consumes
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// executeSearch runs a structured query against one index
func (c *Client) executeSearch(ctx context.Context, indexName string, body map[string]interface{}) (*searchResponse, error) {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	start := time.Now()
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indexName),
		c.es.Search.WithBody(bytes.NewReader(bodyJSON)),
	)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchDuration.WithLabelValues(indexName, "search", status).Observe(time.Since(start).Seconds())
	metrics.SearchesTotal.WithLabelValues(indexName, "search", status).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("error response [%s]", res.Status())
		}
		return nil, fmt.Errorf("search error: [%s] %v", res.Status(), errResp["error"])
	}

	var searchResp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return &searchResp, nil
}

// GetAnime fetches one anime document by its MAL ID.
// Returns (nil, nil) when the document does not exist.
func (c *Client) GetAnime(ctx context.Context, malID int) (*AnimeDoc, error) {
	res, err := c.es.Get(c.animeIndex, fmt.Sprintf("%d", malID),
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get anime %d: %w", malID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("error getting anime %d: [%s]", malID, res.Status())
	}

	var getResp struct {
		Source AnimeDoc `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&getResp); err != nil {
		return nil, fmt.Errorf("failed to decode get response: %w", err)
	}

	return &getResp.Source, nil
}

// IndexStats reports per-index document counts and storage size
type IndexStats struct {
	Documents   int   `json:"documents"`
	SizeInBytes int64 `json:"size_in_bytes"`
}

// Stats retrieves document count and size for both indices
func (c *Client) Stats(ctx context.Context) (map[string]IndexStats, error) {
	res, err := c.es.Indices.Stats(
		c.es.Indices.Stats.WithIndex(c.animeIndex, c.suggestionsIndex),
		c.es.Indices.Stats.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get index stats: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error getting index stats: [%s]", res.Status())
	}

	var statsResp struct {
		Indices map[string]struct {
			Total struct {
				Docs struct {
					Count int `json:"count"`
				} `json:"docs"`
				Store struct {
					SizeInBytes int64 `json:"size_in_bytes"`
				} `json:"store"`
			} `json:"total"`
		} `json:"indices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&statsResp); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}

	stats := make(map[string]IndexStats, len(statsResp.Indices))
	for name, s := range statsResp.Indices {
		stats[name] = IndexStats{
			Documents:   s.Total.Docs.Count,
			SizeInBytes: s.Total.Store.SizeInBytes,
		}
	}

	return stats, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
