package search

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/metrics"
	"github.com/animedex/backend/internal/repository"
)

const defaultBatchSize = 500

// Indexer drives full reindex runs from the catalog into the search engine
type Indexer struct {
	client    *Client
	catalog   repository.CatalogRepository
	batchSize int
	workers   int
}

// Summary reports the outcome of a reindex run
type Summary struct {
	AnimeIndexed       int                   `json:"anime_indexed"`
	AnimeFailed        int                   `json:"anime_failed"`
	SuggestionsIndexed int                   `json:"suggestions_indexed"`
	SuggestionsFailed  int                   `json:"suggestions_failed"`
	Duration           time.Duration         `json:"-"`
	DurationSeconds    float64               `json:"duration_seconds"`
	Indices            map[string]IndexStats `json:"indices"`
}

// NewIndexer creates an indexer. Batch size comes from ES_BATCH_SIZE;
// worker count follows available CPUs, capped to keep bulk request
// concurrency reasonable for a single-node engine.
func NewIndexer(client *Client, catalog repository.CatalogRepository) *Indexer {
	batchSize := defaultBatchSize
	if v := os.Getenv("ES_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			batchSize = parsed
		}
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	return &Indexer{
		client:    client,
		catalog:   catalog,
		batchSize: batchSize,
		workers:   workers,
	}
}

// ReindexAll rebuilds both indices from the catalog. Refresh is disabled
// for the duration of the bulk load and restored afterwards, so documents
// only become searchable once the run completes.
func (i *Indexer) ReindexAll(ctx context.Context) (*Summary, error) {
	start := time.Now()
	metrics.ReindexRuns.Inc()

	if err := i.client.EnsureIndices(ctx); err != nil {
		return nil, err
	}

	for _, index := range []string{i.client.AnimeIndex(), i.client.SuggestionsIndex()} {
		if err := i.client.SetRefreshInterval(ctx, index, "-1"); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}

	animeOK, animeFailed, err := i.indexAnime(ctx)
	if err != nil {
		i.restoreRefresh(ctx)
		return nil, err
	}
	summary.AnimeIndexed = animeOK
	summary.AnimeFailed = animeFailed

	suggestOK, suggestFailed, err := i.indexSuggestions(ctx)
	if err != nil {
		i.restoreRefresh(ctx)
		return nil, err
	}
	summary.SuggestionsIndexed = suggestOK
	summary.SuggestionsFailed = suggestFailed

	i.restoreRefresh(ctx)

	// Give the engine a moment to apply the restored interval before forcing
	// visibility
	time.Sleep(time.Second)
	if err := i.client.Refresh(ctx, i.client.AnimeIndex(), i.client.SuggestionsIndex()); err != nil {
		logger.Warn("Failed to refresh indices after reindex", zap.Error(err))
	}

	if stats, err := i.client.Stats(ctx); err == nil {
		summary.Indices = stats
	} else {
		logger.Warn("Failed to fetch index stats after reindex", zap.Error(err))
	}

	summary.Duration = time.Since(start)
	summary.DurationSeconds = summary.Duration.Seconds()
	metrics.ReindexDuration.Observe(summary.DurationSeconds)

	logger.Info("Reindex complete",
		zap.Int("anime_indexed", summary.AnimeIndexed),
		zap.Int("anime_failed", summary.AnimeFailed),
		zap.Int("suggestions_indexed", summary.SuggestionsIndexed),
		zap.Int("suggestions_failed", summary.SuggestionsFailed),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// indexAnime streams catalog rows in offset batches through a worker pool.
// Each worker owns its batch end to end: fetch, map, bulk write.
func (i *Indexer) indexAnime(ctx context.Context) (succeeded, failed int, err error) {
	total, err := i.catalog.CountAnime(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count anime: %w", err)
	}
	if total == 0 {
		logger.Warn("Catalog contains no anime, skipping anime indexing")
		return 0, 0, nil
	}

	offsets := make(chan int)
	var wg sync.WaitGroup
	var okCount, failCount atomic.Int64

	// Batches are independent: a failed fetch or bulk call marks its batch
	// failed and the worker moves on, so one sick dependency never stalls
	// the producer or aborts the run
	for w := 0; w < i.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for offset := range offsets {
				remaining := int(total) - offset
				if remaining > i.batchSize {
					remaining = i.batchSize
				}

				rows, err := i.catalog.FetchAnimeRows(ctx, i.batchSize, offset)
				if err != nil {
					logger.Error("Failed to fetch anime batch, marking failed",
						zap.Int("offset", offset),
						zap.Int("batch_size", remaining),
						zap.Error(err),
					)
					failCount.Add(int64(remaining))
					continue
				}

				docs := make([]bulkDoc, 0, len(rows))
				for _, row := range rows {
					docs = append(docs, bulkDoc{
						ID:     strconv.Itoa(row.MalID),
						Source: BuildAnimeDoc(row),
					})
				}

				ok, bad, err := i.client.bulkIndex(ctx, i.client.AnimeIndex(), docs)
				if err != nil {
					logger.Error("Bulk indexing failed for anime batch, marking failed",
						zap.Int("offset", offset),
						zap.Int("batch_size", len(docs)),
						zap.Error(err),
					)
					failCount.Add(int64(len(docs)))
					continue
				}
				okCount.Add(int64(ok))
				failCount.Add(int64(bad))

				logger.Info("Indexed anime batch",
					zap.Int("offset", offset),
					zap.Int("batch_size", len(docs)),
					zap.Int("failed", bad),
				)
			}
		}()
	}

	for offset := 0; offset < int(total); offset += i.batchSize {
		select {
		case offsets <- offset:
		case <-ctx.Done():
			close(offsets)
			wg.Wait()
			return int(okCount.Load()), int(failCount.Load()), ctx.Err()
		}
	}
	close(offsets)
	wg.Wait()

	return int(okCount.Load()), int(failCount.Load()), nil
}

// indexSuggestions builds the autocomplete index from anime seeds plus all
// named entities. Entities reachable from several anime dedupe on DocID.
func (i *Indexer) indexSuggestions(ctx context.Context) (succeeded, failed int, err error) {
	seeds, err := i.catalog.FetchSuggestionSeeds(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch suggestion seeds: %w", err)
	}

	docs := make([]SuggestionDoc, 0, len(seeds))
	for _, seed := range seeds {
		docs = append(docs, BuildAnimeSuggestion(seed))
	}

	entitySources := []struct {
		kind string
		list func(context.Context) ([]repository.EntityRef, error)
	}{
		{"studio", i.catalog.ListStudios},
		{"genre", i.catalog.ListGenres},
		{"theme", i.catalog.ListThemes},
		{"demographic", i.catalog.ListDemographics},
	}
	for _, src := range entitySources {
		refs, err := src.list(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to list %s entities: %w", src.kind, err)
		}
		for _, ref := range refs {
			docs = append(docs, BuildEntitySuggestion(src.kind, ref))
		}
	}

	seen := make(map[string]struct{}, len(docs))
	batch := make([]bulkDoc, 0, i.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ok, bad, err := i.client.bulkIndex(ctx, i.client.SuggestionsIndex(), batch)
		if err != nil {
			logger.Error("Bulk indexing failed for suggestion batch, marking failed",
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			failed += len(batch)
		} else {
			succeeded += ok
			failed += bad
		}
		batch = batch[:0]
	}

	for _, doc := range docs {
		id := doc.DocID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		batch = append(batch, bulkDoc{ID: id, Source: doc})
		if len(batch) >= i.batchSize {
			flush()
		}
	}
	flush()

	logger.Info("Indexed suggestions", zap.Int("count", succeeded), zap.Int("failed", failed))
	return succeeded, failed, nil
}

func (i *Indexer) restoreRefresh(ctx context.Context) {
	for _, index := range []string{i.client.AnimeIndex(), i.client.SuggestionsIndex()} {
		if err := i.client.SetRefreshInterval(ctx, index, "1s"); err != nil {
			logger.Warn("Failed to restore refresh interval", logger.WithIndex(index), zap.Error(err))
		}
	}
}
