package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animedex/backend/internal/repository"
)

type stubCatalog struct {
	total    int64
	fetchErr error
}

func (s *stubCatalog) CountAnime(ctx context.Context) (int64, error) {
	return s.total, nil
}

func (s *stubCatalog) FetchAnimeRows(ctx context.Context, limit, offset int) ([]repository.AnimeRow, error) {
	return nil, s.fetchErr
}

func (s *stubCatalog) FetchSuggestionSeeds(ctx context.Context) ([]repository.SuggestionSeed, error) {
	return nil, nil
}

func (s *stubCatalog) ListStudios(ctx context.Context) ([]repository.EntityRef, error) {
	return nil, nil
}

func (s *stubCatalog) ListGenres(ctx context.Context) ([]repository.EntityRef, error) {
	return nil, nil
}

func (s *stubCatalog) ListThemes(ctx context.Context) ([]repository.EntityRef, error) {
	return nil, nil
}

func (s *stubCatalog) ListDemographics(ctx context.Context) ([]repository.EntityRef, error) {
	return nil, nil
}

func (s *stubCatalog) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return nil, nil
}

func TestNewIndexerBatchSize(t *testing.T) {
	idx := NewIndexer(nil, nil)
	assert.Equal(t, defaultBatchSize, idx.batchSize)
	assert.GreaterOrEqual(t, idx.workers, 1)
	assert.LessOrEqual(t, idx.workers, 8)

	t.Setenv("ES_BATCH_SIZE", "250")
	idx = NewIndexer(nil, nil)
	assert.Equal(t, 250, idx.batchSize)

	t.Setenv("ES_BATCH_SIZE", "junk")
	idx = NewIndexer(nil, nil)
	assert.Equal(t, defaultBatchSize, idx.batchSize)

	t.Setenv("ES_BATCH_SIZE", "-10")
	idx = NewIndexer(nil, nil)
	assert.Equal(t, defaultBatchSize, idx.batchSize)
}

// A catalog that errors on every batch must not wedge the worker pool: each
// failed batch is counted and the run drains to completion.
func TestIndexAnimeFailedBatchesDoNotStall(t *testing.T) {
	catalog := &stubCatalog{total: 100, fetchErr: errors.New("connection refused")}
	idx := &Indexer{catalog: catalog, batchSize: 10, workers: 4}

	type result struct {
		succeeded, failed int
		err               error
	}
	done := make(chan result, 1)
	go func() {
		ok, bad, err := idx.indexAnime(context.Background())
		done <- result{ok, bad, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 0, res.succeeded)
		assert.Equal(t, 100, res.failed)
	case <-time.After(5 * time.Second):
		t.Fatal("indexAnime did not return")
	}
}

func TestIndexAnimeFailedCountClampedToRemaining(t *testing.T) {
	catalog := &stubCatalog{total: 25, fetchErr: errors.New("connection refused")}
	idx := &Indexer{catalog: catalog, batchSize: 10, workers: 2}

	ok, bad, err := idx.indexAnime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ok)
	assert.Equal(t, 25, bad)
}

func TestIndexAnimeCancelledContext(t *testing.T) {
	catalog := &stubCatalog{total: 100, fetchErr: errors.New("connection refused")}
	idx := &Indexer{catalog: catalog, batchSize: 10, workers: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := idx.indexAnime(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
