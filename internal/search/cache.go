package search

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/repository"
)

const (
	searchCacheTTL    = 5 * time.Minute
	filterCacheTTL    = 30 * time.Minute
	searchCachePrefix = "animedex:search"
)

// CachedService wraps a Searcher with a Redis read-through cache. A nil
// Redis client disables caching entirely, so the wrapper is safe to use
// when Redis is not deployed.
type CachedService struct {
	inner Searcher
	redis *redis.Client
}

// NewCachedService wraps the given searcher with caching
func NewCachedService(inner Searcher, redisClient *redis.Client) *CachedService {
	return &CachedService{inner: inner, redis: redisClient}
}

// cacheKey hashes request parameters into a bounded-length key
func cacheKey(operation string, params ...interface{}) string {
	payload, _ := json.Marshal(params)
	return fmt.Sprintf("%s:%s:%x", searchCachePrefix, operation, md5.Sum(payload))
}

// getCached fetches and decodes a cached value; any miss or error falls
// through to the origin
func (c *CachedService) getCached(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil {
		return false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("Cache entry undecodable, evicting", zap.String("key", key), zap.Error(err))
		c.redis.Del(ctx, key)
		return false
	}

	return true
}

func (c *CachedService) setCached(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Search serves from cache when possible. Degraded empty pages are cached
// too; the short TTL bounds how long a stale empty page can linger.
func (c *CachedService) Search(ctx context.Context, query string, filters Filters, page, size int) (*Results, error) {
	key := cacheKey("search", query, filters, page, size)

	var cached Results
	if c.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	results, err := c.inner.Search(ctx, query, filters, page, size)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, results, searchCacheTTL)
	return results, nil
}

// AdvancedSearch serves from cache when possible
func (c *CachedService) AdvancedSearch(ctx context.Context, query string, filters Filters, sortBy, order string, page, size int) (*Results, error) {
	key := cacheKey("advanced", query, filters, sortBy, order, page, size)

	var cached Results
	if c.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	results, err := c.inner.AdvancedSearch(ctx, query, filters, sortBy, order, page, size)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, results, searchCacheTTL)
	return results, nil
}

// GetByID serves from cache when possible. Not-found results are never
// cached so a freshly indexed anime appears immediately.
func (c *CachedService) GetByID(ctx context.Context, malID int) (*AnimeDoc, error) {
	key := cacheKey("anime", malID)

	var cached AnimeDoc
	if c.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	doc, err := c.inner.GetByID(ctx, malID)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, doc, searchCacheTTL)
	return doc, nil
}

// GetByCategory serves from cache when possible
func (c *CachedService) GetByCategory(ctx context.Context, kind, name string, page, size int) (*Results, error) {
	key := cacheKey("category", kind, name, page, size)

	var cached Results
	if c.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	results, err := c.inner.GetByCategory(ctx, kind, name, page, size)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, results, searchCacheTTL)
	return results, nil
}

// Suggest passes through uncached. Autocomplete traffic is prefix-shaped
// and rarely repeats exactly, so caching it buys little.
func (c *CachedService) Suggest(ctx context.Context, prefix, entityType string, limit int) ([]Suggestion, error) {
	return c.inner.Suggest(ctx, prefix, entityType, limit)
}

// FilterOptions serves from cache with a long TTL; facet values only
// change on catalog imports
func (c *CachedService) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	key := cacheKey("filters")

	var cached repository.FilterOptions
	if c.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	options, err := c.inner.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}

	c.setCached(ctx, key, options, filterCacheTTL)
	return options, nil
}
