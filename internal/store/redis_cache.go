package store

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Only positive lookups are cached; links are immutable so entries never go stale.
type RedisCacheRepository struct {
	store     shortener.Repository
	client    redis.UniversalClient
	prefix    string
	urlPrefix string
	ttl       time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client redis.UniversalClient, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:     store,
		client:    client,
		prefix:    "cache:link:",
		urlPrefix: "cache:link_url:",
		ttl:       ttl,
	}
}

// Insert stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, link *shortener.Link) error {
	if err := r.store.Insert(ctx, link); err != nil {
		return err
	}

	// Write-through: update cache after successful insert
	r.cacheLink(ctx, link)

	return nil
}

// GetByCode retrieves a link by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	if link, ok := r.getFromCache(ctx, code); ok {
		return link, nil
	}

	// Cache miss - fetch from store
	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// GetByURL retrieves a link by its original URL, checking the cached URL index first.
func (r *RedisCacheRepository) GetByURL(ctx context.Context, originalURL string) (*shortener.Link, error) {
	code, err := r.client.Get(ctx, r.urlCacheKey(originalURL)).Result()
	if err == nil {
		if link, ok := r.getFromCache(ctx, shortener.Code(code)); ok {
			return link, nil
		}
	}

	link, err := r.store.GetByURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Link, bool) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil || len(result) == 0 {
		return nil, false
	}

	return linkFromHash(result), true
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.Link) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Code)

	pipe.HSet(ctx, key, linkToHash(link))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// A zero ttl keeps the entry forever, as for the link hash.
	pipe.Set(ctx, r.urlCacheKey(link.OriginalURL), string(link.Code), r.ttl)

	// Cache failures only cost a store round trip on the next read.
	_, _ = pipe.Exec(ctx)
}

// urlCacheKey indexes by digest so key size does not grow with the URL.
func (r *RedisCacheRepository) urlCacheKey(originalURL string) string {
	return r.urlPrefix + hex.EncodeToString(urlDigest(originalURL))
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
