package store

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/serroba/shortlink/internal/shortener"
)

// LocalCacheRepository wraps a Repository with an in-process ristretto cache.
// It sits in front of remote stores to keep hot redirects off the network.
type LocalCacheRepository struct {
	store shortener.Repository
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewLocalCacheRepository creates a cache holding up to maxItems links.
func NewLocalCacheRepository(
	store shortener.Repository, maxItems int64, ttl time.Duration,
) (*LocalCacheRepository, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // track frequency for 10x the admitted keys
		MaxCost:     maxItems,      // every entry costs 1
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &LocalCacheRepository{
		store: store,
		cache: cache,
		ttl:   ttl,
	}, nil
}

func (l *LocalCacheRepository) Insert(ctx context.Context, link *shortener.Link) error {
	if err := l.store.Insert(ctx, link); err != nil {
		return err
	}

	l.set(link)

	return nil
}

func (l *LocalCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	if v, ok := l.cache.Get(codeKey(code)); ok {
		link := v.(shortener.Link)

		return &link, nil
	}

	link, err := l.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	l.set(link)

	return link, nil
}

func (l *LocalCacheRepository) GetByURL(ctx context.Context, originalURL string) (*shortener.Link, error) {
	if v, ok := l.cache.Get(urlKey(originalURL)); ok {
		link := v.(shortener.Link)

		return &link, nil
	}

	link, err := l.store.GetByURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	l.set(link)

	return link, nil
}

// Wait blocks until buffered cache writes have been applied.
func (l *LocalCacheRepository) Wait() {
	l.cache.Wait()
}

// Shutdown releases the cache's background goroutines.
func (l *LocalCacheRepository) Shutdown() error {
	l.cache.Close()

	return nil
}

func (l *LocalCacheRepository) set(link *shortener.Link) {
	l.cache.SetWithTTL(codeKey(link.Code), *link, 1, l.ttl)
	l.cache.SetWithTTL(urlKey(link.OriginalURL), *link, 1, l.ttl)
}

func codeKey(code shortener.Code) string {
	return "c:" + string(code)
}

func urlKey(originalURL string) string {
	return "u:" + originalURL
}

// Compile-time check.
var _ shortener.Repository = (*LocalCacheRepository)(nil)
