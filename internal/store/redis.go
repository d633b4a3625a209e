package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// insertLinkScript registers a link only if neither its code nor its URL is taken.
// Returns the new id, or 0 on conflict.
//
// KEYS[1] link hash, KEYS[2] url index, KEYS[3] id sequence
// ARGV[1] code, ARGV[2] original url, ARGV[3] created_at (unix nanos)
var insertLinkScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
if redis.call('HEXISTS', KEYS[2], ARGV[2]) == 1 then
	return 0
end
local id = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'id', id, 'code', ARGV[1], 'original_url', ARGV[2], 'created_at', ARGV[3])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
return id
`)

// linksHashTag pins every key the insert script touches to one cluster slot.
const linksHashTag = "{links}:"

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client redis.UniversalClient
	prefix string // "{links}:code:" for code->link (hash per code)
	urlKey string // "{links}:urls" for url->code (hash map)
	seqKey string // "{links}:ids" id sequence
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: linksHashTag + "code:",
		urlKey: linksHashTag + "urls",
		seqKey: linksHashTag + "ids",
	}
}

func (r *RedisStore) Insert(ctx context.Context, link *shortener.Link) error {
	id, err := insertLinkScript.Run(ctx, r.client,
		[]string{r.prefix + string(link.Code), r.urlKey, r.seqKey},
		string(link.Code), link.OriginalURL, link.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}

	if id == 0 {
		return shortener.ErrConflict
	}

	link.ID = id

	return nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return linkFromHash(result), nil
}

func (r *RedisStore) GetByURL(ctx context.Context, originalURL string) (*shortener.Link, error) {
	code, err := r.client.HGet(ctx, r.urlKey, originalURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("get link by url: %w", err)
	}

	return r.GetByCode(ctx, shortener.Code(code))
}

// linkFromHash decodes a link stored as a redis hash. Missing or malformed numeric
// fields decode as zero values.
func linkFromHash(fields map[string]string) *shortener.Link {
	link := &shortener.Link{
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
	}

	if id, err := strconv.ParseInt(fields["id"], 10, 64); err == nil {
		link.ID = id
	}

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		link.CreatedAt = time.Unix(0, nanos)
	}

	return link
}

func linkToHash(link *shortener.Link) map[string]any {
	return map[string]any{
		"id":           link.ID,
		"code":         string(link.Code),
		"original_url": link.OriginalURL,
		"created_at":   link.CreatedAt.UnixNano(),
	}
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
