package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/analytics"
)

const linkStatsPrefix = "analytics:link:"

// Redis keeps a hash of counters per short code.
//
// Events are delivered at least once, so a redelivered resolve is counted twice.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	key := linkStatsPrefix + event.Code

	pipe := r.client.TxPipeline()
	pipe.HSetNX(ctx, key, "created_at", event.CreatedAt.UTC().Format(time.RFC3339Nano))
	pipe.HIncrBy(ctx, key, "shorten_requests", 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save link created: %w", err)
	}

	return nil
}

func (r *Redis) SaveLinkResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error {
	key := linkStatsPrefix + event.Code

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "clicks", 1)
	pipe.HSet(ctx, key, "last_resolved_at", event.ResolvedAt.UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save link resolved: %w", err)
	}

	return nil
}

// Clicks returns how many redirects were recorded for code.
func (r *Redis) Clicks(ctx context.Context, code string) (int64, error) {
	clicks, err := r.client.HGet(ctx, linkStatsPrefix+code, "clicks").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("get clicks: %w", err)
	}

	return clicks, nil
}
