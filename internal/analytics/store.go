package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkResolved(ctx context.Context, event *LinkResolvedEvent) error
}

// Stats reads aggregated counters back.
type Stats interface {
	Clicks(ctx context.Context, code string) (int64, error)
}
