package store

import (
	"context"

	"github.com/serroba/shortlink/internal/analytics"
	"go.uber.org/zap"
)

// Noop discards analytics events after logging them at debug level.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	n.logger.Debug("link created",
		zap.String("code", event.Code),
		zap.String("original_url", event.OriginalURL),
		zap.Time("created_at", event.CreatedAt),
		zap.String("request_id", event.RequestID),
	)

	return nil
}

func (n *Noop) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	n.logger.Debug("link resolved",
		zap.String("code", event.Code),
		zap.Time("resolved_at", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
		zap.String("request_id", event.RequestID),
	)

	return nil
}

// Clicks always reports zero.
func (n *Noop) Clicks(context.Context, string) (int64, error) {
	return 0, nil
}
