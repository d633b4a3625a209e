package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// Publishers are the typed publish functions used by the HTTP layer.
type Publishers struct {
	LinkCreated  messaging.Publish[LinkCreatedEvent]
	LinkResolved messaging.Publish[LinkResolvedEvent]
}

func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		LinkCreated:  messaging.NewPublishFunc[LinkCreatedEvent](publisher, TopicLinkCreated),
		LinkResolved: messaging.NewPublishFunc[LinkResolvedEvent](publisher, TopicLinkResolved),
	}
}

// NewConsumers returns one consumer per analytics topic, each writing to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer[LinkCreatedEvent](subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer[LinkResolvedEvent](subscriber, TopicLinkResolved, store.SaveLinkResolved, logger),
	}
}
