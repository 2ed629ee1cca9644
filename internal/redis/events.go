package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"bits/internal/domain"
)

// LiveChannel is the pub/sub channel carrying incident ledger events.
const LiveChannel = "bits:live"

// EventBus publishes ledger events for live dashboard clients.
type EventBus struct {
	client *redis.Client
}

// NewEventBus creates a new EventBus.
func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{client: client}
}

// PublishIncidentEvent broadcasts an incident event.
func (b *EventBus) PublishIncidentEvent(ctx context.Context, event domain.IncidentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, LiveChannel, data).Err()
}

// Subscribe opens a subscription to the live channel. Callers must close it.
func (b *EventBus) Subscribe(ctx context.Context) *redis.PubSub {
	return b.client.Subscribe(ctx, LiveChannel)
}
