// Package jobs publishes domain events to Pub/Sub.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// Event is one published domain event.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PubSubPublisher publishes events to one Pub/Sub topic.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher builds a publisher over the named topic.
func NewPubSubPublisher(ctx context.Context, projectID, topicID string) (*PubSubPublisher, func(), error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("jobs: create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	cleanup := func() {
		topic.Stop()
		_ = client.Close()
	}
	return &PubSubPublisher{topic: topic}, cleanup, nil
}

// Publish serializes the event and waits for the server acknowledgement.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("jobs: marshal event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": event.Type},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("jobs: publish %s: %w", event.Type, err)
	}
	return nil
}

// NopPublisher drops events, logging them at debug level.
type NopPublisher struct {
	Logger *zap.Logger
}

// Publish discards the event.
func (p NopPublisher) Publish(ctx context.Context, event Event) error {
	if p.Logger != nil {
		p.Logger.Debug("jobs: event dropped", zap.String("type", event.Type))
	}
	return nil
}
