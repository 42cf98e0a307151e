package events

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// PubSubEmitter publishes rejection events to a Pub/Sub topic
type PubSubEmitter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubEmitter uses ctx only to build the client. Publishing outlives it;
// Close flushes whatever is still pending.
func NewPubSubEmitter(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*PubSubEmitter, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub.NewClient: %w", err)
	}

	return &PubSubEmitter{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

func (e *PubSubEmitter) Emit(event RejectionEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("pubsub marshal failed")
		return
	}

	res := e.topic.Publish(context.Background(), &pubsub.Message{
		Data:       b,
		Attributes: Attributes(event),
	})

	go func() {
		if _, err := res.Get(context.Background()); err != nil {
			log.Warn().Err(err).Str("request_id", event.RequestID).Msg("pubsub publish failed")
			return
		}
		log.Debug().Str("request_id", event.RequestID).Msg("rejection event published")
	}()
}

// Close flushes pending messages and releases the client
func (e *PubSubEmitter) Close() error {
	e.topic.Stop()
	return e.client.Close()
}

// Attributes are the Pub/Sub message attributes subscribers can filter on.
func Attributes(event RejectionEvent) map[string]string {
	return map[string]string{
		"resource": event.Resource,
		"ruleset":  event.Ruleset,
		"rule":     event.Rule,
	}
}
