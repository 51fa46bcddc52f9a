package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubNotifier publishes notifications to a Google Cloud Pub/Sub topic so
// downstream tooling can consume health events.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubNotifier creates a Pub/Sub client and verifies the topic exists.
// Authentication uses Google's Application Default Credentials.
func NewPubSubNotifier(ctx context.Context, projectID, topicID string) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}

	return &PubSubNotifier{client: client, topic: topic}, nil
}

// Notify publishes the text and waits for the server acknowledgement so a
// delivery failure surfaces to the caller (who logs and moves on).
func (n *PubSubNotifier) Notify(ctx context.Context, text string) error {
	result := n.topic.Publish(ctx, &pubsub.Message{Data: []byte(text)})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close stops the topic's publisher and closes the client connection.
func (n *PubSubNotifier) Close() error {
	n.topic.Stop()
	if err := n.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
