// Package pubsub implements the scrape.Queue transport on GCP Pub/Sub, so
// submitter and worker can run as separate processes sharing a topic.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/scrape"
)

// Config identifies the topic/subscription pair carrying job payloads.
type Config struct {
	ProjectID      string
	TopicID        string
	SubscriptionID string
	// Buffer between the Receive callback and Dequeue callers.
	BufferSize int
}

// Queue implements scrape.Queue over a Pub/Sub topic and subscription.
// Enqueue publishes the item as JSON and waits for the server ack. Dequeue
// reads from an internal channel fed by a background Receive loop.
type Queue struct {
	client *gcppubsub.Client
	topic  *gcppubsub.Topic
	items  chan scrape.QueueItem
	logger *zap.Logger
}

// New connects to Pub/Sub and starts the subscription receive loop. The
// loop stops when ctx is canceled.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Queue, error) {
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		return nil, fmt.Errorf("pubsub queue requires project_id and topic_id")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := gcppubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	q := &Queue{
		client: client,
		topic:  client.Topic(cfg.TopicID),
		items:  make(chan scrape.QueueItem, cfg.BufferSize),
		logger: logger,
	}

	if cfg.SubscriptionID != "" {
		sub := client.Subscription(cfg.SubscriptionID)
		go q.receive(ctx, sub)
	}
	return q, nil
}

// Enqueue publishes the item and blocks until the server acknowledges it.
func (q *Queue) Enqueue(ctx context.Context, item scrape.QueueItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal queue item: %w", err)
	}
	result := q.topic.Publish(ctx, &gcppubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish queue item: %w", err)
	}
	return nil
}

// Dequeue pops the next job, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (scrape.QueueItem, error) {
	select {
	case <-ctx.Done():
		return scrape.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item := <-q.items:
		return item, nil
	}
}

// Close stops the publisher and releases the client.
func (q *Queue) Close() error {
	q.topic.Stop()
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}

func (q *Queue) receive(ctx context.Context, sub *gcppubsub.Subscription) {
	err := sub.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		var item scrape.QueueItem
		if err := json.Unmarshal(msg.Data, &item); err != nil {
			q.logger.Error("drop malformed queue payload", zap.Error(err))
			msg.Ack()
			return
		}
		select {
		case q.items <- item:
			msg.Ack()
		case <-msgCtx.Done():
			msg.Nack()
		}
	})
	if err != nil && ctx.Err() == nil {
		q.logger.Error("pubsub receive loop ended", zap.Error(err))
	}
}
