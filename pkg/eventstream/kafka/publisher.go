// Package kafka provides a Kafka-backed eventstream publisher.
//
// Events are keyed by contact id so that per-contact ordering is
// preserved across partitions.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/openclawco/recall/pkg/eventstream"
)

// Config holds connection settings for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the topic sync events are published to.
	Topic string
}

// Publisher implements eventstream.Publisher over a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Kafka publisher. The underlying writer batches
// asynchronously on its own; Close flushes and releases it.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafkago.Hash{},
		},
	}, nil
}

// PublishSync writes the event to the topic, keyed by contact id.
func (p *Publisher) PublishSync(ctx context.Context, event *eventstream.ContactSyncedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.ContactID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
