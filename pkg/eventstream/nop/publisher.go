// Package nop provides a no-op eventstream publisher for deployments
// without an event backend.
package nop

import (
	"context"

	"github.com/openclawco/recall/pkg/eventstream"
)

// Publisher implements eventstream.Publisher by discarding events.
type Publisher struct{}

// NewPublisher creates a no-op publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishSync validates the event and discards it.
func (*Publisher) PublishSync(_ context.Context, event *eventstream.ContactSyncedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

// Close is a no-op.
func (*Publisher) Close() error {
	return nil
}
