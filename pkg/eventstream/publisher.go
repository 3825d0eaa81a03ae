package eventstream

import "context"

// Publisher publishes engine events to an event stream backend.
type Publisher interface {
	// PublishSync publishes a contact-synced event.
	PublishSync(ctx context.Context, event *ContactSyncedEvent) error

	// Close releases backend resources.
	Close() error
}
