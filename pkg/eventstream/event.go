// Package eventstream defines transport-neutral events emitted by the
// memory engine and the Publisher interface backends implement.
//
// Events are advisory: the engine publishes after a successful sync, and
// a publish failure never fails the sync itself. Downstream systems
// (archival, analytics, task creation) consume them at their own pace.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeContactSynced is emitted after a contact's memory is
	// fully replaced by a sync.
	EventTypeContactSynced = "recall.contact.synced"
)

// ContactSyncedEvent is published after each successful sync. The
// compaction report lets external archivers act before aged
// interactions fall past the retention ceiling on a later sync.
type ContactSyncedEvent struct {
	SchemaVersion int              `json:"schema_version"`
	EventType     string           `json:"event_type"`
	EventID       string           `json:"event_id"`
	EmittedAt     time.Time        `json:"emitted_at"`
	ContactID     string           `json:"contact_id"`
	LocationID    string           `json:"location_id,omitempty"`
	Interactions  int              `json:"interactions"`
	KeyFacts      int              `json:"key_facts"`
	Compaction    CompactionReport `json:"compaction"`
}

// CompactionReport describes what compaction did during a sync, if it
// ran at all. When the interaction cap is enforced by plain truncation
// rather than weekly summarization, Triggered stays false but the
// counts are still populated.
type CompactionReport struct {
	Triggered      bool `json:"triggered"`
	OriginalCount  int  `json:"original_count,omitempty"`
	CompactedCount int  `json:"compacted_count,omitempty"`
	Summarized     int  `json:"summarized,omitempty"`
	Removed        int  `json:"removed,omitempty"`
}
