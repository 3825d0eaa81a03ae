// Package memory defines the domain model for the contact interaction
// memory engine.
//
// A contact's memory is one [Entry] owning two fully-replaceable child
// collections: structured [Interaction] records and derived [KeyFact]
// records. Both collections are rebuilt wholesale on every sync
// (delete-then-insert), never merged — the engine is a batch snapshot
// system, not an incremental-update system.
//
// Facts are distilled, persistent knowledge derived from interactions —
// not raw messages. They carry a confidence score and a category, and a
// full re-sync clears and regenerates them.
package memory

import "time"

// Entry is the root memory record for a single contact. It is owned
// exclusively by the store and mutated only through sync or an explicit
// interaction append.
type Entry struct {
	// ContactID is the stable external identifier for the contact.
	ContactID string `json:"contact_id"`

	// LocationID is the tenant/grouping key the contact belongs to.
	LocationID string `json:"location_id"`

	// LastUpdated is the monotonic write timestamp, bumped on every
	// write or append regardless of the interaction timestamps involved.
	LastUpdated time.Time `json:"last_updated"`

	Metadata    Metadata          `json:"metadata"`
	Preferences map[string]string `json:"preferences,omitempty"`
	Sentiment   SentimentAnalysis `json:"sentiment"`

	Interactions []Interaction `json:"interactions,omitempty"`
	KeyFacts     []KeyFact     `json:"key_facts,omitempty"`
}

// Metadata holds descriptive fields about the contact.
type Metadata struct {
	Name      string    `json:"name,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Source    string    `json:"source,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Interaction is one structured record of a single communication event.
// Interactions are immutable once written; compaction replaces aged
// records with synthesized weekly summaries rather than patching them.
type Interaction struct {
	// ID is unique within a contact. Synthesized weekly summaries use
	// the deterministic form "summary_<weekKey>".
	ID string `json:"id"`

	// Timestamp is the total-order key for recency filtering. Ties are
	// broken by insertion order, which the store preserves.
	Timestamp time.Time `json:"timestamp"`

	Channel   Channel   `json:"channel"`
	Direction Direction `json:"direction"`

	// Summary is a bounded-length display string, never the compaction
	// input.
	Summary string `json:"summary"`

	// FullContent optionally preserves the original body.
	FullContent string `json:"full_content,omitempty"`

	Entities  []Entity  `json:"entities,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
}

// Entity is a lexically extracted token (date, time, price) with a fixed
// per-class confidence.
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// EntityType classifies an extracted entity.
type EntityType string

const (
	EntityDate  EntityType = "date"
	EntityTime  EntityType = "time"
	EntityPrice EntityType = "price"
)

// KeyFact is a derived, confidence-scored atomic statement inferred from
// interaction content. Facts are append-only within a sync; they are not
// deduplicated across syncs.
type KeyFact struct {
	ID string `json:"id"`

	// Fact is the prefixed human string, e.g. "Commitment: call back at 3pm".
	Fact string `json:"fact"`

	// Source is the id of the interaction the fact was extracted from.
	Source string `json:"source"`

	// Confidence is in [0, 1], fixed per extraction pattern family.
	Confidence float64 `json:"confidence"`

	Timestamp time.Time    `json:"timestamp"`
	Category  FactCategory `json:"category"`
}

// RawMessage is a single communication record as supplied by the external
// message source. Channel labels are free-form here and normalized at the
// ingestion boundary.
type RawMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	Direction Direction `json:"direction"`
	Body      string    `json:"body"`
}
