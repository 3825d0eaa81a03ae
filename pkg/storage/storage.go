// Package storage defines the persistence contract for contact memory.
//
// The Store is the engine's only shared mutable resource. A Write is a
// full replace: the entry row is upserted and both child collections are
// deleted and re-inserted as a set. Backends must make that sequence
// atomic (a transaction, or equivalent) so a failed write leaves the
// prior state untouched.
package storage

import (
	"context"

	"github.com/openclawco/recall/pkg/memory"
)

// Store persists contact memory entries and their owned interaction and
// key-fact collections.
type Store interface {
	// Write fully replaces a contact's memory: upsert the entry, then
	// delete and re-insert its interactions and facts. Idempotent.
	Write(ctx context.Context, entry *memory.Entry) error

	// Read returns a contact's entry with both child collections
	// loaded, interactions in insertion order. Absence is reported as
	// ErrNotFound, which callers must treat as routine rather than a
	// failure.
	Read(ctx context.Context, contactID string) (*memory.Entry, error)

	// AppendInteraction inserts one interaction and bumps the entry's
	// LastUpdated. It is the only incremental path: it does not touch
	// facts and never triggers compaction.
	AppendInteraction(ctx context.Context, contactID string, in memory.Interaction) error

	// Search returns entries whose serialized metadata contains the
	// query substring, case-insensitive, capped at limit. No ranking.
	Search(ctx context.Context, query string, limit int) ([]*memory.Entry, error)

	// Close releases backend resources.
	Close() error
}
