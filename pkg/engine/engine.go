// Package engine composes the indexer, compactor, store, and retrieval
// pipeline behind the memory engine's public surface.
//
// The engine is single-writer per contact: sync and append for the same
// contact are serialized through a keyed mutex, since a store write is a
// delete-then-insert sequence that must never interleave with itself.
// Unrelated contacts never block each other.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openclawco/recall/pkg/compactor"
	"github.com/openclawco/recall/pkg/eventstream"
	"github.com/openclawco/recall/pkg/eventstream/nop"
	"github.com/openclawco/recall/pkg/indexer"
	"github.com/openclawco/recall/pkg/logger"
	"github.com/openclawco/recall/pkg/memory"
	"github.com/openclawco/recall/pkg/retrieval"
	"github.com/openclawco/recall/pkg/storage"
)

// Config holds the engine's injected collaborators.
type Config struct {
	// Store is the persistence backend. Required.
	Store storage.Store

	// Publisher receives sync events. Defaults to the nop publisher.
	Publisher eventstream.Publisher

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// Engine is the contact interaction memory engine.
type Engine struct {
	store     storage.Store
	publisher eventstream.Publisher
	logger    *slog.Logger
	locks     *keyedMutex
}

// New creates an engine from the given config.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine requires a store")
	}

	if cfg.Publisher == nil {
		cfg.Publisher = nop.NewPublisher()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Engine{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		locks:     newKeyedMutex(),
	}, nil
}

// Close releases the engine's publisher and store.
func (e *Engine) Close() error {
	return errors.Join(e.publisher.Close(), e.store.Close())
}

// SyncFromSource rebuilds a contact's memory from a full batch of raw
// messages: index, extract facts, compact or truncate down to the
// interaction cap, then replace the stored state in one write. On a
// store failure the prior state is left untouched, since the write is
// the final step.
func (e *Engine) SyncFromSource(ctx context.Context, contactID, locationID, name string, msgs []memory.RawMessage) error {
	if contactID == "" {
		return errors.New("contact id required")
	}

	unlock := e.locks.lock(contactID)
	defer unlock()

	interactions := indexer.IndexMessages(msgs)
	facts := indexer.ExtractKeyFacts(interactions, contactID)

	report := eventstream.CompactionReport{}
	switch {
	case compactor.ShouldCompact(interactions):
		res := compactor.Compact(interactions)
		interactions = res.Kept
		report = eventstream.CompactionReport{
			Triggered:      true,
			OriginalCount:  res.OriginalCount,
			CompactedCount: res.CompactedCount,
			Summarized:     res.Summarized,
			Removed:        res.Removed,
		}
		e.logger.Info("compacted interactions",
			"contact_id", contactID,
			"original", res.OriginalCount,
			"compacted", res.CompactedCount,
			"removed", res.Removed,
		)

	case len(interactions) > compactor.MaxInteractions:
		// The cap holds even when the batch is too recent to compact:
		// truncate newest-first instead of summarizing.
		res := compactor.Truncate(interactions)
		interactions = res.Kept
		report = eventstream.CompactionReport{
			OriginalCount:  res.OriginalCount,
			CompactedCount: res.CompactedCount,
			Removed:        res.Removed,
		}
		e.logger.Info("truncated interactions",
			"contact_id", contactID,
			"original", res.OriginalCount,
			"kept", res.CompactedCount,
		)
	}

	entry := e.buildEntry(ctx, contactID, locationID, name, interactions, facts)

	if err := e.store.Write(ctx, entry); err != nil {
		return fmt.Errorf("writing contact %s: %w", contactID, err)
	}

	e.publish(ctx, entry, report)

	e.logger.Info("contact synced",
		"contact_id", contactID,
		"interactions", len(entry.Interactions),
		"key_facts", len(entry.KeyFacts),
	)

	return nil
}

// buildEntry assembles the replacement entry, carrying forward metadata
// that only exists on the stored side (first-seen, tags, preferences).
func (e *Engine) buildEntry(ctx context.Context, contactID, locationID, name string, interactions []memory.Interaction, facts []memory.KeyFact) *memory.Entry {
	entry := &memory.Entry{
		ContactID:    contactID,
		LocationID:   locationID,
		LastUpdated:  time.Now(),
		Interactions: interactions,
		KeyFacts:     facts,
		Sentiment:    memory.AggregateSentiment(interactions),
		Metadata:     memory.Metadata{Name: name, Source: "sync"},
	}

	if prior, err := e.store.Read(ctx, contactID); err == nil {
		entry.Metadata.FirstSeen = prior.Metadata.FirstSeen
		entry.Metadata.Tags = prior.Metadata.Tags
		entry.Preferences = prior.Preferences
		if name == "" {
			entry.Metadata.Name = prior.Metadata.Name
		}
	} else if !storage.IsNotFound(err) {
		e.logger.Warn("reading prior entry failed; metadata starts fresh",
			"contact_id", contactID, "error", err)
	}

	earliest, latest := timeBounds(interactions)
	if entry.Metadata.FirstSeen.IsZero() {
		entry.Metadata.FirstSeen = earliest
	}
	entry.Metadata.LastSeen = latest

	return entry
}

func timeBounds(interactions []memory.Interaction) (earliest, latest time.Time) {
	for _, in := range interactions {
		if earliest.IsZero() || in.Timestamp.Before(earliest) {
			earliest = in.Timestamp
		}
		if in.Timestamp.After(latest) {
			latest = in.Timestamp
		}
	}
	return earliest, latest
}

func (e *Engine) publish(ctx context.Context, entry *memory.Entry, report eventstream.CompactionReport) {
	event := &eventstream.ContactSyncedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeContactSynced,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now(),
		ContactID:     entry.ContactID,
		LocationID:    entry.LocationID,
		Interactions:  len(entry.Interactions),
		KeyFacts:      len(entry.KeyFacts),
		Compaction:    report,
	}

	if err := e.publisher.PublishSync(ctx, event); err != nil {
		// Events are advisory; a publish failure never fails the sync.
		e.logger.Warn("publishing sync event failed",
			"contact_id", entry.ContactID, "error", err)
	}
}

// AppendInteraction records a single interaction without touching facts
// or triggering compaction.
func (e *Engine) AppendInteraction(ctx context.Context, contactID string, in memory.Interaction) error {
	if contactID == "" {
		return errors.New("contact id required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	unlock := e.locks.lock(contactID)
	defer unlock()

	if err := e.store.AppendInteraction(ctx, contactID, in); err != nil {
		return err
	}

	e.logger.Debug("interaction appended", "contact_id", contactID, "interaction_id", in.ID)

	return nil
}

// GetContactMemory returns the raw stored entry. Absence surfaces as
// storage.ErrNotFound.
func (e *Engine) GetContactMemory(ctx context.Context, contactID string) (*memory.Entry, error) {
	entry, err := e.store.Read(ctx, contactID)
	if storage.IsNotFound(err) {
		// Routine for new contacts; not an error condition.
		e.logger.Debug("no memory for contact", "contact_id", contactID)
	}
	return entry, err
}

// GetContactContext runs the retrieval pipeline over the stored entry.
func (e *Engine) GetContactContext(ctx context.Context, contactID string, opts retrieval.Options) (*retrieval.Context, error) {
	entry, err := e.GetContactMemory(ctx, contactID)
	if err != nil {
		return nil, err
	}

	return retrieval.AssembleContext(entry, opts), nil
}

// FormatContextForAI renders the contact's context as plain text.
func (e *Engine) FormatContextForAI(ctx context.Context, contactID string, verbose bool) (string, error) {
	c, err := e.GetContactContext(ctx, contactID, retrieval.Options{})
	if err != nil {
		return "", err
	}

	return retrieval.FormatContext(c, verbose), nil
}

// SearchContacts is a substring match over contact metadata. No ranking.
func (e *Engine) SearchContacts(ctx context.Context, query string, limit int) ([]*memory.Entry, error) {
	return e.store.Search(ctx, query, limit)
}
