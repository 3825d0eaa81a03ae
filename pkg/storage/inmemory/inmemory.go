// Package inmemory provides a map-backed contact memory store for tests
// and local development.
package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openclawco/recall/pkg/memory"
	"github.com/openclawco/recall/pkg/storage"
)

// Store implements storage.Store using an in-memory map.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*memory.Entry
	closed  bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*memory.Entry),
	}
}

// Write fully replaces the contact's memory.
func (s *Store) Write(_ context.Context, entry *memory.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrNotInitialized
	}

	s.entries[entry.ContactID] = cloneEntry(entry)
	return nil
}

// Read returns a copy of the contact's entry so callers cannot mutate
// internal state.
func (s *Store) Read(_ context.Context, contactID string) (*memory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrNotInitialized
	}

	entry, ok := s.entries[contactID]
	if !ok {
		return nil, storage.ErrNotFound{ContactID: contactID}
	}

	return cloneEntry(entry), nil
}

// AppendInteraction inserts one interaction and bumps LastUpdated.
func (s *Store) AppendInteraction(_ context.Context, contactID string, in memory.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrNotInitialized
	}

	entry, ok := s.entries[contactID]
	if !ok {
		return storage.ErrNotFound{ContactID: contactID}
	}

	entry.Interactions = append(entry.Interactions, in)
	// LastUpdated tracks write time, not interaction time: backdated
	// appends must not move it backwards.
	entry.LastUpdated = time.Now()

	return nil
}

// Search is a case-insensitive substring match over serialized metadata.
func (s *Store) Search(_ context.Context, query string, limit int) ([]*memory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrNotInitialized
	}

	if limit <= 0 {
		limit = 10
	}

	needle := strings.ToLower(query)

	var matched []*memory.Entry
	for _, entry := range s.entries {
		if matchesQuery(entry, needle) {
			matched = append(matched, entry)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastUpdated.After(matched[j].LastUpdated)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]*memory.Entry, len(matched))
	for i, entry := range matched {
		results[i] = cloneEntry(entry)
	}

	return results, nil
}

// Close marks the store closed; subsequent operations fail with
// ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = nil

	return nil
}

func matchesQuery(entry *memory.Entry, needle string) bool {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return false
	}

	haystack := strings.ToLower(entry.ContactID + " " + string(metadata))
	for k, v := range entry.Preferences {
		haystack += " " + strings.ToLower(k+" "+v)
	}

	return strings.Contains(haystack, needle)
}

// cloneEntry deep-copies an entry via JSON round-trip. Entries are small
// (hard-capped interaction sets), so this stays cheap.
func cloneEntry(entry *memory.Entry) *memory.Entry {
	data, err := json.Marshal(entry)
	if err != nil {
		return entry
	}

	var clone memory.Entry
	if err := json.Unmarshal(data, &clone); err != nil {
		return entry
	}

	return &clone
}
