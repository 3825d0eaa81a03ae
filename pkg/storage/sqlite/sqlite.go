// Package sqlite provides a SQLite-backed contact memory store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openclawco/recall/pkg/memory"
	"github.com/openclawco/recall/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	contact_id   TEXT PRIMARY KEY,
	location_id  TEXT NOT NULL DEFAULT '',
	last_updated TIMESTAMP NOT NULL,
	metadata     TEXT NOT NULL DEFAULT '{}',
	preferences  TEXT NOT NULL DEFAULT '{}',
	sentiment    TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS interactions (
	contact_id   TEXT NOT NULL REFERENCES contacts(contact_id) ON DELETE CASCADE,
	id           TEXT NOT NULL,
	timestamp    TIMESTAMP NOT NULL,
	channel      TEXT NOT NULL DEFAULT 'other',
	direction    TEXT NOT NULL DEFAULT 'inbound',
	summary      TEXT NOT NULL DEFAULT '',
	full_content TEXT NOT NULL DEFAULT '',
	entities     TEXT NOT NULL DEFAULT '[]',
	sentiment    TEXT NOT NULL DEFAULT '',
	topics       TEXT NOT NULL DEFAULT '[]',
	position     INTEGER NOT NULL,
	PRIMARY KEY (contact_id, id)
);

CREATE INDEX IF NOT EXISTS idx_interactions_contact_ts
	ON interactions(contact_id, timestamp);

CREATE TABLE IF NOT EXISTS key_facts (
	contact_id TEXT NOT NULL REFERENCES contacts(contact_id) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	fact       TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0,
	timestamp  TIMESTAMP NOT NULL,
	category   TEXT NOT NULL DEFAULT 'other',
	PRIMARY KEY (contact_id, id)
);
`

// Store implements storage.Store over SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and bootstraps the
// schema. dbPath may be ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Write fully replaces the contact's memory in a single transaction, so
// a failure leaves the prior state untouched.
func (s *Store) Write(ctx context.Context, entry *memory.Entry) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	defer tx.Rollback()

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	preferences, err := json.Marshal(entry.Preferences)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	sentiment, err := json.Marshal(entry.Sentiment)
	if err != nil {
		return fmt.Errorf("encoding sentiment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contacts (contact_id, location_id, last_updated, metadata, preferences, sentiment)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(contact_id) DO UPDATE SET
			location_id = excluded.location_id,
			last_updated = excluded.last_updated,
			metadata = excluded.metadata,
			preferences = excluded.preferences,
			sentiment = excluded.sentiment`,
		entry.ContactID, entry.LocationID, entry.LastUpdated, string(metadata), string(preferences), string(sentiment))
	if err != nil {
		return fmt.Errorf("upserting contact: %w", err)
	}

	for _, table := range []string{"interactions", "key_facts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE contact_id = ?", entry.ContactID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, in := range entry.Interactions {
		if err := insertInteraction(ctx, tx, entry.ContactID, in, i); err != nil {
			return err
		}
	}

	for _, f := range entry.KeyFacts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO key_facts (contact_id, id, fact, source, confidence, timestamp, category)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.ContactID, f.ID, f.Fact, f.Source, f.Confidence, f.Timestamp, string(f.Category))
		if err != nil {
			return fmt.Errorf("inserting key fact %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

func insertInteraction(ctx context.Context, tx *sql.Tx, contactID string, in memory.Interaction, position int) error {
	entities, err := json.Marshal(in.Entities)
	if err != nil {
		return fmt.Errorf("encoding entities: %w", err)
	}
	topics, err := json.Marshal(in.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interactions (contact_id, id, timestamp, channel, direction, summary, full_content, entities, sentiment, topics, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contactID, in.ID, in.Timestamp, string(in.Channel), string(in.Direction),
		in.Summary, in.FullContent, string(entities), string(in.Sentiment), string(topics), position)
	if err != nil {
		return fmt.Errorf("inserting interaction %s: %w", in.ID, err)
	}

	return nil
}

// Read loads a contact's entry with interactions in insertion order.
func (s *Store) Read(ctx context.Context, contactID string) (*memory.Entry, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}

	entry := &memory.Entry{ContactID: contactID}

	var metadata, preferences, sentiment string
	err := s.db.QueryRowContext(ctx, `
		SELECT location_id, last_updated, metadata, preferences, sentiment
		FROM contacts WHERE contact_id = ?`, contactID).
		Scan(&entry.LocationID, &entry.LastUpdated, &metadata, &preferences, &sentiment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{ContactID: contactID}
	}
	if err != nil {
		return nil, fmt.Errorf("reading contact: %w", err)
	}

	if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(preferences), &entry.Preferences); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(sentiment), &entry.Sentiment); err != nil {
		return nil, fmt.Errorf("decoding sentiment: %w", err)
	}

	if entry.Interactions, err = s.readInteractions(ctx, contactID); err != nil {
		return nil, err
	}
	if entry.KeyFacts, err = s.readFacts(ctx, contactID); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Store) readInteractions(ctx context.Context, contactID string) ([]memory.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, channel, direction, summary, full_content, entities, sentiment, topics
		FROM interactions WHERE contact_id = ? ORDER BY position`, contactID)
	if err != nil {
		return nil, fmt.Errorf("reading interactions: %w", err)
	}
	defer rows.Close()

	var interactions []memory.Interaction
	for rows.Next() {
		var (
			in               memory.Interaction
			entities, topics string
		)
		if err := rows.Scan(&in.ID, &in.Timestamp, (*string)(&in.Channel), (*string)(&in.Direction),
			&in.Summary, &in.FullContent, &entities, (*string)(&in.Sentiment), &topics); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		if err := json.Unmarshal([]byte(entities), &in.Entities); err != nil {
			return nil, fmt.Errorf("decoding entities: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &in.Topics); err != nil {
			return nil, fmt.Errorf("decoding topics: %w", err)
		}
		interactions = append(interactions, in)
	}

	return interactions, rows.Err()
}

func (s *Store) readFacts(ctx context.Context, contactID string) ([]memory.KeyFact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fact, source, confidence, timestamp, category
		FROM key_facts WHERE contact_id = ? ORDER BY id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("reading key facts: %w", err)
	}
	defer rows.Close()

	var facts []memory.KeyFact
	for rows.Next() {
		var f memory.KeyFact
		if err := rows.Scan(&f.ID, &f.Fact, &f.Source, &f.Confidence, &f.Timestamp, (*string)(&f.Category)); err != nil {
			return nil, fmt.Errorf("scanning key fact: %w", err)
		}
		facts = append(facts, f)
	}

	return facts, rows.Err()
}

// AppendInteraction inserts one interaction for an existing contact and
// bumps its LastUpdated. Returns ErrNotFound for unknown contacts.
func (s *Store) AppendInteraction(ctx context.Context, contactID string, in memory.Interaction) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning append: %w", err)
	}
	defer tx.Rollback()

	// LastUpdated tracks write time, not interaction time: backdated
	// appends must not move it backwards.
	res, err := tx.ExecContext(ctx,
		"UPDATE contacts SET last_updated = ? WHERE contact_id = ?", time.Now(), contactID)
	if err != nil {
		return fmt.Errorf("touching contact: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("touching contact: %w", err)
	} else if n == 0 {
		return storage.ErrNotFound{ContactID: contactID}
	}

	var position int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM interactions WHERE contact_id = ?", contactID).
		Scan(&position)
	if err != nil {
		return fmt.Errorf("computing position: %w", err)
	}

	if err := insertInteraction(ctx, tx, contactID, in, position); err != nil {
		return err
	}

	return tx.Commit()
}

// Search is a case-insensitive substring match over serialized contact
// metadata. No inverted index; acceptable only at small scale.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*memory.Entry, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}

	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT contact_id FROM contacts
		WHERE lower(contact_id || ' ' || metadata || ' ' || preferences) LIKE ?
		ORDER BY last_updated DESC LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]*memory.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Close closes the database. Subsequent operations fail with
// ErrNotInitialized.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	db := s.db
	s.db = nil

	return db.Close()
}
