package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "entities: registry of observed entities keyed by (name, type)",
		SQL: `
CREATE TABLE entities (
    name        TEXT NOT NULL,
    type        TEXT NOT NULL,
    attributes  TEXT NOT NULL DEFAULT '{}',
    observed_at INTEGER NOT NULL,

    PRIMARY KEY (name, type)
);

CREATE INDEX idx_entities_name ON entities(name);
`,
	},
	{
		Version:     2,
		Description: "relations: durable relation set keyed by (source, target, type)",
		SQL: `
CREATE TABLE relations (
    source      TEXT NOT NULL,
    target      TEXT NOT NULL,
    type        TEXT NOT NULL,
    confidence  REAL NOT NULL DEFAULT 1.0,
    observed_at INTEGER NOT NULL,

    PRIMARY KEY (source, target, type)
);
`,
	},
	{
		Version:     3,
		Description: "edge_mentions: append-only mention ledger per edge key",
		SQL: `
CREATE TABLE edge_mentions (
    id           INTEGER PRIMARY KEY,
    source       TEXT NOT NULL,
    target       TEXT NOT NULL,
    type         TEXT NOT NULL,
    mentioned_at INTEGER NOT NULL
);

CREATE INDEX idx_mentions_edge ON edge_mentions(source, target, type);
`,
	},
	{
		Version:     4,
		Description: "messages: ingestion log",
		SQL: `
CREATE TABLE messages (
    id             INTEGER PRIMARY KEY,
    message_id     TEXT NOT NULL UNIQUE,
    sender         TEXT NOT NULL,
    content        TEXT NOT NULL,
    entity_count   INTEGER NOT NULL DEFAULT 0,
    relation_count INTEGER NOT NULL DEFAULT 0,
    received_at    INTEGER NOT NULL
);

CREATE INDEX idx_messages_received ON messages(received_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
