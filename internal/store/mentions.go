package store

import (
	"fmt"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
)

// AddMention appends one mention to the persisted ledger. The ledger is
// append-only — weight queries recompute over the full history, so rows
// are never updated or pruned.
func (db *DB) AddMention(source, target, typ string, ts time.Time) error {
	_, err := db.Exec(`
		INSERT INTO edge_mentions (source, target, type, mentioned_at)
		VALUES (?, ?, ?, ?)
	`, source, target, typ, ts.UnixMilli())
	if err != nil {
		return fmt.Errorf("add mention %s->%s: %w", source, target, err)
	}
	return nil
}

// LoadMentions returns the full mention ledger in insertion order.
func (db *DB) LoadMentions() ([]graph.Mention, error) {
	rows, err := db.Query(`
		SELECT source, target, type, mentioned_at
		FROM edge_mentions ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load mentions: %w", err)
	}
	defer rows.Close()

	var out []graph.Mention
	for rows.Next() {
		var m graph.Mention
		var at int64
		if err := rows.Scan(&m.Source, &m.Target, &m.Type, &at); err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		m.Timestamp = time.UnixMilli(at).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMentions returns the ledger size for one edge key.
func (db *DB) CountMentions(source, target, typ string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM edge_mentions
		WHERE source = ? AND target = ? AND type = ?
	`, source, target, typ).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mentions: %w", err)
	}
	return count, nil
}
