package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
)

// SaveEntity upserts an entity record. Attributes are stored as JSON;
// the latest write replaces attributes and timestamp wholesale,
// mirroring the in-memory registry's last-write-wins semantics.
func (db *DB) SaveEntity(e graph.Entity) error {
	attrs, err := json.Marshal(e.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes for %s: %w", e.Name, err)
	}

	_, err = db.Exec(`
		INSERT INTO entities (name, type, attributes, observed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name, type) DO UPDATE SET
			attributes = excluded.attributes,
			observed_at = excluded.observed_at
	`, e.Name, e.Type, string(attrs), e.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("save entity %s: %w", e.Name, err)
	}
	return nil
}

// LoadEntities returns every persisted entity.
func (db *DB) LoadEntities() ([]graph.Entity, error) {
	rows, err := db.Query(`SELECT name, type, attributes, observed_at FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	defer rows.Close()

	var out []graph.Entity
	for rows.Next() {
		var name, typ, attrsJSON string
		var observedAt int64
		if err := rows.Scan(&name, &typ, &attrsJSON, &observedAt); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}

		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", name, err)
		}

		out = append(out, graph.NewEntity(name, typ, attrs, time.UnixMilli(observedAt).UTC()))
	}
	return out, rows.Err()
}

// SaveRelation upserts a relation record by its identity triple.
func (db *DB) SaveRelation(r graph.Relation) error {
	_, err := db.Exec(`
		INSERT INTO relations (source, target, type, confidence, observed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, target, type) DO UPDATE SET
			confidence = excluded.confidence,
			observed_at = excluded.observed_at
	`, r.Source, r.Target, r.Type, r.Confidence, r.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("save relation %s->%s: %w", r.Source, r.Target, err)
	}
	return nil
}

// LoadRelations returns every persisted relation.
func (db *DB) LoadRelations() ([]graph.Relation, error) {
	rows, err := db.Query(`SELECT source, target, type, confidence, observed_at FROM relations`)
	if err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	defer rows.Close()

	var out []graph.Relation
	for rows.Next() {
		var source, target, typ string
		var confidence float64
		var observedAt int64
		if err := rows.Scan(&source, &target, &typ, &confidence, &observedAt); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}

		r, err := graph.NewRelation(source, target, typ, confidence, time.UnixMilli(observedAt).UTC())
		if err != nil {
			return nil, fmt.Errorf("restore relation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClearGraph removes all entities, relations, mentions, and ingestion
// log rows in one transaction. Used by reset.
func (db *DB) ClearGraph() error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}

	for _, table := range []string{"edge_mentions", "relations", "entities", "messages"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
