package graph

import (
	"fmt"
	"time"
)

// Entity types used by the extraction pipeline. The vocabulary is a
// convention, not enforced — unknown types pass through unchanged.
const (
	TypePerson       = "person"
	TypeInterest     = "interest"
	TypeActivity     = "activity"
	TypeSkill        = "skill"
	TypeTool         = "tool"
	TypeConcept      = "concept"
	TypeOrganization = "organization"
)

// Entity is an immutable observation of a named thing. Identity is
// (Name, Type) only — attributes and timestamp never participate in
// equality, so re-observing an entity replaces the previous record.
type Entity struct {
	Name       string
	Type       string
	Attributes map[string]string
	Timestamp  time.Time
}

// NewEntity constructs an Entity observed at ts. A zero ts defaults to
// the current time; naive callers get UTC either way.
func NewEntity(name, typ string, attrs map[string]string, ts time.Time) Entity {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Entity{
		Name:       name,
		Type:       typ,
		Attributes: attrs,
		Timestamp:  ts.UTC(),
	}
}

// Identity is the registry key for an entity.
type Identity struct {
	Name string
	Type string
}

// Identity returns the (name, type) pair the entity is stored under.
func (e Entity) Identity() Identity {
	return Identity{Name: e.Name, Type: e.Type}
}

// Relation is a typed edge between two entities, identified by
// (Source, Target, Type). Confidence is the extractor's nominal score
// and is distinct from the derived temporal weight.
type Relation struct {
	Source     string
	Target     string
	Type       string
	Confidence float64
	Timestamp  time.Time
}

// RelationKey is the identity of a relation — weight and timestamp are
// excluded so re-observing the same triple deduplicates.
type RelationKey struct {
	Source string
	Target string
	Type   string
}

// Key returns the relation's identity triple.
func (r Relation) Key() RelationKey {
	return RelationKey{Source: r.Source, Target: r.Target, Type: r.Type}
}

// NewRelation constructs a Relation, normalizing the timestamp to UTC.
// A zero ts defaults to now. Empty endpoints are rejected — a relation
// without both ends can never be admitted anyway.
func NewRelation(source, target, typ string, confidence float64, ts time.Time) (Relation, error) {
	if source == "" || target == "" {
		return Relation{}, fmt.Errorf("relation %q: empty endpoint", typ)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Relation{
		Source:     source,
		Target:     target,
		Type:       typ,
		Confidence: confidence,
		Timestamp:  ts.UTC(),
	}, nil
}

// ParseTimestamp parses an ISO-8601 timestamp string. Values without a
// zone offset are assumed UTC. Malformed input is an error — silently
// normalizing it would corrupt decay computations downstream.
func ParseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
