package graph

import (
	"context"
	"errors"
	"testing"
	"time"
)

// rejectFilter drops entities whose name appears in the set.
type rejectFilter struct {
	drop map[string]bool
}

func (f *rejectFilter) IsSignificant(e Entity) bool {
	return !f.drop[e.Name]
}

// stubEnricher returns a fixed batch (or error) and records calls.
type stubEnricher struct {
	batch *Batch
	err   error
	calls []string
}

func (s *stubEnricher) Enrich(ctx context.Context, e Entity, ts time.Time) (*Batch, error) {
	s.calls = append(s.calls, e.Name)
	return s.batch, s.err
}

func mustRelation(t *testing.T, source, target, typ string, ts time.Time) Relation {
	t.Helper()
	r, err := NewRelation(source, target, typ, 1.0, ts)
	if err != nil {
		t.Fatalf("NewRelation(%s, %s, %s): %v", source, target, typ, err)
	}
	return r
}

func TestIngestUpsertsSender(t *testing.T) {
	acc := NewAccumulator(nil, nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	res := acc.Ingest(context.Background(), "Marco", Batch{}, t0)

	if res.Sender.Name != "Marco" || res.Sender.Type != TypePerson {
		t.Errorf("sender = %s/%s, want Marco/person", res.Sender.Name, res.Sender.Type)
	}
	if res.Sender.Attributes["first_seen"] != t0.Format(time.RFC3339) {
		t.Errorf("first_seen = %q, want message timestamp", res.Sender.Attributes["first_seen"])
	}

	// Sender is overwritten on every message, even if already known.
	t1 := t0.Add(time.Hour)
	acc.Ingest(context.Background(), "Marco", Batch{}, t1)
	ents := acc.Entities()
	if len(ents) != 1 {
		t.Fatalf("entities = %d, want 1", len(ents))
	}
	if ents[0].Attributes["first_seen"] != t1.Format(time.RFC3339) {
		t.Error("sender record not overwritten by later message")
	}
}

func TestIngestAppliesSignificanceFilter(t *testing.T) {
	filter := &rejectFilter{drop: map[string]bool{"it": true}}
	acc := NewAccumulator(filter, nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	batch := Batch{
		Entities: []Entity{
			NewEntity("Go", TypeSkill, nil, t0),
			NewEntity("it", TypeConcept, nil, t0),
		},
	}
	res := acc.Ingest(context.Background(), "Marco", batch, t0)

	for _, e := range res.Entities {
		if e.Name == "it" {
			t.Error("insignificant entity survived the filter")
		}
	}
	for _, e := range acc.Entities() {
		if e.Name == "it" {
			t.Error("insignificant entity reached the registry")
		}
	}
	found := false
	for _, e := range res.Entities {
		if e.Name == "Go" {
			found = true
		}
	}
	if !found {
		t.Error("significant entity missing from result")
	}
}

func TestIngestDropsDanglingRelations(t *testing.T) {
	acc := NewAccumulator(nil, nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	batch := Batch{
		Entities: []Entity{NewEntity("Go", TypeSkill, nil, t0)},
		Relations: []Relation{
			mustRelation(t, "Marco", "Go", "has_skill", t0),
			mustRelation(t, "Marco", "Haskell", "has_skill", t0), // Haskell never registered
		},
	}
	res := acc.Ingest(context.Background(), "Marco", batch, t0)

	if len(res.Relations) != 1 {
		t.Fatalf("admitted %d relations, want 1", len(res.Relations))
	}
	if res.Relations[0].Target != "Go" {
		t.Errorf("admitted %v, want Marco->Go", res.Relations[0])
	}

	// The dangling relation left no trace in the mention ledger either.
	if w := acc.Weight("Marco", "Haskell", "has_skill", t0); w != 0.3 {
		t.Errorf("dangling relation weight = %v, want untouched base 0.3", w)
	}
}

func TestIngestDeduplicatesRelationsByIdentity(t *testing.T) {
	acc := NewAccumulator(nil, nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	batch := Batch{
		Entities:  []Entity{NewEntity("Go", TypeSkill, nil, t0)},
		Relations: []Relation{mustRelation(t, "Marco", "Go", "has_skill", t0)},
	}
	acc.Ingest(context.Background(), "Marco", batch, t0)

	// Same triple again, later: no duplicate in the durable set, but the
	// mention history grows.
	batch.Relations = []Relation{mustRelation(t, "Marco", "Go", "has_skill", t0.Add(time.Hour))}
	acc.Ingest(context.Background(), "Marco", batch, t0.Add(time.Hour))

	if n := len(acc.Relations()); n != 1 {
		t.Errorf("durable relations = %d, want 1", n)
	}

	w1 := NewEdgeWeightStore()
	w1.RecordMention("Marco", "Go", "has_skill", t0.Add(time.Hour))
	single := w1.Weight("Marco", "Go", "has_skill", t0.Add(time.Hour))
	double := acc.Weight("Marco", "Go", "has_skill", t0.Add(time.Hour))
	if double <= single {
		t.Errorf("weight after 2 mentions (%v) not above 1 mention (%v)", double, single)
	}
}

func TestIngestEnrichment(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	enr := &stubEnricher{
		batch: &Batch{
			Entities:  []Entity{NewEntity("concurrency", TypeConcept, nil, t0)},
			Relations: []Relation{mustRelation(t, "Go", "concurrency", "related_to", t0)},
		},
	}
	acc := NewAccumulator(nil, enr)

	batch := Batch{Entities: []Entity{NewEntity("Go", TypeSkill, nil, t0)}}
	res := acc.Ingest(context.Background(), "Marco", batch, t0)

	if len(enr.calls) != 1 || enr.calls[0] != "Go" {
		t.Errorf("enricher calls = %v, want [Go]", enr.calls)
	}

	names := map[string]bool{}
	for _, e := range res.Entities {
		names[e.Name] = true
	}
	if !names["concurrency"] {
		t.Error("enriched entity missing from result")
	}
	if len(res.Relations) != 1 {
		t.Fatalf("admitted %d relations, want 1 enriched relation", len(res.Relations))
	}
}

func TestIngestEnrichmentSkipsSender(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	enr := &stubEnricher{}
	acc := NewAccumulator(nil, enr)

	// The sender can appear among candidates; enrichment must skip it.
	batch := Batch{Entities: []Entity{
		NewEntity("Marco", TypePerson, nil, t0),
		NewEntity("Go", TypeSkill, nil, t0),
	}}
	acc.Ingest(context.Background(), "Marco", batch, t0)

	for _, name := range enr.calls {
		if name == "Marco" {
			t.Error("enricher was invoked on the sender")
		}
	}
}

func TestIngestEnrichmentFailureIsNonFatal(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	enr := &stubEnricher{err: errors.New("malformed enrichment output")}
	acc := NewAccumulator(nil, enr)

	batch := Batch{
		Entities:  []Entity{NewEntity("Go", TypeSkill, nil, t0)},
		Relations: []Relation{mustRelation(t, "Marco", "Go", "has_skill", t0)},
	}
	res := acc.Ingest(context.Background(), "Marco", batch, t0)

	// The base batch still lands.
	if len(res.Relations) != 1 {
		t.Errorf("admitted %d relations, want 1 despite enrichment failure", len(res.Relations))
	}
}

func TestRestore(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	acc := NewAccumulator(nil, nil)

	acc.Restore(
		[]Entity{NewEntity("Marco", TypePerson, nil, t0), NewEntity("Go", TypeSkill, nil, t0)},
		[]Relation{mustRelation(t, "Marco", "Go", "has_skill", t0)},
		[]Mention{
			{Source: "Marco", Target: "Go", Type: "has_skill", Timestamp: t0},
			{Source: "Marco", Target: "Go", Type: "has_skill", Timestamp: t0.Add(time.Hour)},
		},
	)

	if len(acc.Entities()) != 2 {
		t.Errorf("entities = %d, want 2", len(acc.Entities()))
	}
	if len(acc.Relations()) != 1 {
		t.Errorf("relations = %d, want 1", len(acc.Relations()))
	}

	snap := acc.Snapshot(FilterNow, t0.Add(time.Hour))
	if len(snap.Edges) != 1 {
		t.Fatalf("edges after restore = %d, want 1", len(snap.Edges))
	}
}

func TestReset(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	acc := NewAccumulator(nil, nil)

	batch := Batch{
		Entities:  []Entity{NewEntity("Go", TypeSkill, nil, t0)},
		Relations: []Relation{mustRelation(t, "Marco", "Go", "has_skill", t0)},
	}
	acc.Ingest(context.Background(), "Marco", batch, t0)
	acc.Reset()

	snap := acc.Snapshot(FilterNow, t0)
	if len(snap.Nodes) != 0 || len(snap.Edges) != 0 {
		t.Errorf("snapshot after reset = %d nodes, %d edges; want empty", len(snap.Nodes), len(snap.Edges))
	}
	if w := acc.Weight("Marco", "Go", "has_skill", t0); w != 0.3 {
		t.Errorf("weight history survived reset: %v", w)
	}
}
