package engine

import (
	"context"
	"testing"
	"time"

	"github.com/wovenlabs/loom/internal/llm"
	"github.com/wovenlabs/loom/internal/store"
)

func testEngine(t *testing.T, client llm.Client) *Engine {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, client)
}

// noEnrichment is a mock tail response that makes every enrichment call
// fail softly (missing additional_entities section).
var noEnrichment = &llm.Response{Content: "nothing to add", Provider: "mock"}

func TestIngestFullPipeline(t *testing.T) {
	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: sampleResponse, Provider: "mock"},
		noEnrichment,
	}}
	eng := testEngine(t, mock)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	res, err := eng.Ingest(context.Background(), "Marco: I write Go and hike on weekends", ts)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if res.Sender.Name != "Marco" || res.Sender.Type != "person" {
		t.Errorf("sender = %s/%s", res.Sender.Name, res.Sender.Type)
	}
	if res.Sender.Attributes["first_seen"] != ts.Format(time.RFC3339) {
		t.Errorf("first_seen = %q", res.Sender.Attributes["first_seen"])
	}

	// Sender plus the three extracted entities (Marco dedups in the
	// registry but appears twice in touched order).
	if len(res.Relations) != 2 {
		t.Errorf("relations admitted = %d, want 2", len(res.Relations))
	}

	if w := eng.Graph.Weight("Marco", "Go", "has_skill", ts); w <= 0 {
		t.Errorf("edge weight = %v, want > 0", w)
	}

	// Everything journaled for replay.
	if n, _ := eng.DB.CountMessages(); n != 1 {
		t.Errorf("messages journaled = %d, want 1", n)
	}
	if n, _ := eng.DB.CountMentions("Marco", "Go", "has_skill"); n != 1 {
		t.Errorf("mentions journaled = %d, want 1", n)
	}
}

func TestIngestUnknownSenderSkipped(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: sampleResponse}}
	eng := testEngine(t, mock)

	res, err := eng.Ingest(context.Background(), "no sender prefix here", time.Now().UTC())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Sender.Name != "" || len(res.Entities) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("LLM called %d times for skipped message", len(mock.Calls))
	}
}

func TestIngestNoLLM(t *testing.T) {
	eng := testEngine(t, nil)
	if _, err := eng.Ingest(context.Background(), "Marco: hi", time.Now().UTC()); err == nil {
		t.Fatal("expected error without LLM client")
	}
}

func TestIngestEnrichmentExpandsGraph(t *testing.T) {
	extraction := `ENTITIES:
- name: Go
  type: skill
  attributes:
    confidence: 0.9
    significance: primary language

RELATIONS:
- source: Marco
  target: Go
  type: has_skill
  weight: 0.9`

	enrichment := `additional_entities:
- name: Gophers
  type: community
  attributes:
    confidence: 0.8
    significance: language community
additional_relations:
- source: Go
  target: Gophers
  type: related_to
  weight: 0.6`

	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: extraction, Provider: "mock"},
		{Content: enrichment, Provider: "mock"},
	}}
	eng := testEngine(t, mock)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	res, err := eng.Ingest(context.Background(), "Marco: all in on Go", ts)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	names := make(map[string]bool)
	for _, e := range res.Entities {
		names[e.Name] = true
	}
	if !names["Gophers"] {
		t.Errorf("enriched entity missing from result: %v", res.Entities)
	}
	if len(res.Relations) != 2 {
		t.Errorf("relations = %d, want 2 (extracted + enriched)", len(res.Relations))
	}
	// One extraction call plus one enrichment call for the single
	// non-sender entity.
	if len(mock.Calls) != 2 {
		t.Errorf("LLM calls = %d, want 2", len(mock.Calls))
	}
}

func TestIngestLLMFailure(t *testing.T) {
	mock := &llm.MockClient{Err: context.DeadlineExceeded}
	eng := testEngine(t, mock)

	if _, err := eng.Ingest(context.Background(), "Marco: hi", time.Now().UTC()); err == nil {
		t.Fatal("expected extraction error to propagate")
	}
	if n := len(eng.Graph.Entities()); n != 0 {
		t.Errorf("graph mutated on failed extraction: %d entities", n)
	}
}

func TestReplayRestoresGraph(t *testing.T) {
	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: sampleResponse, Provider: "mock"},
		noEnrichment,
	}}
	eng := testEngine(t, mock)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := eng.Ingest(context.Background(), "Marco: Go and hiking", ts); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// A fresh engine over the same database sees the same graph.
	restored := New(eng.DB, nil)
	if err := restored.Replay(); err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if got, want := len(restored.Graph.Entities()), len(eng.Graph.Entities()); got != want {
		t.Errorf("restored entities = %d, want %d", got, want)
	}
	if got, want := len(restored.Graph.Relations()), len(eng.Graph.Relations()); got != want {
		t.Errorf("restored relations = %d, want %d", got, want)
	}
	if w := restored.Graph.Weight("Marco", "Go", "has_skill", ts); w <= 0 {
		t.Errorf("restored edge weight = %v, want > 0", w)
	}
}

func TestResetClearsEverything(t *testing.T) {
	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: sampleResponse, Provider: "mock"},
		noEnrichment,
	}}
	eng := testEngine(t, mock)

	if _, err := eng.Ingest(context.Background(), "Marco: Go and hiking", time.Now().UTC()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := eng.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if n := len(eng.Graph.Entities()); n != 0 {
		t.Errorf("entities after reset = %d", n)
	}
	ents, err := eng.DB.LoadEntities()
	if err != nil {
		t.Fatalf("LoadEntities: %v", err)
	}
	if len(ents) != 0 {
		t.Errorf("persisted entities after reset = %d", len(ents))
	}
	if n, _ := eng.DB.CountMessages(); n != 0 {
		t.Errorf("messages after reset = %d", n)
	}
}
