package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wovenlabs/loom/internal/graph"
	"github.com/wovenlabs/loom/internal/llm"
	"github.com/wovenlabs/loom/internal/store"
)

// Engine orchestrates message ingestion: LLM extraction, graph
// accumulation, and write-behind persistence. The in-memory accumulator
// is authoritative; the store makes it durable across restarts.
type Engine struct {
	DB    *store.DB
	LLM   llm.Client
	Graph *graph.Accumulator
}

// New creates an Engine wired with the default significance gate and,
// when client is non-nil, LLM-backed enrichment.
func New(db *store.DB, client llm.Client) *Engine {
	var enricher graph.Enricher
	if client != nil {
		enricher = &LLMEnricher{Client: client}
	}
	return &Engine{
		DB:    db,
		LLM:   client,
		Graph: graph.NewAccumulator(SignificanceGate{}, enricher),
	}
}

// Replay restores the accumulator from the persisted graph. Called once
// at startup, before the engine serves traffic.
func (e *Engine) Replay() error {
	if e.DB == nil {
		return nil
	}

	entities, err := e.DB.LoadEntities()
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}
	relations, err := e.DB.LoadRelations()
	if err != nil {
		return fmt.Errorf("load relations: %w", err)
	}
	mentions, err := e.DB.LoadMentions()
	if err != nil {
		return fmt.Errorf("load mentions: %w", err)
	}

	e.Graph.Restore(entities, relations, mentions)

	if len(entities) > 0 {
		log.Printf("replay: restored %d entities, %d relations, %d mentions",
			len(entities), len(relations), len(mentions))
	}
	return nil
}

// Ingest processes one raw chat message: parses the sender, runs LLM
// extraction, folds the batch into the graph, and journals the result.
// A zero ts defaults to now. Messages without a recognizable sender are
// skipped with an empty result — upstream noise, not an error.
func (e *Engine) Ingest(ctx context.Context, message string, ts time.Time) (graph.Result, error) {
	if e.LLM == nil {
		return graph.Result{}, fmt.Errorf("LLM not configured")
	}

	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	ts = ts.UTC()

	sender, content := parseMessage(message)
	if sender == "Unknown" {
		log.Printf("ingest: skipping message with unknown sender")
		return graph.Result{}, nil
	}

	resp, err := e.LLM.Complete(ctx, llm.ExtractionPrompt(sender, content))
	if err != nil {
		return graph.Result{}, fmt.Errorf("extraction completion: %w", err)
	}

	batch := parseExtraction(resp.Content, ts)
	res := e.Graph.Ingest(ctx, sender, batch, ts)

	if err := e.persist(res, content, ts); err != nil {
		// The in-memory graph already holds the ingestion; losing the
		// journal row is logged, not fatal.
		log.Printf("ingest: persist failed: %v", err)
	}

	return res, nil
}

func (e *Engine) persist(res graph.Result, content string, ts time.Time) error {
	if e.DB == nil {
		return nil
	}

	for _, ent := range res.Entities {
		if err := e.DB.SaveEntity(ent); err != nil {
			return err
		}
	}
	for _, rel := range res.Relations {
		if err := e.DB.SaveRelation(rel); err != nil {
			return err
		}
		if err := e.DB.AddMention(rel.Source, rel.Target, rel.Type, ts); err != nil {
			return err
		}
	}

	return e.DB.LogMessage(uuid.NewString(), res.Sender.Name, content,
		len(res.Entities), len(res.Relations), ts)
}

// Snapshot renders the time-filtered graph view.
func (e *Engine) Snapshot(filter string, now time.Time) graph.Snapshot {
	return e.Graph.Snapshot(filter, now)
}

// Reset unconditionally clears the graph and its persisted state.
func (e *Engine) Reset() error {
	e.Graph.Reset()
	if e.DB == nil {
		return nil
	}
	if err := e.DB.ClearGraph(); err != nil {
		return fmt.Errorf("clear persisted graph: %w", err)
	}
	return nil
}
