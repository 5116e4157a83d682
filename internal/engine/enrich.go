package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
	"github.com/wovenlabs/loom/internal/llm"
)

// LLMEnricher expands one accepted entity into related entities and
// relations with a follow-up completion. Implements graph.Enricher.
type LLMEnricher struct {
	Client llm.Client
}

// Enrich asks the model for additions around e. A missing or malformed
// response yields (nil, error); the accumulator treats any error as
// "no enrichment".
func (en *LLMEnricher) Enrich(ctx context.Context, e graph.Entity, ts time.Time) (*graph.Batch, error) {
	if en.Client == nil {
		return nil, nil
	}

	prompt := llm.EnrichmentPrompt(e.Name, e.Type, e.Attributes["significance"])
	resp, err := en.Client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("enrichment completion: %w", err)
	}

	if !strings.Contains(resp.Content, "additional_entities:") {
		return nil, fmt.Errorf("no additional_entities section")
	}

	// Reuse the section parser by renaming the markers.
	entitySection := after(resp.Content, "additional_entities:")
	relationSection := ""
	if strings.Contains(resp.Content, "additional_relations:") {
		entitySection = before(entitySection, "additional_relations:")
		relationSection = after(resp.Content, "additional_relations:")
	}

	batch := graph.Batch{
		Entities:  parseEntities(entitySection, ts),
		Relations: parseRelations(relationSection, ts),
	}
	return &batch, nil
}
