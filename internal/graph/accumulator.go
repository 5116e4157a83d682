package graph

import (
	"context"
	"log"
	"sync"
	"time"
)

// SignificanceFilter decides whether a candidate entity is worth
// retaining. Policy (confidence thresholds, stop words) belongs to the
// implementation, not the accumulator.
type SignificanceFilter interface {
	IsSignificant(e Entity) bool
}

// Enricher optionally expands one accepted entity into further entities
// and relations. It is never invoked on the message sender, and any
// failure is treated as "no enrichment".
type Enricher interface {
	Enrich(ctx context.Context, e Entity, ts time.Time) (*Batch, error)
}

// Batch is one extraction result: candidate entities and relations
// produced from a single message.
type Batch struct {
	Entities  []Entity
	Relations []Relation
}

// Result reports what one ingestion touched: every entity upserted and
// every relation admitted, for caller visibility.
type Result struct {
	Sender    Entity
	Entities  []Entity
	Relations []Relation
}

// Accumulator folds extraction results into the persistent graph state:
// the entity registry, the durable relation set, and the edge mention
// ledger. All operations run under a single exclusive lock — relation
// admission depends on a registry read taken during the same logical
// operation as the relation write.
type Accumulator struct {
	mu        sync.Mutex
	registry  *EntityRegistry
	weights   *EdgeWeightStore
	relations map[RelationKey]Relation

	filter   SignificanceFilter
	enricher Enricher
}

// NewAccumulator creates an empty accumulator. filter and enricher may
// be nil: a nil filter keeps every candidate, a nil enricher skips the
// enrichment step.
func NewAccumulator(filter SignificanceFilter, enricher Enricher) *Accumulator {
	return &Accumulator{
		registry:  NewEntityRegistry(),
		weights:   NewEdgeWeightStore(),
		relations: make(map[RelationKey]Relation),
		filter:    filter,
		enricher:  enricher,
	}
}

// Ingest atomically folds one extraction batch into the graph:
//
//  1. The sender is upserted as a person entity with a first_seen
//     attribute, overwriting any prior record.
//  2. Candidates failing the significance filter are dropped entirely.
//  3. Surviving non-sender entities are offered to the enricher; its
//     output joins the batch, its failures are logged and ignored.
//  4. All surviving entities are upserted.
//  5. Relations (initial plus enriched, deduplicated by identity) are
//     admitted only if both endpoint names exist in the registry;
//     admitted relations get a mention recorded at ts. Dangling
//     relations are dropped silently — noisy extraction is expected.
func (a *Accumulator) Ingest(ctx context.Context, sender string, batch Batch, ts time.Time) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	ts = ts.UTC()

	senderEntity := NewEntity(sender, TypePerson, map[string]string{
		"first_seen": ts.Format(time.RFC3339),
	}, ts)

	var kept []Entity
	for _, e := range batch.Entities {
		if a.filter != nil && !a.filter.IsSignificant(e) {
			continue
		}
		kept = append(kept, e)
	}

	candidates := make(map[RelationKey]Relation, len(batch.Relations))
	for _, r := range batch.Relations {
		candidates[r.Key()] = r
	}

	var enriched []Entity
	if a.enricher != nil {
		for _, e := range kept {
			if e.Name == sender {
				continue
			}
			extra, err := a.enricher.Enrich(ctx, e, ts)
			if err != nil {
				log.Printf("graph: enrichment for %q failed: %v", e.Name, err)
				continue
			}
			if extra == nil {
				continue
			}
			enriched = append(enriched, extra.Entities...)
			for _, r := range extra.Relations {
				candidates[r.Key()] = r
			}
		}
	}

	a.registry.Upsert(senderEntity)
	touched := []Entity{senderEntity}
	for _, e := range append(kept, enriched...) {
		a.registry.Upsert(e)
		touched = append(touched, e)
	}

	var admitted []Relation
	for key, r := range candidates {
		if !a.registry.Exists(r.Source) || !a.registry.Exists(r.Target) {
			continue
		}
		a.relations[key] = r
		a.weights.RecordMention(r.Source, r.Target, r.Type, ts)
		admitted = append(admitted, r)
	}

	return Result{Sender: senderEntity, Entities: touched, Relations: admitted}
}

// Restore rebuilds accumulator state from persisted records, bypassing
// the filter and enricher. Mentions feed the weight ledger directly.
func (a *Accumulator) Restore(entities []Entity, relations []Relation, mentions []Mention) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range entities {
		a.registry.Upsert(e)
	}
	for _, r := range relations {
		a.relations[r.Key()] = r
	}
	for _, m := range mentions {
		a.weights.RecordMention(m.Source, m.Target, m.Type, m.Timestamp)
	}
}

// Mention is one persisted mention record, used for restore.
type Mention struct {
	Source    string
	Target    string
	Type      string
	Timestamp time.Time
}

// Relations returns the durable relation set. Order is unspecified.
func (a *Accumulator) Relations() []Relation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Relation, 0, len(a.relations))
	for _, r := range a.relations {
		out = append(out, r)
	}
	return out
}

// Entities returns every registered entity. Order is unspecified.
func (a *Accumulator) Entities() []Entity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.All()
}

// Weight returns the current temporal weight for an edge.
func (a *Accumulator) Weight(source, target, typ string, now time.Time) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.weights.Weight(source, target, typ, now)
}

// Reset clears the registry, relation set, and mention ledger under the
// lock. No ingestion or snapshot can observe a partially cleared state.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.registry.Reset()
	a.weights.Reset()
	a.relations = make(map[RelationKey]Relation)
}
