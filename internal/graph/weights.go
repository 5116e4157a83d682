package graph

import (
	"math"
	"time"
)

// Edge weight model: every mention of a (source, target, type) triple is
// appended to a ledger, and the instantaneous weight is recomputed from
// the full history on every query — never stored. Recency decays the
// weight, repetition boosts it with saturation, and the result is
// clamped to [0.1, 1.0].
const (
	baseWeight       = 0.3
	minWeight        = 0.1
	maxWeight        = 1.0
	decayFloor       = 0.1
	hourDecayFactor  = 0.05
	dayDecayFactor   = 0.15
	weekDecayFactor  = 0.35
	saturationFactor = 0.3
)

// mentionLedger holds the append-only mention history for one edge key.
// Timestamps are ordered by arrival, not necessarily by time.
type mentionLedger struct {
	key        RelationKey
	timestamps []time.Time
}

// last returns the most recent timestamp in the ledger.
func (m *mentionLedger) last() time.Time {
	latest := m.timestamps[0]
	for _, ts := range m.timestamps[1:] {
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest
}

// EdgeWeightStore tracks mention histories per edge key. It performs no
// endpoint validation — admission is the accumulator's job. Not safe for
// concurrent use on its own; the accumulator serializes access.
type EdgeWeightStore struct {
	mentions map[RelationKey]*mentionLedger
}

// NewEdgeWeightStore creates an empty store.
func NewEdgeWeightStore() *EdgeWeightStore {
	return &EdgeWeightStore{mentions: make(map[RelationKey]*mentionLedger)}
}

// RecordMention appends ts to the history for (source, target, typ),
// creating the ledger if absent. Future timestamps are tolerated — the
// weight clamp bounds whatever decay they produce.
func (s *EdgeWeightStore) RecordMention(source, target, typ string, ts time.Time) {
	key := RelationKey{Source: source, Target: target, Type: typ}
	ledger, ok := s.mentions[key]
	if !ok {
		ledger = &mentionLedger{key: key}
		s.mentions[key] = ledger
	}
	ledger.timestamps = append(ledger.timestamps, ts.UTC())
}

// Weight returns the current weight for an edge at the given instant.
// An edge with no recorded mentions yields the base weight 0.3 — the
// new-relationship prior, not zero.
func (s *EdgeWeightStore) Weight(source, target, typ string, now time.Time) float64 {
	ledger, ok := s.mentions[RelationKey{Source: source, Target: target, Type: typ}]
	if !ok || len(ledger.timestamps) == 0 {
		return baseWeight
	}

	w := baseWeight * decay(ledger.last(), now) * boost(len(ledger.timestamps))
	return clamp(w, minWeight, maxWeight)
}

// decay computes the recency factor for an edge last mentioned at last,
// evaluated at now. Three regimes: within the hour mentions decay
// slowly, across a day moderately, and long-dormant edges on a weekly
// scale. The hour and day regimes use wall-clock fractions; the week
// regime uses integer calendar days divided by 7, so long-dormant edges
// decay in daily steps. Floored at 0.1 so an edge never fully
// extinguishes.
func decay(last, now time.Time) float64 {
	elapsed := now.Sub(last)

	var d float64
	switch {
	case elapsed <= time.Hour:
		d = math.Exp(-hourDecayFactor * elapsed.Seconds() / 3600)
	case elapsed <= 24*time.Hour:
		d = math.Exp(-dayDecayFactor * elapsed.Seconds() / 86400)
	default:
		days := math.Floor(elapsed.Hours() / 24)
		d = math.Exp(-weekDecayFactor * days / 7)
	}

	return math.Max(decayFloor, d)
}

// boost computes the saturating repetition factor: zero mentions give
// zero, each additional mention adds less, and the limit is 1.
func boost(count int) float64 {
	return 1 - math.Exp(-saturationFactor*float64(count))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// WeightedEdge is one edge with its weight recomputed at query time.
type WeightedEdge struct {
	Source   string
	Target   string
	Type     string
	Weight   float64
	Mentions int
}

// AllEdges returns every known edge with its current weight and mention
// count. Edges with non-positive weight are excluded; the 0.1 floor
// means this never fires in practice, but consumers rely on the filter.
func (s *EdgeWeightStore) AllEdges(now time.Time) []WeightedEdge {
	edges := make([]WeightedEdge, 0, len(s.mentions))
	for key, ledger := range s.mentions {
		w := s.Weight(key.Source, key.Target, key.Type, now)
		if w <= 0 {
			continue
		}
		edges = append(edges, WeightedEdge{
			Source:   key.Source,
			Target:   key.Target,
			Type:     key.Type,
			Weight:   w,
			Mentions: len(ledger.timestamps),
		})
	}
	return edges
}

// Mentions returns a copy of the full mention history for an edge, or
// nil if the edge is unknown. Used for persistence.
func (s *EdgeWeightStore) Mentions(source, target, typ string) []time.Time {
	ledger, ok := s.mentions[RelationKey{Source: source, Target: target, Type: typ}]
	if !ok {
		return nil
	}
	out := make([]time.Time, len(ledger.timestamps))
	copy(out, ledger.timestamps)
	return out
}

// Len returns the number of distinct edge keys.
func (s *EdgeWeightStore) Len() int {
	return len(s.mentions)
}

// Reset discards all mention history.
func (s *EdgeWeightStore) Reset() {
	s.mentions = make(map[RelationKey]*mentionLedger)
}
