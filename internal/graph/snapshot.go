package graph

import (
	"sort"
	"time"
)

// Time filter values accepted by Snapshot.
const (
	FilterNow   = "now"
	FilterHour  = "1h"
	FilterDay   = "1d"
	FilterWeek  = "1w"
	FilterMonth = "1m"
)

// ValidFilter reports whether f is one of the recognized time filters.
// Serving boundaries should reject anything else; Snapshot itself falls
// back to unfiltered rendering for unknown values.
func ValidFilter(f string) bool {
	switch f {
	case FilterNow, FilterHour, FilterDay, FilterWeek, FilterMonth:
		return true
	}
	return false
}

// cutoff resolves a time filter to the oldest entity timestamp included
// in a snapshot. Unknown values fall back to no filtering (epoch start)
// rather than an error — internal callers reach here unvalidated.
func cutoff(filter string, now time.Time) time.Time {
	switch filter {
	case FilterNow:
		return now.Add(-time.Second)
	case FilterHour:
		return now.Add(-time.Hour)
	case FilterDay:
		return now.Add(-24 * time.Hour)
	case FilterWeek:
		return now.Add(-7 * 24 * time.Hour)
	case FilterMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Node is one entity in a rendered snapshot.
type Node struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  string            `json:"timestamp"`
}

// Edge is one weighted relation in a rendered snapshot.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Snapshot is a point-in-time, time-filtered view of the graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Snapshot renders the externally visible graph at now: entities whose
// own timestamp is at or after the filter cutoff, and edges whose
// weight is recomputed fresh and whose endpoints both survive the
// cutoff. Every surviving entity becomes a node whether or not an edge
// touches it. Output is sorted for deterministic rendering.
func (a *Accumulator) Snapshot(filter string, now time.Time) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	cut := cutoff(filter, now)

	surviving := make(map[string]bool)
	nodes := []Node{}
	for _, e := range a.registry.All() {
		if e.Timestamp.Before(cut) {
			continue
		}
		surviving[e.Name] = true
		nodes = append(nodes, Node{
			ID:         e.Name,
			Name:       e.Name,
			Type:       e.Type,
			Attributes: e.Attributes,
			Timestamp:  e.Timestamp.Format(time.RFC3339),
		})
	}

	edges := []Edge{}
	for _, we := range a.weights.AllEdges(now) {
		if !surviving[we.Source] || !surviving[we.Target] {
			continue
		}
		edges = append(edges, Edge{
			Source: we.Source,
			Target: we.Target,
			Type:   we.Type,
			Weight: we.Weight,
		})
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].Type < nodes[j].Type
	})
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})

	return Snapshot{Nodes: nodes, Edges: edges}
}
