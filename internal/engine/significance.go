package engine

import (
	"strings"
	"unicode"

	"github.com/wovenlabs/loom/internal/graph"
)

// minConfidence is the extractor confidence below which a candidate
// entity is discarded.
const minConfidence = 0.7

// commonTerms are pronouns and filler the extractor occasionally emits
// as entities. Never worth a node.
var commonTerms = map[string]bool{
	"he": true, "she": true, "they": true, "it": true,
	"someone": true, "everyone": true, "anybody": true, "nobody": true,
}

// SignificanceGate is the default significance filter: it drops
// pronouns, near-empty names, low-confidence candidates, and candidates
// the extractor gave no significance note for.
type SignificanceGate struct{}

// IsSignificant implements graph.SignificanceFilter.
func (SignificanceGate) IsSignificant(e graph.Entity) bool {
	if commonTerms[strings.ToLower(e.Name)] {
		return false
	}

	if len(e.Name) < 2 || !containsAlnum(e.Name) {
		return false
	}

	if conf, ok := e.Attributes["confidence"]; ok && conf != "" {
		m := numberRe.FindString(conf)
		if m == "" {
			return false
		}
		if parseWeight(m) < minConfidence {
			return false
		}
	}

	// The extractor is asked to justify every entity; no justification
	// means it was likely hallucinated filler.
	if e.Attributes["significance"] == "" {
		return false
	}

	return true
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
