package engine

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
)

// The extraction LLM answers in a sectioned plain-text format:
//
//	ENTITIES:
//	- name: Go
//	  type: skill
//	  attributes:
//	    confidence: 0.9
//	    significance: primary language
//
//	RELATIONS:
//	- source: Marco
//	  target: Go
//	  type: has_skill
//	  weight: 0.9
//
// parseExtraction turns that into a typed batch. Malformed sections
// degrade to whatever parsed cleanly — extraction noise is expected and
// never an error.

var (
	senderRe = regexp.MustCompile(`^([^:]+):\s*(.*)$`)
	numberRe = regexp.MustCompile(`(\d*\.?\d+)`)
)

// parseMessage splits a raw chat message into sender and content.
// Messages are expected as "Sender: text"; anything else yields an
// "Unknown" sender, which the pipeline skips.
func parseMessage(message string) (sender, content string) {
	message = strings.TrimSpace(message)
	m := senderRe.FindStringSubmatch(message)
	if m == nil {
		return "Unknown", message
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// parseExtraction parses an extraction response into a typed batch.
// All parsed entities and relations carry ts as their timestamp.
func parseExtraction(response string, ts time.Time) graph.Batch {
	if !strings.Contains(response, "ENTITIES:") {
		log.Printf("extract: no ENTITIES section in response")
		return graph.Batch{}
	}

	entitySection := after(response, "ENTITIES:")
	relationSection := ""
	if strings.Contains(response, "RELATIONS:") {
		entitySection = before(entitySection, "RELATIONS:")
		relationSection = after(response, "RELATIONS:")
	}

	return graph.Batch{
		Entities:  parseEntities(entitySection, ts),
		Relations: parseRelations(relationSection, ts),
	}
}

func after(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[i+len(marker):]
	}
	return s
}

func before(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[:i]
	}
	return s
}

func parseEntities(section string, ts time.Time) []graph.Entity {
	var entities []graph.Entity

	var name, typ string
	attrs := map[string]string{}
	inAttributes := false

	flush := func() {
		if name == "" {
			return
		}
		entities = append(entities, graph.NewEntity(name, typ, attrs, ts))
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "- name:"):
			flush()
			name = value(line)
			typ = ""
			attrs = map[string]string{}
			inAttributes = false
		case strings.HasPrefix(line, "type:"):
			typ = value(line)
			inAttributes = false
		case strings.HasPrefix(line, "attributes:"):
			inAttributes = true
		case inAttributes && strings.Contains(line, ":"):
			k, v, _ := strings.Cut(line, ":")
			attrs[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	flush()

	return entities
}

func parseRelations(section string, ts time.Time) []graph.Relation {
	if section == "" {
		return nil
	}

	var relations []graph.Relation

	var source, target, typ string
	weight := 1.0

	flush := func() {
		if source == "" {
			return
		}
		r, err := graph.NewRelation(source, target, typ, weight, ts)
		if err != nil {
			log.Printf("extract: dropping relation: %v", err)
			return
		}
		relations = append(relations, r)
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "- source:"):
			flush()
			source = value(line)
			target, typ = "", ""
			weight = 1.0
		case strings.HasPrefix(line, "target:"):
			target = value(line)
		case strings.HasPrefix(line, "type:"):
			typ = value(line)
		case strings.HasPrefix(line, "weight:"):
			weight = parseWeight(value(line))
		}
	}
	flush()

	return relations
}

// value returns the trimmed text after the first colon.
func value(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(v)
}

// parseWeight scrapes the first numeric token out of a weight value.
// Models wrap numbers in prose often enough that strict parsing loses
// data for no benefit. Defaults to 1.0.
func parseWeight(s string) float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return 1.0
	}
	w, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 1.0
	}
	return w
}
