package llm

import "fmt"

// ExtractionPrompt generates the prompt for entity and relation
// extraction from a single chat message. The sectioned plain-text
// format is deliberate — it parses more reliably than JSON across the
// small models this runs against.
func ExtractionPrompt(sender, content string) string {
	return fmt.Sprintf(`You are an entity extraction system building a knowledge graph about people.

Analyze this message from %s:
"%s"

Focus on %s's relationship with the topics, skills, and concepts mentioned.
Consider both explicit statements and implicit information about %s's knowledge, interests, and expertise.

Extract ALL meaningful entities and relationships:
1. Every distinct named person, organization, or place
2. Every specific skill or expertise area mentioned
3. Every tool, product, or technology referenced
4. Every concrete project or initiative discussed
5. Any clear interests or specializations revealed

Entity types: person, interest, activity, skill, tool, concept, organization.
Relation types: examples include has_skill, interested_in, works_at, uses, knows, related_to.

For each entity include a confidence score (0.0-1.0) and a one-line significance note.

Respond in EXACTLY this format, nothing else:

ENTITIES:
- name: <entity name>
  type: <entity type>
  attributes:
    confidence: <0.0-1.0>
    significance: <why this entity matters>

RELATIONS:
- source: <entity name>
  target: <entity name>
  type: <relation type>
  weight: <0.0-1.0>`, sender, content, sender, sender)
}

// EnrichmentPrompt generates the prompt for expanding one accepted
// entity into related entities and relations.
func EnrichmentPrompt(name, typ, context string) string {
	return fmt.Sprintf(`You are enriching a knowledge graph. Given one entity, suggest closely
related entities and the relations connecting them.

Entity: %s
Type: %s
Context: %s

Only suggest widely known, directly related entities — no speculation.
Two or three additions at most. If nothing useful comes to mind, return
empty sections.

Respond in EXACTLY this format, nothing else:

additional_entities:
- name: <entity name>
  type: <entity type>
  attributes:
    confidence: <0.0-1.0>
    significance: <why this entity matters>

additional_relations:
- source: <entity name>
  target: <entity name>
  type: <relation type>
  weight: <0.0-1.0>`, name, typ, context)
}
