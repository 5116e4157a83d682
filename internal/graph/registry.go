package graph

// EntityRegistry maps entity identity (name, type) to the most recently
// observed record. Last write wins — attributes are never merged across
// writes. Lookups by name alone are deliberately weaker than the storage
// key: relation admission checks only that *some* entity carries the
// name, regardless of type. Not safe for concurrent use on its own.
type EntityRegistry struct {
	entities map[Identity]Entity
	byName   map[string]Identity // latest identity written for each name
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		entities: make(map[Identity]Entity),
		byName:   make(map[string]Identity),
	}
}

// Upsert overwrites any existing record with the same (name, type).
func (r *EntityRegistry) Upsert(e Entity) {
	r.entities[e.Identity()] = e
	r.byName[e.Name] = e.Identity()
}

// Get returns the most recently written entity for the given name, with
// ok=false if the name is unknown under any type.
func (r *EntityRegistry) Get(name string) (Entity, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Entity{}, false
	}
	return r.entities[id], true
}

// Exists reports whether any entity carries the given name.
func (r *EntityRegistry) Exists(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// All returns every registered entity. Order is unspecified.
func (r *EntityRegistry) All() []Entity {
	out := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	return out
}

// Len returns the number of distinct (name, type) entries.
func (r *EntityRegistry) Len() int {
	return len(r.entities)
}

// Reset discards all entries.
func (r *EntityRegistry) Reset() {
	r.entities = make(map[Identity]Entity)
	r.byName = make(map[string]Identity)
}
