package models

// EntityKind classifies an extracted entity.
type EntityKind string

const (
	EntityLocation  EntityKind = "LOCATION"
	EntityCrop      EntityKind = "CROP"
	EntityDate      EntityKind = "DATE"
	EntityCommodity EntityKind = "COMMODITY"
)

// Span marks a half-open token range [Start, End) in the normalized token
// sequence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one token.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Len returns the number of tokens covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Entity is a structured value extracted from the query text.
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Canonical  string     `json:"canonical"`
	Raw        string     `json:"raw"`
	Span       Span       `json:"span"`
	Confidence float64    `json:"confidence"`
}

// EntitySet holds all accepted entities of a query. For each kind the first
// entity is the primary one; the rest are alternates in text order.
type EntitySet struct {
	entities map[EntityKind][]Entity
}

// NewEntitySet builds a set from entities already ordered primary-first per
// kind.
func NewEntitySet(entities []Entity) EntitySet {
	s := EntitySet{entities: make(map[EntityKind][]Entity)}
	for _, e := range entities {
		s.entities[e.Kind] = append(s.entities[e.Kind], e)
	}
	return s
}

// Primary returns the primary entity of the given kind, if any.
func (s EntitySet) Primary(kind EntityKind) (Entity, bool) {
	es := s.entities[kind]
	if len(es) == 0 {
		return Entity{}, false
	}
	return es[0], true
}

// Alternates returns the non-primary entities of the given kind.
func (s EntitySet) Alternates(kind EntityKind) []Entity {
	es := s.entities[kind]
	if len(es) <= 1 {
		return nil
	}
	return es[1:]
}

// All returns every entity of the given kind, primary first.
func (s EntitySet) All(kind EntityKind) []Entity {
	return s.entities[kind]
}

// Len returns the total entity count across kinds.
func (s EntitySet) Len() int {
	n := 0
	for _, es := range s.entities {
		n += len(es)
	}
	return n
}
