// Package order parses sort directives into an ordered sort specification.
package order

import (
	"encoding/json"
	"strings"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Relevance is the pseudo-field for the engine's relevance score.
const Relevance = "_score"

// Order is a single (field, direction) sort entry.
type Order struct {
	Field     string
	Direction Direction
}

// MarshalJSON renders {"field":"dir"}.
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Direction{o.Field: o.Direction})
}

// Spec is an ordered, never-empty list of sort entries.
type Spec []Order

// Default sorts by relevance, then by id, both descending.
func Default() Spec {
	return Spec{
		{Field: Relevance, Direction: Desc},
		{Field: "id", Direction: Desc},
	}
}

// Build parses a directive such as "name desc" or "name desc created_at asc".
// A field without an explicit direction sorts ascending. A blank directive yields Default.
func Build(directive string) Spec {
	tokens := strings.Fields(directive)
	if len(tokens) == 0 {
		return Default()
	}
	spec := make(Spec, 0, (len(tokens)+1)/2)
	for i := 0; i < len(tokens); i++ {
		o := Order{Field: tokens[i], Direction: Asc}
		if i+1 < len(tokens) {
			if d, ok := parseDirection(tokens[i+1]); ok {
				o.Direction = d
				i++
			}
		}
		spec = append(spec, o)
	}
	return spec
}

// IsRelevance reports whether the entry orders by relevance score.
func (o Order) IsRelevance() bool { return o.Field == Relevance }

func (s Spec) String() string {
	parts := make([]string, 0, len(s))
	for _, o := range s {
		parts = append(parts, o.Field+" "+string(o.Direction))
	}
	return strings.Join(parts, " ")
}

func parseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return "", false
	}
}
