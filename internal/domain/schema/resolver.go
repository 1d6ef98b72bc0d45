package schema

import "strings"

// DefaultBooleanPrefixes mark a field as boolean by naming convention.
var DefaultBooleanPrefixes = []string{"is_"}

// TypeMapper exposes declared field types by name.
type TypeMapper interface {
	FieldType(name string) (Type, bool)
}

// ColumnLister exposes the declared fields as a list.
type ColumnLister interface {
	Columns() []Field
}

// Labeler provides human-readable attribute names.
type Labeler interface {
	HumanAttributeName(name string) string
}

// Resolver determines field types from a schema collaborator, falling back to naming conventions.
// The collaborator may be nil, a TypeMapper, or a ColumnLister.
type Resolver struct {
	source          any
	booleanPrefixes []string
}

// NewResolver creates a Resolver. A nil prefixes slice selects DefaultBooleanPrefixes.
func NewResolver(source any, booleanPrefixes []string) *Resolver {
	if booleanPrefixes == nil {
		booleanPrefixes = DefaultBooleanPrefixes
	}
	return &Resolver{source: source, booleanPrefixes: booleanPrefixes}
}

// Resolve returns the type of name: declared type first, then convention, else Unknown.
func (r *Resolver) Resolve(name string) Type {
	for _, candidate := range []string{name, ":" + name} {
		if t, ok := r.declared(candidate); ok {
			return t
		}
	}
	for _, prefix := range r.booleanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return Boolean
		}
	}
	return Unknown
}

func (r *Resolver) declared(name string) (Type, bool) {
	switch s := r.source.(type) {
	case TypeMapper:
		t, ok := s.FieldType(name)
		if ok && t != "" && t != Unknown {
			return t, true
		}
	case ColumnLister:
		for _, f := range s.Columns() {
			if f.Name() == name {
				return f.FieldType(), true
			}
		}
	}
	return "", false
}
