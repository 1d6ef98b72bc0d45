// Package filter models query clause fragments and the boolean tree built from them.
package filter

import "fmt"

// Kind identifies the shape of a clause.
type Kind int

// Clause kinds.
const (
	KindMatchAll Kind = iota
	KindQueryString
	KindTerm
	KindTerms
	KindRange
	KindWildcard
	KindPhrase
	KindPrefix
	KindExists
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMatchAll:
		return "match_all"
	case KindQueryString:
		return "query_string"
	case KindTerm:
		return "term"
	case KindTerms:
		return "terms"
	case KindRange:
		return "range"
	case KindWildcard:
		return "wildcard"
	case KindPhrase:
		return "match_phrase"
	case KindPrefix:
		return "prefix"
	case KindExists:
		return "exists"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Clause is an immutable query fragment. Leaf clauses carry a field and a value;
// bool clauses carry must/should/must_not children.
type Clause struct {
	kind  Kind
	field string
	// fieldType is the resolved type name of field ("text", "boolean", ...), empty when unknown.
	fieldType string
	value     any
	values    []any
	text      string
	escape    bool
	bounds    *Range
	must      []Clause
	should    []Clause
	mustNot   []Clause
}

// MatchAll matches every document.
func MatchAll() Clause { return Clause{kind: KindMatchAll} }

// NewQueryString is a full-text relevance query over the default fields.
// When escape is set, renderers escape query syntax in text.
func NewQueryString(text string, escape bool) Clause {
	return Clause{kind: KindQueryString, text: text, escape: escape}
}

// NewTerm creates an exact value match.
func NewTerm(field string, v any) Clause {
	return Clause{kind: KindTerm, field: field, value: v}
}

// NewTerms matches any of the given values.
func NewTerms(field string, vs []any) Clause {
	return Clause{kind: KindTerms, field: field, values: vs}
}

// NewRange creates a range condition.
func NewRange(field string, r Range) Clause {
	return Clause{kind: KindRange, field: field, bounds: &r}
}

// NewWildcard matches field values containing text anywhere (*text*).
func NewWildcard(field, text string) Clause {
	return Clause{kind: KindWildcard, field: field, text: text}
}

// NewPhrase matches text as a phrase.
func NewPhrase(field, text string) Clause {
	return Clause{kind: KindPhrase, field: field, text: text}
}

// NewPrefix matches field values starting with text.
func NewPrefix(field, text string) Clause {
	return Clause{kind: KindPrefix, field: field, text: text}
}

// NewExists matches documents that have a value for field.
func NewExists(field string) Clause {
	return Clause{kind: KindExists, field: field}
}

// All combines clauses with AND.
func All(cs ...Clause) Clause {
	return Clause{kind: KindBool, must: cs}
}

// Any combines clauses with OR: at least one must match.
func Any(cs ...Clause) Clause {
	return Clause{kind: KindBool, should: cs}
}

// Not negates all given clauses.
func Not(cs ...Clause) Clause {
	return Clause{kind: KindBool, mustNot: cs}
}

// Kind returns the clause shape.
func (c Clause) Kind() Kind { return c.kind }

// Field returns the target field of a leaf clause.
func (c Clause) Field() string { return c.field }

// Value returns the term value.
func (c Clause) Value() any { return c.value }

// Values returns the terms values.
func (c Clause) Values() []any { return c.values }

// Text returns the raw text of query_string, wildcard, phrase and prefix clauses.
func (c Clause) Text() string { return c.text }

// Escape reports whether query_string text must be escaped when rendered.
func (c Clause) Escape() bool { return c.escape }

// Range returns the bounds of a range clause.
func (c Clause) Range() *Range { return c.bounds }

// Must returns the AND children.
func (c Clause) Must() []Clause { return c.must }

// Should returns the OR children.
func (c Clause) Should() []Clause { return c.should }

// MustNot returns the negated children.
func (c Clause) MustNot() []Clause { return c.mustNot }

// FieldType returns the resolved type name of the leaf's field, or "".
func (c Clause) FieldType() string { return c.fieldType }

// WithFieldType stamps t on every leaf of c that targets field and has no type yet.
// Bool children are copied, never shared with c.
func (c Clause) WithFieldType(field, t string) Clause {
	if t == "" {
		return c
	}
	if c.kind != KindBool {
		if c.field == field && c.fieldType == "" {
			c.fieldType = t
		}
		return c
	}
	c.must = withFieldType(c.must, field, t)
	c.should = withFieldType(c.should, field, t)
	c.mustNot = withFieldType(c.mustNot, field, t)
	return c
}

func withFieldType(cs []Clause, field, t string) []Clause {
	if len(cs) == 0 {
		return cs
	}
	out := make([]Clause, len(cs))
	for i, ch := range cs {
		out[i] = ch.WithFieldType(field, t)
	}
	return out
}

// IsEmpty reports whether a bool clause has no children.
func (c Clause) IsEmpty() bool {
	return c.kind == KindBool && len(c.must) == 0 && len(c.should) == 0 && len(c.mustNot) == 0
}

// Range holds gt/gte/lt/lte bounds. Bound values are numbers, times or dates.
type Range struct {
	gt  any
	gte any
	lt  any
	lte any
}

// NewRangeBounds validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeBounds(gt, gte, lt, lte any) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() any { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() any { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() any { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() any { return r.lte }

// Above is a range with an exclusive lower bound.
func Above(v any) Range { return Range{gt: v} }

// AtLeast is a range with an inclusive lower bound.
func AtLeast(v any) Range { return Range{gte: v} }

// Below is a range with an exclusive upper bound.
func Below(v any) Range { return Range{lt: v} }

// AtMost is a range with an inclusive upper bound.
func AtMost(v any) Range { return Range{lte: v} }
