// Package predicate holds the ordered registry of filter predicates and the key parser.
package predicate

import (
	"strings"

	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
)

// OrSeparator joins several fields in one key: "name_or_title_eq".
const OrSeparator = "_or_"

// Builder produces a clause for a resolved field and a normalized value.
type Builder func(field string, v any) filter.Clause

// Predicate is a named comparison recognised by its key suffix.
type Predicate struct {
	name   string
	suffix string
	build  Builder
}

// Name returns the predicate identifier, e.g. "eq".
func (p Predicate) Name() string { return p.name }

// Suffix returns the key suffix, e.g. "_eq".
func (p Predicate) Suffix() string { return p.suffix }

// Build creates the clause for field and v.
func (p Predicate) Build(field string, v any) filter.Clause { return p.build(field, v) }

func define(name string, build Builder) Predicate {
	return Predicate{name: name, suffix: "_" + name, build: build}
}

// registry is read-only after package init. Order matters: the first suffix that
// matches wins, so "not_eq" precedes "eq" and "not_in" precedes "in".
var registry = []Predicate{
	define("not_in", func(f string, v any) filter.Clause { return filter.Not(filter.NewTerms(f, List(v))) }),
	define("in", func(f string, v any) filter.Clause { return filter.NewTerms(f, List(v)) }),
	define("not_eq", func(f string, v any) filter.Clause { return filter.Not(exact(f, v)) }),
	define("eq", exact),
	define("gteq", func(f string, v any) filter.Clause { return filter.NewRange(f, filter.AtLeast(v)) }),
	define("lteq", func(f string, v any) filter.Clause { return filter.NewRange(f, filter.AtMost(v)) }),
	define("gt", func(f string, v any) filter.Clause { return filter.NewRange(f, filter.Above(v)) }),
	define("lt", func(f string, v any) filter.Clause { return filter.NewRange(f, filter.Below(v)) }),
	define("not_cont", func(f string, v any) filter.Clause { return filter.Not(Contains(f, text(v))) }),
	define("cont", func(f string, v any) filter.Clause { return Contains(f, text(v)) }),
	define("start", func(f string, v any) filter.Clause { return filter.NewPrefix(f, text(v)) }),
	define("present", func(f string, v any) filter.Clause { return presence(f, truthy(v)) }),
	define("blank", func(f string, v any) filter.Clause { return presence(f, !truthy(v)) }),
	define("null", func(f string, v any) filter.Clause { return presence(f, !truthy(v)) }),
}

// All returns the registered predicates in match order.
func All() []Predicate {
	out := make([]Predicate, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the predicate registered under name.
func Lookup(name string) (Predicate, bool) {
	for _, p := range registry {
		if p.name == name {
			return p, true
		}
	}
	return Predicate{}, false
}

// Match finds the first predicate whose suffix ends key and returns the field part.
func Match(key string) (string, Predicate, bool) {
	for _, p := range registry {
		if field, ok := strings.CutSuffix(key, p.suffix); ok && field != "" {
			return field, p, true
		}
	}
	return "", Predicate{}, false
}

// Contains builds the substring match used for "_cont": every whitespace-separated
// part must match as a wildcard, or every part must match as a phrase.
func Contains(field, s string) filter.Clause {
	parts := strings.Fields(s)
	wildcards := make([]filter.Clause, 0, len(parts))
	phrases := make([]filter.Clause, 0, len(parts))
	for _, part := range parts {
		wildcards = append(wildcards, filter.NewWildcard(field, part))
		phrases = append(phrases, filter.NewPhrase(field, part))
	}
	return filter.Any(filter.All(wildcards...), filter.All(phrases...))
}

// List flattens a scalar or list value into a slice of terms.
// Comma-separated strings are split, so "a,b" means ["a", "b"].
func List(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case string:
		parts := strings.Split(t, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []any{v}
	}
}

// exact matches a scalar as a term. A one-element list ("id_eq[]=5") is unwrapped,
// and a longer list matches any of its elements.
func exact(field string, v any) filter.Clause {
	switch v.(type) {
	case []any, []string, []int64:
		vs := List(v)
		if len(vs) == 1 {
			return filter.NewTerm(field, vs[0])
		}
		return filter.NewTerms(field, vs)
	default:
		return filter.NewTerm(field, v)
	}
}

func presence(field string, want bool) filter.Clause {
	if want {
		return filter.NewExists(field)
	}
	return filter.Not(filter.NewExists(field))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "0", "false", "f", "no", "off":
			return false
		}
		return true
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return v != nil
	}
}

func text(v any) string {
	if s, ok := params.StringValue(v); ok {
		return s
	}
	return ""
}
