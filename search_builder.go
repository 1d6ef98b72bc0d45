package paramsearch

import (
	"context"
	"strings"
)

// SearchBuilder is a fluent builder for typed queries. Each method adds one parameter;
// conditions compile in the order they were added.
type SearchBuilder[T any] struct {
	idx    *TypedIndex[T]
	params *Params
	groups []*Params
	opts   []SearchOption
}

// Where sets a raw parameter such as "name_or_title_start".
func (b *SearchBuilder[T]) Where(key string, value any) *SearchBuilder[T] {
	b.params.Set(key, value)
	return b
}

// Eq matches field equal to v.
func (b *SearchBuilder[T]) Eq(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_eq", v)
}

// NotEq excludes field equal to v.
func (b *SearchBuilder[T]) NotEq(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_not_eq", v)
}

// In matches field equal to any of values.
func (b *SearchBuilder[T]) In(field string, values ...any) *SearchBuilder[T] {
	return b.Where(field+"_in", values)
}

// NotIn excludes field equal to any of values.
func (b *SearchBuilder[T]) NotIn(field string, values ...any) *SearchBuilder[T] {
	return b.Where(field+"_not_in", values)
}

// Gt, Gte, Lt and Lte add range bounds on field.
func (b *SearchBuilder[T]) Gt(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_gt", v)
}

func (b *SearchBuilder[T]) Gte(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_gteq", v)
}

func (b *SearchBuilder[T]) Lt(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_lt", v)
}

func (b *SearchBuilder[T]) Lte(field string, v any) *SearchBuilder[T] {
	return b.Where(field+"_lteq", v)
}

// Cont adds a scored substring match on one or more fields.
func (b *SearchBuilder[T]) Cont(text string, fields ...string) *SearchBuilder[T] {
	if len(fields) == 0 {
		return b
	}
	return b.Where(strings.Join(fields, "_or_")+"_cont", text)
}

// Start matches field values beginning with prefix.
func (b *SearchBuilder[T]) Start(field, prefix string) *SearchBuilder[T] {
	return b.Where(field+"_start", prefix)
}

// Present requires field to exist.
func (b *SearchBuilder[T]) Present(field string) *SearchBuilder[T] {
	return b.Where(field+"_present", true)
}

// Null requires field to be missing.
func (b *SearchBuilder[T]) Null(field string) *SearchBuilder[T] {
	return b.Where(field+"_null", true)
}

// Text adds a free-text query over all fields.
func (b *SearchBuilder[T]) Text(q string) *SearchBuilder[T] {
	return b.Where(KeyTextCont, q)
}

// Or adds a group of AND-combined conditions; groups are OR-combined.
func (b *SearchBuilder[T]) Or(group *Params) *SearchBuilder[T] {
	b.groups = append(b.groups, group)
	return b
}

// Sort sets the sort directive, e.g. "price desc created_at asc".
func (b *SearchBuilder[T]) Sort(directive string) *SearchBuilder[T] {
	return b.Where(KeySort, directive)
}

// Mode sets the combinator flag ("and" or "or") reported back with results.
func (b *SearchBuilder[T]) Mode(m string) *SearchBuilder[T] {
	return b.Where(KeyMode, m)
}

// Page selects the 1-based page number.
func (b *SearchBuilder[T]) Page(n int) *SearchBuilder[T] {
	b.opts = append(b.opts, PageNumber(n))
	return b
}

// PerPage sets the page size.
func (b *SearchBuilder[T]) PerPage(n int) *SearchBuilder[T] {
	b.opts = append(b.opts, PerPage(n))
	return b
}

// Locale overrides the locale for translated fields.
func (b *SearchBuilder[T]) Locale(locale string) *SearchBuilder[T] {
	b.opts = append(b.opts, Locale(locale))
	return b
}

// Params returns the accumulated parameter map.
func (b *SearchBuilder[T]) Params() *Params {
	if len(b.groups) > 0 {
		b.params.Set(KeyGroups, b.groups)
	}
	return b.params
}

// Do executes the query.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*Page[T], error) {
	return b.idx.Find(ctx, b.Params(), b.opts...)
}

// Compile compiles the query without executing it.
func (b *SearchBuilder[T]) Compile(ctx context.Context) (*CompiledQuery, error) {
	return b.idx.Compile(ctx, b.Params(), b.opts...)
}
