// Package query compiles parameter maps into structured search queries.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/order"
)

// Compiled is the output of the compiler, ready for an execution backend.
type Compiled struct {
	// FreeText is the scored full-text part; nil when no text terms were given.
	FreeText *filter.Clause
	// Filters are AND-combined, non-scoring conditions.
	Filters []filter.Clause
	Sort    order.Spec
	// Source restricts the returned fields; empty means all.
	Source []string
	// Mode is the combinator flag taken from "m". The compiler does not use it.
	Mode mode.Mode
	// Dropped lists keys that matched no predicate.
	Dropped []string `json:"-"`
}

// IsMatchAll reports whether the query has neither free text nor filters.
func (c *Compiled) IsMatchAll() bool {
	return c.FreeText == nil && len(c.Filters) == 0
}

// Query returns the whole boolean tree: free text as must, filters as filter.
func (c *Compiled) Query() filter.Clause {
	switch {
	case c.IsMatchAll():
		return filter.MatchAll()
	case len(c.Filters) == 0:
		return *c.FreeText
	case c.FreeText == nil:
		return filter.All(c.Filters...)
	default:
		return filter.All(append([]filter.Clause{*c.FreeText}, c.Filters...)...)
	}
}

// DSL renders the request body in Elasticsearch query DSL.
func (c *Compiled) DSL() map[string]any {
	body := map[string]any{
		"query": c.queryDSL(),
		"sort":  c.Sort,
	}
	if len(c.Source) > 0 {
		body["_source"] = c.Source
	}
	return body
}

func (c *Compiled) queryDSL() any {
	if c.IsMatchAll() {
		return filter.MatchAll()
	}
	b := make(map[string]any, 2)
	if c.FreeText != nil {
		if len(c.Filters) == 0 {
			return *c.FreeText
		}
		b["must"] = []filter.Clause{*c.FreeText}
	}
	if len(c.Filters) > 0 {
		b["filter"] = c.Filters
	}
	return map[string]any{"bool": b}
}

// MarshalJSON renders the Elasticsearch request body.
func (c *Compiled) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(c.DSL())
	if err != nil {
		return nil, fmt.Errorf("marshal compiled query: %w", err)
	}
	return b, nil
}
