package db

import (
	"errors"

	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/order"
)

// Query is the input for a filtered, sorted, paginated search.
type Query struct {
	IndexName    string
	Where        filter.Clause
	Sort         order.Spec
	Offset       int
	Limit        int
	ReturnFields []string
}

// Validate checks the fields every backend needs.
func (q *Query) Validate() error {
	if !IsValidIdentifier(q.IndexName) {
		return errors.New("valid index name is required")
	}
	if q.Offset < 0 {
		return errors.New("offset must not be negative")
	}
	if q.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
