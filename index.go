package paramsearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
)

// TypedIndex is a generic, schema-first handle on an existing index.
// Field types and labels are inferred from T's struct tags and registered with the client.
type TypedIndex[T any] struct {
	name   string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed handle for index name.
// T must be a struct with paramsearch tags. Schema is parsed once and cached.
func NewIndex[T any](client *Client, name string) (*TypedIndex[T], error) {
	if err := request.ValidateIndexName(name); err != nil {
		return nil, fmt.Errorf("new index: %w", err)
	}
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	client.registry.register(name, meta.static())
	return &TypedIndex[T]{name: name, client: client, meta: meta}, nil
}

// Name returns the index name.
func (idx *TypedIndex[T]) Name() string { return idx.name }

// Hit is one decoded search result.
type Hit[T any] struct {
	Item  T
	Score float64
}

// Page is one page of decoded results.
type Page[T any] struct {
	Hits       []Hit[T]
	Pagination Pagination
	Mode       string
	Dropped    []string
}

// Find runs p against the index and decodes the matching records.
func (idx *TypedIndex[T]) Find(ctx context.Context, p *Params, opts ...SearchOption) (*Page[T], error) {
	res, err := idx.client.Search(ctx, idx.name, p, opts...)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit[T], 0, len(res.Records))
	for _, r := range res.Records {
		v, err := idx.meta.fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", idx.name, err)
		}
		item, ok := v.Interface().(T)
		if !ok {
			return nil, fmt.Errorf("decode %s: type assertion failed", idx.name)
		}
		hits = append(hits, Hit[T]{Item: item, Score: r.Score})
	}
	return &Page[T]{Hits: hits, Pagination: res.Pagination, Mode: res.Mode, Dropped: res.Dropped}, nil
}

// Compile compiles p for the index without executing it.
func (idx *TypedIndex[T]) Compile(ctx context.Context, p *Params, opts ...SearchOption) (*CompiledQuery, error) {
	return idx.client.Compile(ctx, idx.name, p, opts...)
}

// Fields lists the declared fields of the index.
func (idx *TypedIndex[T]) Fields(ctx context.Context, locale string) ([]Field, error) {
	return idx.client.Fields(ctx, idx.name, locale)
}

// Search starts a fluent query on the index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx, params: NewParams()}
}
