package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/paramsearch/internal/db"
	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// idField is the stored field that, when present, overrides the key-derived document id.
const idField = "id"

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/search.Executor and usecase/search.SchemaSource.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a search repository. keyPrefix is prepended to index names.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Execute runs a compiled query and returns one page of records.
func (r *Repo) Execute(
	ctx context.Context, index string, c *query.Compiled, page request.Page,
) (*result.Page, error) {
	q := &db.Query{
		IndexName:    r.indexName(index),
		Where:        c.Query(),
		Sort:         c.Sort,
		Offset:       page.Offset(),
		Limit:        page.Size(),
		ReturnFields: c.Source,
	}

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, mapError(index, err)
	}

	return result.NewPage(r.toRecords(index, sr), sr.Total, page.Number(), page.Size()), nil
}

// Schema reads field types from FT.INFO. TAG, GEO and VECTOR attributes are left
// undeclared so naming conventions still apply to them.
func (r *Repo) Schema(ctx context.Context, index string) (*schema.Static, error) {
	info, err := r.store.IndexInfo(ctx, r.indexName(index))
	if err != nil {
		return nil, mapError(index, err)
	}

	types := make(map[string]schema.Type, len(info.Fields))
	for _, f := range info.Fields {
		switch f.Type {
		case db.IndexFieldText:
			types[f.QueryName()] = schema.Text
		case db.IndexFieldNumeric:
			types[f.QueryName()] = schema.Numeric
		}
	}
	return schema.NewStatic(types, nil), nil
}

// IndexExists reports whether the prefixed index exists.
func (r *Repo) IndexExists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName(index))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	return ok, nil
}

func (r *Repo) indexName(index string) string {
	return r.keyPrefix + index
}

func (r *Repo) toRecords(index string, sr *db.SearchResult) []result.Record {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := r.keyPrefix + index + ":"
	records := make([]result.Record, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id, ok := entry.Fields[idField]
		if !ok {
			id = strings.TrimPrefix(entry.Key, prefix)
		}
		records = append(records, result.NewRecord(id, entry.Score, entry.Fields))
	}
	return records
}

func mapError(index string, err error) error {
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %s", domain.ErrIndexNotFound, index)
	case errors.Is(err, db.ErrUnsupportedQuery):
		return fmt.Errorf("%w: %w", domain.ErrInvalidValue, err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, index, err)
	}
}
