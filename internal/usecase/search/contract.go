package search

import (
	"context"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// Executor runs a compiled query against a search backend.
type Executor interface {
	Execute(ctx context.Context, index string, c *query.Compiled, page request.Page) (*result.Page, error)
}

// SchemaSource discovers declared field types of an index.
type SchemaSource interface {
	Schema(ctx context.Context, index string) (*schema.Static, error)
}
