package batch

import (
	"context"

	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// Runner compiles and executes a single search.
type Runner interface {
	Run(ctx context.Context, req request.Request) (*result.Page, *query.Compiled, error)
}
