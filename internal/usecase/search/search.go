package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
)

// Search is one parameterized search. The compiled query and the result page are
// computed at most once. A Search is not safe for concurrent use.
type Search struct {
	svc    *Service
	req    request.Request
	schema *schema.Static
	opts   query.Options

	compiled   *query.Compiled
	compileErr error
	page       *result.Page
}

// Index returns the target index name.
func (s *Search) Index() string { return s.req.Index() }

// Compiled returns the compiled query, compiling it on first call.
// A compile error is memoized as well and returned on every later call.
func (s *Search) Compiled() (*query.Compiled, error) {
	if s.compiled != nil || s.compileErr != nil {
		return s.compiled, s.compileErr
	}
	opts := s.opts
	opts.Schema = s.schema
	start := time.Now()
	c, err := s.svc.compiler.Compile(s.req.Params(), opts)
	if err != nil {
		metrics.CompileDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.compileErr = err
		return nil, err
	}
	metrics.CompileDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	s.compiled = c
	return c, nil
}

// Results executes the search on first call and returns the memoized page afterwards.
func (s *Search) Results(ctx context.Context) (*result.Page, error) {
	if s.page != nil {
		return s.page, nil
	}
	c, err := s.Compiled()
	if err != nil {
		return nil, err
	}
	if err := s.svc.execute(ctx, s, c); err != nil {
		return nil, err
	}
	return s.page, nil
}

// Mode returns the combinator flag taken from "m"; And when compilation fails.
func (s *Search) Mode() mode.Mode {
	c, err := s.Compiled()
	if err != nil {
		return mode.And
	}
	return c.Mode
}

// Translate returns the display name of attr.
func (s *Search) Translate(attr string) string {
	return s.schema.HumanAttributeName(attr)
}
