// Package batch runs several searches against one index in a single call.
package batch

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	dombatch "github.com/kailas-cloud/paramsearch/internal/domain/batch"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
)

// Defaults for New.
const (
	MaxBatchSize       = 100
	DefaultConcurrency = 8
)

// Item is one named search of a batch. An empty ID is replaced by the item position.
type Item struct {
	ID      string
	Request request.Request
}

// Outcome is the result of one successful search.
type Outcome struct {
	Page     *result.Page
	Compiled *query.Compiled
}

// Service runs batches with bounded concurrency and per-item error reporting.
type Service struct {
	runner       Runner
	maxBatchSize int
	concurrency  int
	logger       *zap.Logger
}

// New creates a batch service.
func New(runner Runner, logger *zap.Logger) *Service {
	return &Service{
		runner:       runner,
		maxBatchSize: MaxBatchSize,
		concurrency:  DefaultConcurrency,
		logger:       logger,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithConcurrency configures how many searches of a batch run at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// MaxBatchSize returns the configured batch size limit.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Search runs every item and returns results in input order.
// A failing item never affects the others.
func (s *Service) Search(ctx context.Context, items []Item) []dombatch.Result[Outcome] {
	results := make([]dombatch.Result[Outcome], len(items))
	metrics.BatchSize.Observe(float64(len(items)))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError[Outcome](
				itemID(item, i),
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidValue),
			)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		id := itemID(item, i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = dombatch.NewError[Outcome](id, err)
				return nil
			}
			page, compiled, err := s.runner.Run(ctx, item.Request)
			if err != nil {
				s.logger.Debug("Batch item failed", zap.String("id", id), zap.Error(err))
			}
			results[i] = dombatch.Resolve(id, Outcome{Page: page, Compiled: compiled}, err)
			return nil
		})
	}
	_ = g.Wait()

	ok, failed := dombatch.Tally(results)
	s.logger.Debug("Batch finished", zap.Int("ok", ok), zap.Int("failed", failed))
	return results
}

func itemID(item Item, i int) string {
	if item.ID != "" {
		return item.ID
	}
	return strconv.Itoa(i)
}
