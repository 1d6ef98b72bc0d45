package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
)

// InstrumentedExecutor wraps an Executor with metrics and logging.
type InstrumentedExecutor struct {
	inner  Executor
	logger *zap.Logger
}

// NewInstrumentedExecutor wraps an executor with observability.
func NewInstrumentedExecutor(inner Executor, logger *zap.Logger) *InstrumentedExecutor {
	return &InstrumentedExecutor{inner: inner, logger: logger}
}

// Execute delegates to the inner executor and records duration, outcome and dropped keys.
func (e *InstrumentedExecutor) Execute(
	ctx context.Context, index string, c *query.Compiled, page request.Page,
) (*result.Page, error) {
	if n := len(c.Dropped); n > 0 {
		metrics.DroppedParamsTotal.WithLabelValues(index).Add(float64(n))
	}

	start := time.Now()
	res, err := e.inner.Execute(ctx, index, c, page)
	elapsed := time.Since(start)
	metrics.SearchQueryDuration.WithLabelValues(index).Observe(elapsed.Seconds())

	if err != nil {
		metrics.SearchQueriesTotal.WithLabelValues(index, errorStatus(err)).Inc()
		e.logger.Warn("Search failed",
			zap.String("index", index),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.SearchQueriesTotal.WithLabelValues(index, "ok").Inc()
	e.logger.Debug("Search executed",
		zap.String("index", index),
		zap.Int("page", page.Number()),
		zap.Int("per_page", page.Size()),
		zap.Int("total", res.TotalEntries()),
		zap.Int("returned", res.Len()),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidValue):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
