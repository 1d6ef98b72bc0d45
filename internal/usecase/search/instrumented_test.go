package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
)

func TestInstrumentedExecutor_Success(t *testing.T) {
	inner := &mockExecutor{}
	e := NewInstrumentedExecutor(inner, zap.NewNop())
	before := testutil.ToFloat64(metrics.SearchQueriesTotal.WithLabelValues("instr_ok", "ok"))

	_, err := e.Execute(context.Background(), "instr_ok", &query.Compiled{Dropped: []string{"foo", "bar"}}, request.DefaultPageWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times", inner.calls)
	}
	if got := testutil.ToFloat64(metrics.SearchQueriesTotal.WithLabelValues("instr_ok", "ok")); got != before+1 {
		t.Errorf("search_queries_total = %f, want %f", got, before+1)
	}
	if got := testutil.ToFloat64(metrics.DroppedParamsTotal.WithLabelValues("instr_ok")); got < 2 {
		t.Errorf("dropped_params_total = %f, want >= 2", got)
	}
}

func TestInstrumentedExecutor_Error(t *testing.T) {
	inner := &mockExecutor{err: fmt.Errorf("wrap: %w", domain.ErrIndexNotFound)}
	e := NewInstrumentedExecutor(inner, zap.NewNop())

	_, err := e.Execute(context.Background(), "instr_err", &query.Compiled{}, request.DefaultPageWindow())
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.SearchQueriesTotal.WithLabelValues("instr_err", "not_found")); got < 1 {
		t.Errorf("search_queries_total{not_found} = %f", got)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrIndexNotFound, "not_found"},
		{domain.NewParameterError("k", errors.New("bad")), "invalid"},
		{context.Canceled, "canceled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
