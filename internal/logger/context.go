package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Field keys shared by the HTTP layer and the search pipeline.
const (
	FieldRequestID = "request_id"
	FieldIndex     = "index"
	FieldBatchItem = "batch_item"
)

// ContextWithLogger stores l in ctx.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With(fields...))
}

// WithIndex tags the request logger with the target index.
func WithIndex(ctx context.Context, index string) context.Context {
	return With(ctx, zap.String(FieldIndex, index))
}

// WithBatchItem tags the logger with a batch item ID.
func WithBatchItem(ctx context.Context, id string) context.Context {
	return With(ctx, zap.String(FieldBatchItem, id))
}
