package schemacache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
)

// source is the consumer interface for schema discovery (ISP).
type source interface {
	Schema(ctx context.Context, index string) (*schema.Static, error)
}

type entry struct {
	schema  *schema.Static
	expires time.Time
}

// CachedSource caches discovered index schemas in memory for a fixed TTL.
// Errors are not cached.
type CachedSource struct {
	inner      source
	ttl        time.Duration
	now        func() time.Time
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu      sync.Mutex
	entries map[string]entry
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	return &CachedSource{
		inner:      inner,
		ttl:        ttl,
		now:        time.Now,
		cacheTotal: cacheTotal,
		logger:     logger,
		entries:    make(map[string]entry),
	}
}

// Schema returns the cached schema for index or loads it from the inner source.
func (c *CachedSource) Schema(ctx context.Context, index string) (*schema.Static, error) {
	if s, ok := c.get(index); ok {
		c.incCache("hit")
		return s, nil
	}

	c.incCache("miss")

	s, err := c.inner.Schema(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("discover schema: %w", err)
	}

	c.put(index, s)
	c.logger.Debug("Cached index schema", zap.String("index", index), zap.Duration("ttl", c.ttl))
	return s, nil
}

// Invalidate drops the cached schema of index.
func (c *CachedSource) Invalidate(index string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, index)
}

func (c *CachedSource) get(index string) (*schema.Static, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[index]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, index)
		return nil, false
	}
	return e.schema, true
}

func (c *CachedSource) put(index string, s *schema.Static) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[index] = entry{schema: s, expires: c.now().Add(c.ttl)}
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
