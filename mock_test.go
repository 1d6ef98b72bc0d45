package paramsearch

import (
	"context"
	"sync"

	"github.com/kailas-cloud/paramsearch/internal/db"
)

// fakeBackend implements backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	pingErr    error
	searchFn   func(q *db.Query) (*db.SearchResult, error)
	info       map[string]*db.IndexInfo
	infoCalls  int
	queries    []*db.Query
	closed     bool
	missingIdx map[string]bool
}

func (f *fakeBackend) Ping(context.Context) error { return f.pingErr }

func (f *fakeBackend) Close() { f.closed = true }

func (f *fakeBackend) Search(_ context.Context, q *db.Query) (*db.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.searchFn != nil {
		return f.searchFn(q)
	}
	return &db.SearchResult{}, nil
}

func (f *fakeBackend) IndexInfo(_ context.Context, name string) (*db.IndexInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if info, ok := f.info[name]; ok {
		return info, nil
	}
	return nil, db.ErrIndexNotFound
}

func (f *fakeBackend) IndexExists(_ context.Context, name string) (bool, error) {
	return !f.missingIdx[name], nil
}

func (f *fakeBackend) lastQuery() *db.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}
