package db

import (
	"context"
	"time"
)

// Store is the database facade used by the search service.
type Store interface {
	Pinger
	IndexInspector
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reads FT index metadata. Index lifecycle is managed outside this service.
type IndexInspector interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
}

// Searcher runs compiled queries over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
}
