package health

import "context"

// Pinger reports whether the search backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexProber looks up a configured FT index by name. A missing index is
// (false, nil); an error means the lookup itself failed.
type IndexProber interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
