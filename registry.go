package paramsearch

import (
	"context"
	"sort"
	"sync"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	searchuc "github.com/kailas-cloud/paramsearch/internal/usecase/search"
)

// schemaRegistry holds declared index schemas and overlays them on discovered ones.
// It implements usecase/search.SchemaSource.
type schemaRegistry struct {
	discover searchuc.SchemaSource // nil disables discovery

	mu       sync.RWMutex
	declared map[string]*schema.Static
}

func newSchemaRegistry(declared map[string]*schema.Static, discover searchuc.SchemaSource) *schemaRegistry {
	r := &schemaRegistry{discover: discover, declared: make(map[string]*schema.Static, len(declared))}
	for name, s := range declared {
		r.declared[name] = s
	}
	return r
}

// register overlays s on the schema already declared for index.
func (r *schemaRegistry) register(index string, s *schema.Static) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declared[index] = s.Merge(r.declared[index])
}

func (r *schemaRegistry) lookup(index string) (*schema.Static, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.declared[index]
	return s, ok
}

func (r *schemaRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.declared))
	for name := range r.declared {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Schema returns the declared schema of index merged over the discovered one.
// A discovery failure is reported only when nothing was declared for index.
func (r *schemaRegistry) Schema(ctx context.Context, index string) (*schema.Static, error) {
	declared, ok := r.lookup(index)
	if r.discover == nil {
		if !ok {
			return schema.NewStatic(nil, nil), nil
		}
		return declared, nil
	}

	discovered, err := r.discover.Schema(ctx, index)
	switch {
	case err != nil && ok:
		return declared, nil
	case err != nil:
		return nil, err
	case !ok:
		return discovered, nil
	default:
		return declared.Merge(discovered), nil
	}
}
