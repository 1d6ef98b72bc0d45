// Package params holds the ordered parameter map fed to the query compiler.
package params

import (
	"fmt"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved keys with compiler-level meaning.
const (
	KeySort       = "s"
	KeyMode       = "m"
	KeyGroups     = "g"
	KeyTextCont   = "q_cont"
	KeyTextEquals = "q_eq"
)

// Params is a mapping from key to raw value that remembers insertion order.
// Values are string, []string, []any, map[string]any, *Params or JSON scalars.
type Params struct {
	m *orderedmap.OrderedMap[string, any]
}

// New creates an empty Params.
func New() *Params {
	return &Params{m: orderedmap.New[string, any]()}
}

// FromMap builds Params from a plain map. Keys are sorted, since map order is undefined.
func FromMap(src map[string]any) *Params {
	p := New()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, src[k])
	}
	return p
}

// Set stores value under key. Re-setting an existing key keeps its original position.
func (p *Params) Set(key string, value any) {
	p.m.Set(key, value)
}

// Get returns the raw value stored under key.
func (p *Params) Get(key string) (any, bool) {
	return p.m.Get(key)
}

// Take removes key and returns its value.
func (p *Params) Take(key string) (any, bool) {
	return p.m.Delete(key)
}

// Len returns the number of keys.
func (p *Params) Len() int { return p.m.Len() }

// Keys returns the keys in discovery order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key in discovery order.
func (p *Params) Each(fn func(key string, value any)) {
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a shallow copy; nested values are shared.
func (p *Params) Clone() *Params {
	c := New()
	p.Each(func(k string, v any) { c.Set(k, v) })
	return c
}

// MarshalJSON keeps key order in the output.
func (p *Params) MarshalJSON() ([]byte, error) {
	b, err := p.m.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes a JSON object, preserving key order at the top level.
func (p *Params) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, any]()
	if err := m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}
	p.m = m
	return nil
}

// StringValue returns v as a string when it is a scalar.
func StringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case bool, int, int64, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// IsBlank reports whether v carries no usable input.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case *Params:
		return t == nil || t.Len() == 0
	default:
		return false
	}
}

// Groups extracts the list of grouped filters stored under g.
// Accepted shapes: a list of maps, or a map keyed by group index ("0", "1", ...).
func Groups(v any) []*Params {
	switch t := v.(type) {
	case []*Params:
		return t
	case []any:
		out := make([]*Params, 0, len(t))
		for _, item := range t {
			if g := asParams(item); g != nil {
				out = append(out, g)
			}
		}
		return out
	case []map[string]any:
		out := make([]*Params, 0, len(t))
		for _, item := range t {
			out = append(out, FromMap(item))
		}
		return out
	case *Params:
		out := make([]*Params, 0, t.Len())
		t.Each(func(_ string, item any) {
			if g := asParams(item); g != nil {
				out = append(out, g)
			}
		})
		return out
	case map[string]any:
		return Groups(FromMap(t))
	default:
		return nil
	}
}

func asParams(v any) *Params {
	switch t := v.(type) {
	case *Params:
		return t
	case map[string]any:
		return FromMap(t)
	default:
		return nil
	}
}
