package paramsearch

import (
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// Reserved parameter keys.
const (
	KeySort       = params.KeySort
	KeyMode       = params.KeyMode
	KeyGroups     = params.KeyGroups
	KeyTextCont   = params.KeyTextCont
	KeyTextEquals = params.KeyTextEquals
)

// Params is an ordered parameter map. Condition order follows insertion order.
type Params struct {
	p *params.Params
}

// NewParams creates an empty parameter map.
func NewParams() *Params {
	return &Params{p: params.New()}
}

// ParseQuery parses a URL query string with bracket notation ("ids_in[]=1", "g[0][a_eq]=x").
func ParseQuery(raw string) (*Params, error) {
	p, err := params.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	return &Params{p: p}, nil
}

// Set stores value under key and returns p for chaining.
// Values are strings, string slices, numbers, booleans, nested *Params or []*Params.
func (p *Params) Set(key string, value any) *Params {
	p.ensure()
	p.p.Set(key, unwrapValue(value))
	return p
}

// Get returns the raw value stored under key.
func (p *Params) Get(key string) (any, bool) {
	if p == nil || p.p == nil {
		return nil, false
	}
	return p.p.Get(key)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil || p.p == nil {
		return nil
	}
	return p.p.Keys()
}

// Len returns the number of keys.
func (p *Params) Len() int {
	if p == nil || p.p == nil {
		return 0
	}
	return p.p.Len()
}

// MarshalJSON renders the map as a JSON object in key order.
func (p *Params) MarshalJSON() ([]byte, error) {
	p.ensure()
	return p.p.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (p *Params) UnmarshalJSON(data []byte) error {
	p.ensure()
	return p.p.UnmarshalJSON(data)
}

func (p *Params) ensure() {
	if p.p == nil {
		p.p = params.New()
	}
}

func (p *Params) internal() *params.Params {
	if p == nil {
		return nil
	}
	return p.p
}

func unwrapValue(v any) any {
	switch t := v.(type) {
	case *Params:
		return t.internal()
	case []*Params:
		out := make([]any, 0, len(t))
		for _, g := range t {
			if g != nil {
				out = append(out, g.internal())
			}
		}
		return out
	default:
		return v
	}
}

// SearchOption tunes a single Search or Compile call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	page    int
	perPage int
	fields  []string
	locale  string
}

// PageNumber selects the 1-based page number.
func PageNumber(n int) SearchOption {
	return func(o *searchOptions) { o.page = n }
}

// PerPage sets the page size; it is clamped to the client maximum.
func PerPage(n int) SearchOption {
	return func(o *searchOptions) { o.perPage = n }
}

// Fields restricts the returned document fields.
func Fields(names ...string) SearchOption {
	return func(o *searchOptions) { o.fields = names }
}

// Locale overrides the client locale for translated fields and labels.
func Locale(locale string) SearchOption {
	return func(o *searchOptions) { o.locale = locale }
}

// Record is one matching document.
type Record struct {
	ID     string
	Score  float64
	Fields map[string]string
}

// Pagination describes the returned page window.
// PrevPage and NextPage are 0 when there is no such page.
type Pagination struct {
	Page         int
	PerPage      int
	TotalEntries int
	TotalPages   int
	PrevPage     int
	NextPage     int
	OutOfBounds  bool
}

// Results is one page of search results.
type Results struct {
	Records    []Record
	Pagination Pagination
	// Mode is the combinator flag taken from "m".
	Mode string
	// Dropped lists parameter keys that matched no predicate.
	Dropped []string
}

func newResults(page *result.Page, mode string, dropped []string) *Results {
	records := make([]Record, 0, page.Len())
	page.Each(func(_ int, r result.Record) {
		records = append(records, Record{ID: r.ID(), Score: r.Score(), Fields: r.Fields()})
	})
	return &Results{
		Records: records,
		Pagination: Pagination{
			Page:         page.CurrentPage(),
			PerPage:      page.PerPage(),
			TotalEntries: page.TotalEntries(),
			TotalPages:   page.TotalPages(),
			PrevPage:     page.PreviousPage(),
			NextPage:     page.NextPage(),
			OutOfBounds:  page.OutOfBounds(),
		},
		Mode:    mode,
		Dropped: dropped,
	}
}
