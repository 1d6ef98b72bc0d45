package request

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
)

// Pagination limits.
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 500
	// MaxIndexNameLength bounds index names used in Redis keys.
	MaxIndexNameLength = 128
)

var indexNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Page is a 1-based page window.
type Page struct {
	number int
	size   int
}

// NewPage normalizes page and per-page values. Non-positive values take the defaults;
// size is clamped to maxSize (MaxPerPage when maxSize <= 0).
func NewPage(number, size, maxSize int) Page {
	if maxSize <= 0 {
		maxSize = MaxPerPage
	}
	if number <= 0 {
		number = DefaultPage
	}
	if size <= 0 {
		size = DefaultPerPage
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{number: number, size: size}
}

// DefaultPageWindow returns page 1 of DefaultPerPage entries.
func DefaultPageWindow() Page { return NewPage(0, 0, 0) }

// Number returns the 1-based page number.
func (p Page) Number() int { return p.number }

// Size returns the number of entries per page.
func (p Page) Size() int { return p.size }

// Offset returns the number of entries before the page.
func (p Page) Offset() int { return (p.number - 1) * p.size }

// Request is a validated search request against one index.
type Request struct {
	index  string
	params *params.Params
	page   Page
	source []string
	locale string
}

// New validates the index name. A nil params map is treated as empty.
func New(index string, p *params.Params, page Page, source []string, locale string) (Request, error) {
	if err := ValidateIndexName(index); err != nil {
		return Request{}, err
	}
	if p == nil {
		p = params.New()
	}
	if page.size == 0 {
		page = DefaultPageWindow()
	}
	return Request{index: index, params: p, page: page, source: source, locale: locale}, nil
}

// ValidateIndexName checks the characters and length of an index name.
func ValidateIndexName(name string) error {
	if name == "" || len(name) > MaxIndexNameLength || !indexNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidIndexName, name)
	}
	return nil
}

// Index returns the target index name.
func (r *Request) Index() string { return r.index }

// Params returns the raw filter parameters.
func (r *Request) Params() *params.Params { return r.params }

// Page returns the requested page window.
func (r *Request) Page() Page { return r.page }

// Source returns the requested field projection; empty means all fields.
func (r *Request) Source() []string { return r.source }

// Locale returns the requested locale, or "" for the configured default.
func (r *Request) Locale() string { return r.locale }
