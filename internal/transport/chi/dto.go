package chi

import (
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeInvalidValue     = "invalid_value"
	codeInvalidIndexName = "invalid_index_name"
	codeIndexNotFound    = "index_not_found"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Parameter string `json:"parameter,omitempty"`
}

// searchBody is the POST form of a search: params keep their JSON key order.
type searchBody struct {
	Params  *params.Params `json:"params"`
	Page    *int           `json:"page"`
	PerPage *int           `json:"per_page"`
	Fields  []string       `json:"fields"`
}

// batchBody is the POST body of a batch: each search carries its own paging.
type batchBody struct {
	Searches []batchSearch `json:"searches"`
}

type batchSearch struct {
	ID      string         `json:"id"`
	Params  *params.Params `json:"params"`
	Page    *int           `json:"page"`
	PerPage *int           `json:"per_page"`
	Fields  []string       `json:"fields"`
}

type batchItemDTO struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Mode       string         `json:"mode,omitempty"`
	Records    []recordDTO    `json:"records,omitempty"`
	Pagination *paginationDTO `json:"pagination,omitempty"`
	Dropped    []string       `json:"dropped,omitempty"`
	Error      *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Index   string         `json:"index"`
	Results []batchItemDTO `json:"results"`
}

type recordDTO struct {
	ID     string            `json:"id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
}

type paginationDTO struct {
	TotalEntries int  `json:"total_entries"`
	PerPage      int  `json:"per_page"`
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	PreviousPage *int `json:"previous_page"`
	NextPage     *int `json:"next_page"`
	Offset       int  `json:"offset"`
	OutOfBounds  bool `json:"out_of_bounds"`
}

type searchResponse struct {
	Index      string        `json:"index"`
	Mode       string        `json:"mode"`
	Records    []recordDTO   `json:"records"`
	Pagination paginationDTO `json:"pagination"`
	Dropped    []string      `json:"dropped,omitempty"`
}

type compileResponse struct {
	Index   string          `json:"index"`
	Mode    string          `json:"mode"`
	Body    *query.Compiled `json:"body"`
	Dropped []string        `json:"dropped,omitempty"`
}

type fieldDTO struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

type fieldsResponse struct {
	Index  string     `json:"index"`
	Locale string     `json:"locale"`
	Fields []fieldDTO `json:"fields"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordsToDTO(p *result.Page) []recordDTO {
	out := make([]recordDTO, 0, p.Len())
	p.Each(func(_ int, r result.Record) {
		fields := r.Fields()
		if fields == nil {
			fields = map[string]string{}
		}
		out = append(out, recordDTO{ID: r.ID(), Score: r.Score(), Fields: fields})
	})
	return out
}

func paginationToDTO(p *result.Page) paginationDTO {
	return paginationDTO{
		TotalEntries: p.TotalEntries(),
		PerPage:      p.PerPage(),
		CurrentPage:  p.CurrentPage(),
		TotalPages:   p.TotalPages(),
		PreviousPage: optionalPage(p.PreviousPage()),
		NextPage:     optionalPage(p.NextPage()),
		Offset:       p.Offset(),
		OutOfBounds:  p.OutOfBounds(),
	}
}

// optionalPage maps the zero "no such page" value to JSON null.
func optionalPage(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
