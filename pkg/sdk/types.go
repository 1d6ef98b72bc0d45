package sdk

import (
	"encoding/json"
	"net/http"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one matching document.
type Record struct {
	ID     string            `json:"id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
}

// Pagination describes the returned page window.
// PreviousPage and NextPage are nil when there is no such page.
type Pagination struct {
	TotalEntries int  `json:"total_entries"`
	PerPage      int  `json:"per_page"`
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	PreviousPage *int `json:"previous_page"`
	NextPage     *int `json:"next_page"`
	Offset       int  `json:"offset"`
	OutOfBounds  bool `json:"out_of_bounds"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Index      string     `json:"index"`
	Mode       string     `json:"mode"`
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
	Dropped    []string   `json:"dropped,omitempty"`
}

// CompileResponse carries the compiled Elasticsearch request body.
type CompileResponse struct {
	Index   string          `json:"index"`
	Mode    string          `json:"mode"`
	Body    json.RawMessage `json:"body"`
	Dropped []string        `json:"dropped,omitempty"`
}

// Field describes one declared field of an index.
type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// FieldsResponse lists the declared fields of an index.
type FieldsResponse struct {
	Index  string  `json:"index"`
	Locale string  `json:"locale"`
	Fields []Field `json:"fields"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Parameter string `json:"parameter,omitempty"`
}

// BatchSearch is one named search of a batch. Zero paging values use server defaults.
type BatchSearch struct {
	ID      string                              `json:"id,omitempty"`
	Params  *orderedmap.OrderedMap[string, any] `json:"params"`
	Page    int                                 `json:"page,omitempty"`
	PerPage int                                 `json:"per_page,omitempty"`
	Fields  []string                            `json:"fields,omitempty"`
}

// BatchResult is the outcome of one search of a batch.
type BatchResult struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"` // "ok", "error"
	Mode       string      `json:"mode,omitempty"`
	Records    []Record    `json:"records,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Dropped    []string    `json:"dropped,omitempty"`
	Error      *ItemError  `json:"error,omitempty"`
}

// ItemError describes why one search of a batch failed.
type ItemError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Parameter string `json:"parameter,omitempty"`
}

// Err returns the item failure as an *APIError, or nil for successful items.
func (r BatchResult) Err() error {
	if r.Error == nil {
		return nil
	}
	status := http.StatusBadRequest
	switch r.Error.Code {
	case "index_not_found":
		status = http.StatusNotFound
	case "internal_error":
		status = http.StatusInternalServerError
	}
	return &APIError{StatusCode: status, Code: r.Error.Code, Message: r.Error.Message, Parameter: r.Error.Parameter}
}

// BatchResponse holds batch results in request order.
type BatchResponse struct {
	Index   string        `json:"index"`
	Results []BatchResult `json:"results"`
}
