package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// recorded captures the last request seen by the test server.
type recorded struct {
	method   string
	path     string
	rawQuery string
	header   http.Header
	body     string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*rec = recorded{
			method:   r.Method,
			path:     r.URL.EscapedPath(),
			rawQuery: r.URL.RawQuery,
			header:   r.Header.Clone(),
			body:     string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithLocale("ru"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, rec
}

const searchJSON = `{
	"index": "books",
	"mode": "and",
	"records": [{"id": "1", "score": 1.5, "fields": {"title": "Dune"}}],
	"pagination": {"total_entries": 3, "per_page": 1, "current_page": 2, "total_pages": 3,
		"previous_page": 1, "next_page": 3, "offset": 1, "out_of_bounds": false},
	"dropped": ["junk"]
}`

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"localhost:8080", "ftp://host", "::"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestSearch_Get(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, searchJSON)

	res, err := c.Search(context.Background(), "books", "?status_eq=open&s=price+desc",
		Page(2), PerPage(1), Fields("title", "price"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodGet || rec.path != "/v1/indexes/books/search" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	want := "status_eq=open&s=price+desc&fields=title%2Cprice&page=2&per_page=1"
	if rec.rawQuery != want {
		t.Errorf("query = %q, want %q", rec.rawQuery, want)
	}
	if rec.header.Get("Accept-Language") != "ru" {
		t.Errorf("Accept-Language = %q", rec.header.Get("Accept-Language"))
	}
	if rec.header.Get(requestIDHeader) == "" {
		t.Error("missing request id")
	}

	if len(res.Records) != 1 || res.Records[0].Fields["title"] != "Dune" {
		t.Errorf("records = %+v", res.Records)
	}
	if p := res.Pagination; p.PreviousPage == nil || *p.PreviousPage != 1 || *p.NextPage != 3 {
		t.Errorf("pagination = %+v", p)
	}
	if len(res.Dropped) != 1 {
		t.Errorf("dropped = %v", res.Dropped)
	}
}

func TestSearchParams_PostKeepsOrder(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, searchJSON)

	p := orderedmap.New[string, any]()
	p.Set("z_eq", "1")
	p.Set("a_eq", "2")
	if _, err := c.SearchParams(context.Background(), "books", p, PerPage(10), Locale("en")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost {
		t.Errorf("method = %s", rec.method)
	}
	if want := `{"params":{"z_eq":"1","a_eq":"2"},"per_page":10}`; rec.body != want {
		t.Errorf("body = %s, want %s", rec.body, want)
	}
	if rec.header.Get("Accept-Language") != "en" {
		t.Errorf("per-call locale not applied: %q", rec.header.Get("Accept-Language"))
	}
}

func TestCompile(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK,
		`{"index":"books","mode":"or","body":{"query":{"match_all":{}},"sort":[{"_score":"desc"}]}}`)

	res, err := c.Compile(context.Background(), "books", "m=or")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/v1/indexes/books/compile" || rec.rawQuery != "m=or" {
		t.Errorf("request = %s?%s", rec.path, rec.rawQuery)
	}
	var body map[string]any
	if err := json.Unmarshal(res.Body, &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body["query"]; !ok || res.Mode != "or" {
		t.Errorf("response = %+v", res)
	}

	if _, err := c.CompileParams(context.Background(), "books", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.body != `{"params":{}}` {
		t.Errorf("body = %s", rec.body)
	}
}

func TestBatch(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"index":"books","results":[
		{"id":"a","status":"ok","mode":"and","records":[{"id":"1","score":0,"fields":{}}],
		 "pagination":{"total_entries":1,"per_page":5,"current_page":1,"total_pages":1}},
		{"id":"b","status":"error","error":{"code":"invalid_value","message":"invalid value","parameter":"d_eq"}}
	]}`)

	p := orderedmap.New[string, any]()
	p.Set("status_eq", "open")
	res, err := c.Batch(context.Background(), "books", []BatchSearch{
		{ID: "a", Params: p, PerPage: 5},
		{ID: "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/v1/indexes/books/batch" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	want := `{"searches":[{"id":"a","params":{"status_eq":"open"},"per_page":5},{"id":"b","params":null}]}`
	if rec.body != want {
		t.Errorf("body = %s, want %s", rec.body, want)
	}

	if len(res.Results) != 2 {
		t.Fatalf("results = %d", len(res.Results))
	}
	if err := res.Results[0].Err(); err != nil || len(res.Results[0].Records) != 1 {
		t.Errorf("first item: %+v, %v", res.Results[0], err)
	}
	err = res.Results[1].Err()
	if !errors.Is(err, ErrInvalidValue) || !errors.Is(err, ErrBadRequest) {
		t.Errorf("second item err = %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Parameter != "d_eq" {
		t.Errorf("parameter not propagated: %v", err)
	}
}

func TestFields(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK,
		`{"index":"books","locale":"ru","fields":[{"name":"price","type":"numeric","label":"Цена"}]}`)

	res, err := c.Fields(context.Background(), "books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/v1/indexes/books/fields" {
		t.Errorf("path = %s", rec.path)
	}
	if len(res.Fields) != 1 || res.Fields[0].Label != "Цена" {
		t.Errorf("fields = %+v", res.Fields)
	}
}

func TestHealth_Degraded(t *testing.T) {
	c, _ := newTestServer(t, http.StatusServiceUnavailable,
		`{"status":"degraded","checks":{"database":"ok","index:books":"missing"}}`)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != "degraded" || h.Checks["index:books"] != "missing" {
		t.Errorf("health = %+v", h)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		param  string
	}{
		{"invalid value", 400, `{"code":"invalid_value","message":"bad date","parameter":"born_on_gteq"}`, ErrInvalidValue, "born_on_gteq"},
		{"invalid index", 400, `{"code":"invalid_index_name","message":"bad"}`, ErrInvalidIndexName, ""},
		{"not found", 404, `{"code":"index_not_found","message":"index not found"}`, ErrIndexNotFound, ""},
		{"server", 500, `{"code":"internal_error","message":"internal error"}`, ErrServer, ""},
		{"no body", 502, ``, ErrServer, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)
			_, err := c.Search(context.Background(), "books", "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Parameter != tt.param {
				t.Errorf("apiErr = %+v", apiErr)
			}
		})
	}
}

func TestIndexPath_Escapes(t *testing.T) {
	c, rec := newTestServer(t, http.StatusBadRequest, `{"code":"invalid_index_name","message":"bad"}`)
	_, _ = c.Search(context.Background(), "a/b c", "")
	if rec.path != "/v1/indexes/a%2Fb%20c/search" {
		t.Errorf("path = %s", rec.path)
	}
}

func TestPrometheus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, searchJSON)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c, err := New(srv.URL, WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Search(context.Background(), "books", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(c.obs.Operations().WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok = %v", got)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&APIError{StatusCode: 400, Code: "invalid_value"}, "invalid_value"},
		{fmt.Errorf("wrapped: %w", &APIError{StatusCode: 404, Code: "index_not_found"}), "index_not_found"},
		{&APIError{StatusCode: 418, Code: "teapot"}, "api_error"},
		{errors.New("dial tcp: connection refused"), "transport_error"},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
