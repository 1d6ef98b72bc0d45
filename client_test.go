package paramsearch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/paramsearch/internal/db"
	dbRedis "github.com/kailas-cloud/paramsearch/internal/db/redis"
)

func newTestClient(t *testing.T, fb *fakeBackend, opts ...Option) *Client {
	t.Helper()
	cfg := defaultConfig()
	cfg.keyPrefix = "ps:"
	for _, o := range opts {
		o.apply(cfg)
	}
	c, err := wireClient(fb, cfg)
	if err != nil {
		t.Fatalf("wireClient: %v", err)
	}
	return c
}

func mustParse(t *testing.T, raw string) *Params {
	t.Helper()
	p, err := ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery(%q): %v", raw, err)
	}
	return p
}

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestSearch_CompilesAndExecutes(t *testing.T) {
	fb := &fakeBackend{searchFn: func(*db.Query) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 3,
			Entries: []db.SearchEntry{
				{Key: "ps:books:1", Score: 1.5, Fields: map[string]string{"title": "Dune"}},
				{Key: "ps:books:2", Fields: map[string]string{"title": "Emma"}},
			},
		}, nil
	}}
	c := newTestClient(t, fb, WithFields("books", map[string]FieldType{"price": FieldNumeric}, nil))

	res, err := c.Search(context.Background(), "books", mustParse(t, "status_eq=open&price_gteq=10"), PerPage(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := fb.lastQuery()
	if q.IndexName != "ps:books" {
		t.Errorf("index = %q", q.IndexName)
	}
	if q.Offset != 0 || q.Limit != 2 {
		t.Errorf("window = %d/%d", q.Offset, q.Limit)
	}
	ft, err := dbRedis.RenderQuery(q.Where)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if ft != "@status:{open} @price:[10 +inf]" {
		t.Errorf("query = %q", ft)
	}

	if len(res.Records) != 2 || res.Records[0].ID != "1" || res.Records[0].Fields["title"] != "Dune" {
		t.Errorf("records = %+v", res.Records)
	}
	if res.Pagination.TotalPages != 2 || res.Pagination.NextPage != 2 || res.Pagination.PrevPage != 0 {
		t.Errorf("pagination = %+v", res.Pagination)
	}
	if res.Mode != "and" {
		t.Errorf("mode = %q", res.Mode)
	}
}

func TestSearch_PageSizeDefaults(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb, WithPageSize(20, 30))

	if _, err := c.Search(context.Background(), "books", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := fb.lastQuery(); q.Limit != 20 {
		t.Errorf("default limit = %d, want 20", q.Limit)
	}

	if _, err := c.Search(context.Background(), "books", nil, PageNumber(3), PerPage(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := fb.lastQuery(); q.Limit != 30 || q.Offset != 60 {
		t.Errorf("clamped window = %d/%d, want 60/30", q.Offset, q.Limit)
	}
}

func TestSearch_InvalidValue(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb, WithFields("books", map[string]FieldType{"published_on": FieldDate}, nil))

	p := NewParams().Set("published_on_gteq", "45.13.2024")
	_, err := c.Search(context.Background(), "books", p)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if key, ok := InvalidParameter(err); !ok || key != "published_on_gteq" {
		t.Errorf("parameter = %q, %v", key, ok)
	}
	if fb.lastQuery() != nil {
		t.Error("backend must not be queried when compilation fails")
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		index string
		err   error
		want  error
	}{
		{"invalid index name", "bad name", nil, ErrInvalidIndexName},
		{"index not found", "books", db.ErrIndexNotFound, ErrIndexNotFound},
		{"backend failure", "books", errors.New("boom"), ErrSearchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{searchFn: func(*db.Query) (*db.SearchResult, error) { return nil, tt.err }}
			c := newTestClient(t, fb)
			_, err := c.Search(context.Background(), tt.index, NewParams())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb, WithFields("books", map[string]FieldType{"price": FieldNumeric}, nil))

	p := NewParams().
		Set("q_cont", "war").
		Set("price_lt", "5").
		Set("s", "price desc").
		Set("m", "or").
		Set("junk", "x")
	cq, err := c.Compile(context.Background(), "books", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.lastQuery() != nil {
		t.Error("Compile must not execute")
	}
	if cq.RedisQuery != "(war) @price:[-inf (5]" {
		t.Errorf("redis query = %q", cq.RedisQuery)
	}
	if cq.Sort != "price desc" || cq.Mode != "or" {
		t.Errorf("sort = %q, mode = %q", cq.Sort, cq.Mode)
	}
	if len(cq.Dropped) != 1 || cq.Dropped[0] != "junk" {
		t.Errorf("dropped = %v", cq.Dropped)
	}

	var body map[string]any
	if err := json.Unmarshal(cq.DSL, &body); err != nil {
		t.Fatalf("DSL is not JSON: %v", err)
	}
	q, _ := body["query"].(map[string]any)
	if _, ok := q["bool"]; !ok {
		t.Errorf("query = %v, want bool", body["query"])
	}
}

func TestCompile_Translations(t *testing.T) {
	c := newTestClient(t, &fakeBackend{}, WithLocale("ru"))

	p := NewParams().Set("translations_title_eq", "Мир")
	cq, err := c.Compile(context.Background(), "books", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cq.RedisQuery != "@translations_title:{Мир}" {
		t.Errorf("eq on translations must stay unqualified, got %q", cq.RedisQuery)
	}

	p = NewParams().Set("translations_title_cont", "мир")
	cq, err = c.Compile(context.Background(), "books", p, Locale("en"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsAll(cq.RedisQuery, "@title_en:") {
		t.Errorf("cont must qualify with locale, got %q", cq.RedisQuery)
	}
}

func TestDiscovery_DeclaredTypesWin(t *testing.T) {
	fb := &fakeBackend{info: map[string]*db.IndexInfo{
		"ps:books": {Name: "ps:books", Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldText},
			{Name: "price", Type: db.IndexFieldNumeric},
		}},
	}}
	c := newTestClient(t, fb,
		WithDiscovery(time.Minute),
		WithFields("books", map[string]FieldType{"price": FieldText}, map[string]string{"title": "Book title"}),
	)

	fields, err := c.Fields(context.Background(), "books", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Field{
		{Name: "price", Type: FieldText, Label: "Price"},
		{Name: "title", Type: FieldText, Label: "Book title"},
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %+v", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %+v, want %+v", i, fields[i], want[i])
		}
	}

	if _, err := c.Fields(context.Background(), "books", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.infoCalls != 1 {
		t.Errorf("FT.INFO calls = %d, want 1 (cached)", fb.infoCalls)
	}
}

func TestDiscovery_FailureFallsBackToDeclared(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb,
		WithDiscovery(time.Minute),
		WithFields("books", map[string]FieldType{"price": FieldNumeric}, nil),
	)

	fields, err := c.Fields(context.Background(), "books", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 1 || fields[0].Type != FieldNumeric {
		t.Errorf("fields = %+v", fields)
	}

	other, err := c.Fields(context.Background(), "authors", "")
	if err != nil {
		t.Fatalf("undiscoverable index must degrade, got %v", err)
	}
	if len(other) != 0 {
		t.Errorf("fields = %+v", other)
	}
}

func TestHealth(t *testing.T) {
	fb := &fakeBackend{missingIdx: map[string]bool{"ps:authors": true}}
	c := newTestClient(t, fb,
		WithFields("books", map[string]FieldType{"price": FieldNumeric}, nil),
		WithFields("authors", map[string]FieldType{"born_on": FieldDate}, nil),
	)

	report := c.Health(context.Background())
	if report.Status != "degraded" {
		t.Errorf("status = %q", report.Status)
	}
	if report.Checks["index:books"] != "ok" || report.Checks["index:authors"] != "missing" {
		t.Errorf("checks = %v", report.Checks)
	}

	fb.pingErr = errors.New("down")
	report = c.Health(context.Background())
	if report.Status != "error" || report.Checks["database"] != "error" {
		t.Errorf("report = %+v", report)
	}
}

func TestPingAndClose(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fb.pingErr = errors.New("down")
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
	c.Close()
	if !fb.closed {
		t.Error("store not closed")
	}
}

func TestPrometheus_CountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, &fakeBackend{}, WithPrometheus(reg))

	if _, err := c.Search(context.Background(), "books", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Search(context.Background(), "bad name", nil); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(c.obs.Operations().WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok = %v", got)
	}
	if got := testutil.ToFloat64(c.obs.Operations().WithLabelValues("search", "invalid_index_name")); got != 1 {
		t.Errorf("invalid_index_name = %v", got)
	}

	// A second client on the same registry reuses the collectors.
	c2 := newTestClient(t, &fakeBackend{}, WithPrometheus(reg))
	if c2.obs.Operations() != c.obs.Operations() {
		t.Error("collectors not reused")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
