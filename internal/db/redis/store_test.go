package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/paramsearch/internal/db"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/order"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/value"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newStore(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	err := s.Ping(context.Background())
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(errors.New("connection refused"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := newStore(c).WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := newStore(c).WaitForReady(context.Background(), 120*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected last ping error in %q", err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- index.go tests ---

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "books")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("books"))))

	s := newStore(c)
	exists, err := s.IndexExists(context.Background(), "books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "books")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := newStore(c)
	exists, err := s.IndexExists(context.Background(), "books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestIndexInfo_ParsesAttributes(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "books")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("index_name"), mock.RedisString("books"),
			mock.RedisString("index_definition"), mock.RedisArray(
				mock.RedisString("key_type"), mock.RedisString("HASH"),
				mock.RedisString("prefixes"), mock.RedisArray(mock.RedisString("books:")),
			),
			mock.RedisString("attributes"), mock.RedisArray(
				mock.RedisArray(
					mock.RedisString("identifier"), mock.RedisString("title"),
					mock.RedisString("attribute"), mock.RedisString("title"),
					mock.RedisString("type"), mock.RedisString("TEXT"),
					mock.RedisString("WEIGHT"), mock.RedisString("1"),
					mock.RedisString("SORTABLE"),
				),
				mock.RedisArray(
					mock.RedisString("identifier"), mock.RedisString("$.price"),
					mock.RedisString("attribute"), mock.RedisString("price"),
					mock.RedisString("type"), mock.RedisString("NUMERIC"),
				),
			),
			mock.RedisString("num_docs"), mock.RedisString("2"),
		)))

	s := newStore(c)
	info, err := s.IndexInfo(context.Background(), "books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "books" {
		t.Errorf("Name = %q", info.Name)
	}
	if len(info.Prefixes) != 1 || info.Prefixes[0] != "books:" {
		t.Errorf("Prefixes = %v", info.Prefixes)
	}
	if len(info.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(info.Fields))
	}
	if info.Fields[0].Type != db.IndexFieldText || info.Fields[0].QueryName() != "title" {
		t.Errorf("Fields[0] = %+v", info.Fields[0])
	}
	if info.Fields[1].Type != db.IndexFieldNumeric || info.Fields[1].QueryName() != "price" {
		t.Errorf("Fields[1] = %+v", info.Fields[1])
	}
}

func TestIndexInfo_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "missing")).
		Return(mock.Result(mock.RedisError("missing: no such index")))

	s := newStore(c)
	_, err := s.IndexInfo(context.Background(), "missing")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

// --- search.go tests ---

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(7),
			mock.RedisString("books:1"),
			mock.RedisString("2.5"),
			mock.RedisArray(mock.RedisString("title"), mock.RedisString("Dune")),
			mock.RedisString("books:2"),
			mock.RedisString("1"),
			mock.RedisArray(mock.RedisString("title"), mock.RedisString("Emma")),
		)))

	s := newStore(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName:    "books",
		Where:        filter.NewTerm("status", "open"),
		Sort:         order.Spec{{Field: "title", Direction: order.Desc}},
		Offset:       20,
		Limit:        10,
		ReturnFields: []string{"title"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 7 || len(res.Entries) != 2 {
		t.Fatalf("Total = %d, entries = %d", res.Total, len(res.Entries))
	}
	if res.Entries[0].Key != "books:1" || res.Entries[0].Score != 2.5 || res.Entries[0].Fields["title"] != "Dune" {
		t.Errorf("Entries[0] = %+v", res.Entries[0])
	}

	want := "FT.SEARCH books @status:{open} RETURN 1 title WITHSCORES SORTBY title DESC LIMIT 20 10 DIALECT 2"
	if strings.Join(got, " ") != want {
		t.Errorf("command = %q\nwant      %q", strings.Join(got, " "), want)
	}
}

func TestSearch_RelevanceSortOmitsSortBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			for _, a := range cmd {
				if a == "SORTBY" {
					return false
				}
			}
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := newStore(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName: "books",
		Where:     filter.MatchAll(),
		Sort:      order.Default(),
		Limit:     50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearch_IndexNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("books: no such index")))

	s := newStore(c)
	_, err := s.Search(context.Background(), &db.Query{IndexName: "books", Where: filter.MatchAll(), Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(errors.New("connection reset")))

	s := newStore(c)
	_, err := s.Search(context.Background(), &db.Query{IndexName: "books", Where: filter.MatchAll(), Limit: 1})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	tests := []struct {
		name string
		q    db.Query
	}{
		{"empty index", db.Query{Where: filter.MatchAll(), Limit: 1}},
		{"bad index", db.Query{IndexName: "a b", Where: filter.MatchAll(), Limit: 1}},
		{"zero limit", db.Query{IndexName: "idx", Where: filter.MatchAll()}},
		{"negative offset", db.Query{IndexName: "idx", Where: filter.MatchAll(), Offset: -1, Limit: 1}},
		{"bad sort field", db.Query{IndexName: "idx", Where: filter.MatchAll(), Limit: 1,
			Sort: order.Spec{{Field: "a-b", Direction: order.Asc}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Search(ctx, &tt.q); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- render.go tests ---

func TestRenderQuery(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	moment := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		clause filter.Clause
		want   string
	}{
		{"match all", filter.MatchAll(), "*"},
		{"query string escaped", filter.NewQueryString("a-b (c)", true), `(a\-b \(c\))`},
		{"query string raw", filter.NewQueryString("a|b", false), "(a|b)"},
		{"tag term", filter.NewTerm("status", "in progress"), `@status:{in\ progress}`},
		{"bool term", filter.NewTerm("is_active", true), "@is_active:{true}"},
		{"numeric term", filter.NewTerm("id", int64(5)), "@id:[5 5]"},
		{"datetime term", filter.NewTerm("at", moment), "@at:[1706783400 1706783400]"},
		{"date term", filter.NewTerm("on", value.DateOf(day)), "@on:[1706745600 (1706832000]"},
		{"tag terms", filter.NewTerms("status", []any{"a", "b"}), "@status:{a | b}"},
		{"numeric terms", filter.NewTerms("id", []any{int64(1), int64(2)}), "(@id:[1 1] | @id:[2 2])"},
		{"single numeric terms", filter.NewTerms("id", []any{int64(5)}), "@id:[5 5]"},
		{
			"text term",
			filter.NewTerm("title", "war and peace").WithFieldType("title", "text"),
			`@title:"war and peace"`,
		},
		{
			"text terms",
			filter.NewTerms("title", []any{"a", "b-c"}).WithFieldType("title", "text"),
			`(@title:"a" | @title:"b\-c")`,
		},
		{
			"negated text term",
			filter.Not(filter.NewTerm("title", "x")).WithFieldType("title", "text"),
			`-@title:"x"`,
		},
		{
			"boolean int terms",
			filter.NewTerms("is_active", []any{int64(1), int64(0)}).WithFieldType("is_active", "boolean"),
			"@is_active:{true | false}",
		},
		{
			"boolean int term",
			filter.NewTerm("is_active", int64(0)).WithFieldType("is_active", "boolean"),
			"@is_active:{false}",
		},
		{"range gt", filter.NewRange("price", filter.Above(10)), "@price:[(10 +inf]"},
		{"range lte", filter.NewRange("price", filter.AtMost(9.5)), "@price:[-inf 9.5]"},
		{"range time", filter.NewRange("at", filter.AtLeast(moment)), "@at:[1706783400 +inf]"},
		{"range numeric string", filter.NewRange("n", filter.Below("3")), "@n:[-inf (3]"},
		{"wildcard", filter.NewWildcard("title", "war"), "@title:*war*"},
		{"phrase", filter.NewPhrase("title", `say "hi"`), `@title:"say \"hi\""`},
		{"prefix", filter.NewPrefix("title", "wa"), "@title:wa*"},
		{"exists", filter.NewExists("title"), "-ismissing(@title)"},
		{"empty bool", filter.All(), "*"},
		{"missing", filter.Not(filter.NewExists("title")), "ismissing(@title)"},
		{
			"contains",
			filter.Any(
				filter.All(filter.NewWildcard("t", "a"), filter.NewWildcard("t", "b")),
				filter.All(filter.NewPhrase("t", "a"), filter.NewPhrase("t", "b")),
			),
			`((@t:*a* @t:*b*) | (@t:"a" @t:"b"))`,
		},
		{
			"bool",
			filter.All(
				filter.NewTerm("status", "open"),
				filter.Any(filter.NewTerm("a", "1"), filter.NewRange("n", filter.Above(1))),
				filter.Not(filter.NewTerm("b", "x")),
			),
			"@status:{open} (@a:{1} | @n:[(1 +inf]) -@b:{x}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderQuery(tt.clause)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("renderQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderQuery_Unsupported(t *testing.T) {
	tests := []struct {
		name   string
		clause filter.Clause
	}{
		{"text range", filter.NewRange("title", filter.Above("abc"))},
		{"empty terms", filter.NewTerms("id", nil)},
		{"bad field", filter.NewTerm("a:b", "x")},
		{"nested", filter.All(filter.NewTerm("ok", "x"), filter.NewTerm("bad field", "y"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderQuery(tt.clause)
			if !errors.Is(err, db.ErrUnsupportedQuery) {
				t.Errorf("expected ErrUnsupportedQuery, got %v", err)
			}
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	got := escapeQuery(`a@b:{c}`)
	want := `a\@b\:\{c\}`
	if got != want {
		t.Errorf("escapeQuery() = %q, want %q", got, want)
	}
}

func TestIsRedisErr(t *testing.T) {
	if isRedisErr(nil, "anything") {
		t.Error("nil error matched")
	}
	if isRedisErr(errors.New("Unknown index name"), "unknown index name") {
		t.Error("non-redis error matched")
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

func TestRenderQuery_Exported(t *testing.T) {
	got, err := RenderQuery(filter.All(filter.NewTerm("status", "open"), filter.NewRange("n", filter.AtMost(int64(5)))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "@status:{open} @n:[-inf 5]" {
		t.Errorf("RenderQuery() = %q", got)
	}
}
