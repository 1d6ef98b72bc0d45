package paramsearch

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
)

type book struct {
	ID        string    `paramsearch:"id,id"`
	Title     string    `paramsearch:"title,text" label:"Book title"`
	Price     float64   `paramsearch:"price,numeric"`
	Pages     int       `paramsearch:"pages,numeric"`
	InStock   bool      `paramsearch:"in_stock,boolean"`
	Published time.Time `paramsearch:"published_on,date"`
	Note      string    `paramsearch:"note"`
	Ignored   string
}

func TestParseSchema(t *testing.T) {
	meta, err := parseSchema[book]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.idIdx != 0 {
		t.Errorf("idIdx = %d", meta.idIdx)
	}
	if len(meta.fields) != 6 {
		t.Errorf("fields = %d, want 6", len(meta.fields))
	}

	s := meta.static()
	tests := map[string]schema.Type{
		"title":        schema.Text,
		"price":        schema.Numeric,
		"in_stock":     schema.Boolean,
		"published_on": schema.Date,
	}
	for name, want := range tests {
		if got, _ := s.FieldType(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if _, ok := s.FieldType("note"); ok {
		t.Error("mapped-only field must not be declared")
	}
	if got := s.HumanAttributeName("title"); got != "Book title" {
		t.Errorf("label = %q", got)
	}
}

func TestParseSchema_Pointer(t *testing.T) {
	if _, err := parseSchema[*book](); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseSchema_Errors(t *testing.T) {
	type noID struct {
		Title string `paramsearch:"title,text"`
	}
	type dupID struct {
		A string `paramsearch:"a,id"`
		B string `paramsearch:"b,id"`
	}
	type badModifier struct {
		ID string `paramsearch:"id,id"`
		X  string `paramsearch:"x,geo"`
	}
	type badType struct {
		ID   string   `paramsearch:"id,id"`
		Tags []string `paramsearch:"tags,text"`
	}

	tests := []struct {
		name string
		fn   func() error
		want string
	}{
		{"not a struct", func() error { _, err := parseSchema[string](); return err }, "not a struct"},
		{"no id", func() error { _, err := parseSchema[noID](); return err }, "no field with"},
		{"duplicate id", func() error { _, err := parseSchema[dupID](); return err }, "duplicate id"},
		{"unknown modifier", func() error { _, err := parseSchema[badModifier](); return err }, "unknown modifier"},
		{"unsupported type", func() error { _, err := parseSchema[badType](); return err }, "unsupported type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFromRecord(t *testing.T) {
	meta, err := parseSchema[book]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := meta.fromRecord(Record{ID: "42", Fields: map[string]string{
		"title":        "Dune",
		"price":        "9.5",
		"pages":        "412",
		"in_stock":     "true",
		"published_on": "1706745600",
		"note":         "classic",
		"unknown":      "x",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := v.Interface().(book)
	if b.ID != "42" || b.Title != "Dune" || b.Price != 9.5 || b.Pages != 412 || !b.InStock || b.Note != "classic" {
		t.Errorf("book = %+v", b)
	}
	if want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC); !b.Published.Equal(want) {
		t.Errorf("published = %v, want %v", b.Published, want)
	}
}

func TestFromRecord_BadValue(t *testing.T) {
	meta, _ := parseSchema[book]()
	_, err := meta.fromRecord(Record{ID: "1", Fields: map[string]string{"pages": "many"}})
	if err == nil || !strings.Contains(err.Error(), "pages") {
		t.Errorf("error = %v", err)
	}
}

func TestParseStoredTime(t *testing.T) {
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"1706745600", "2024-02-01T00:00:00Z", "2024-02-01"} {
		got, err := parseStoredTime(raw)
		if err != nil {
			t.Fatalf("parseStoredTime(%q): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("parseStoredTime(%q) = %v", raw, got)
		}
	}
	if _, err := parseStoredTime("yesterday"); err == nil {
		t.Error("expected error")
	}
}
