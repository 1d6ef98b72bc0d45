package schema

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Static is an in-memory schema: declared field types plus optional labels.
type Static struct {
	types  map[string]Type
	labels map[string]string
	lang   language.Tag
}

var (
	_ TypeMapper   = (*Static)(nil)
	_ ColumnLister = (*Static)(nil)
	_ Labeler      = (*Static)(nil)
)

// NewStatic creates a Static schema. Maps are copied.
func NewStatic(types map[string]Type, labels map[string]string) *Static {
	s := &Static{
		types:  make(map[string]Type, len(types)),
		labels: make(map[string]string, len(labels)),
		lang:   language.English,
	}
	for k, v := range types {
		s.types[k] = v
	}
	for k, v := range labels {
		s.labels[k] = v
	}
	return s
}

// WithLanguage sets the language used when humanizing unlabeled names.
func (s *Static) WithLanguage(tag language.Tag) *Static {
	s.lang = tag
	return s
}

// FieldType returns the declared type of name.
func (s *Static) FieldType(name string) (Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Columns lists declared fields sorted by name.
func (s *Static) Columns() []Field {
	out := make([]Field, 0, len(s.types))
	for name, t := range s.types {
		out = append(out, Reconstruct(strings.TrimPrefix(name, ":"), t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// HumanAttributeName returns the configured label, or a humanized name.
func (s *Static) HumanAttributeName(name string) string {
	if l, ok := s.labels[name]; ok {
		return l
	}
	return Humanize(name, s.lang)
}

// Merge overlays the declared types of s on top of base. Types in s win.
func (s *Static) Merge(base *Static) *Static {
	if base == nil {
		return s
	}
	merged := NewStatic(base.types, base.labels).WithLanguage(s.lang)
	for k, v := range s.types {
		merged.types[k] = v
	}
	for k, v := range s.labels {
		merged.labels[k] = v
	}
	return merged
}

// Humanize turns "created_at" into "Created at" and drops a trailing "_id".
func Humanize(name string, tag language.Tag) string {
	name = strings.TrimPrefix(name, ":")
	name = strings.TrimSuffix(name, "_id")
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	if len(words) == 0 {
		return ""
	}
	words[0] = cases.Title(tag).String(words[0])
	for i := 1; i < len(words); i++ {
		words[i] = cases.Lower(tag).String(words[i])
	}
	return strings.Join(words, " ")
}
