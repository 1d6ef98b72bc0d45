package query

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/order"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/predicate"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/value"
)

const (
	containsSuffix    = "_cont"
	notContainsSuffix = "_not_cont"
	translationPrefix = "translations_"
	defaultLocale     = "en"
)

// Options control a single compilation.
type Options struct {
	// Schema is the field type collaborator: nil, schema.TypeMapper or schema.ColumnLister.
	Schema any
	// Locale qualifies translated fields when Globalize is set.
	Locale    string
	Globalize bool
	// Escape escapes query syntax in free-text input.
	Escape bool
	Source []string
}

// DefaultOptions returns globalized, escaped options in the default locale.
func DefaultOptions() Options {
	return Options{Locale: defaultLocale, Globalize: true, Escape: true}
}

// Compiler turns parameter maps into Compiled queries. It is safe for concurrent use.
type Compiler struct {
	normalizer      *value.Normalizer
	booleanPrefixes []string
	logger          *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDatetimeParser sets the parser used for DD.MM.YYYY[ HH:MM] values.
func WithDatetimeParser(p value.DatetimeParser) Option {
	return func(c *Compiler) { c.normalizer = value.NewNormalizer(p) }
}

// WithBooleanPrefixes replaces the naming convention for boolean fields.
func WithBooleanPrefixes(prefixes []string) Option {
	return func(c *Compiler) { c.booleanPrefixes = prefixes }
}

// WithLogger sets the logger for dropped-key diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		normalizer: value.NewNormalizer(nil),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile builds a query from in. The input is not modified.
// Unrecognized keys and blank values are dropped; a value that looks like a date
// but cannot be parsed fails the whole compilation with domain.ErrInvalidValue.
func (c *Compiler) Compile(in *params.Params, opts Options) (*Compiled, error) {
	p := params.New()
	if in != nil {
		p = in.Clone()
	}
	if opts.Locale == "" {
		opts.Locale = defaultLocale
	}

	out := &Compiled{Source: opts.Source, Mode: mode.And}
	if raw, ok := p.Take(params.KeyMode); ok {
		if s, ok := params.StringValue(raw); ok {
			if m, valid := mode.Parse(s); valid {
				out.Mode = m
			}
		}
	}
	directive, _ := p.Take(params.KeySort)
	out.Sort = order.Build(joinText(directive))

	st := &state{
		Compiler: c,
		opts:     opts,
		resolver: schema.NewResolver(opts.Schema, c.booleanPrefixes),
		types:    make(map[string]schema.Type),
	}

	var texts []filter.Clause
	for _, key := range p.Keys() {
		raw, _ := p.Get(key)
		if params.IsBlank(raw) {
			continue
		}
		raw = value.NormalizeIntegers(key, raw)

		switch {
		case key == params.KeyTextCont || key == params.KeyTextEquals:
			if s := strings.TrimSpace(joinText(raw)); s != "" {
				texts = append(texts, filter.NewQueryString(s, opts.Escape))
			}
		case key == params.KeyGroups:
			cl, ok, err := st.groups(raw)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Filters = append(out.Filters, cl)
			}
		case isContains(key):
			if cl, ok := st.contains(key, raw); ok {
				texts = append(texts, cl)
			} else {
				st.drop(key)
			}
		default:
			cl, ok, err := st.filter(key, raw)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Filters = append(out.Filters, cl)
			}
		}
	}

	switch len(texts) {
	case 0:
	case 1:
		out.FreeText = &texts[0]
	default:
		ft := filter.Any(texts...)
		out.FreeText = &ft
	}
	out.Dropped = st.dropped
	return out, nil
}

// state carries per-compile data: field types are resolved at most once per compile.
type state struct {
	*Compiler
	opts     Options
	resolver *schema.Resolver
	types    map[string]schema.Type
	dropped  []string
}

func (s *state) drop(key string) {
	s.dropped = append(s.dropped, key)
	s.logger.Debug("Dropping unrecognized search parameter", zap.String("key", key))
}

func (s *state) fieldType(field string) schema.Type {
	if t, ok := s.types[field]; ok {
		return t
	}
	t := s.resolver.Resolve(field)
	s.types[field] = t
	return t
}

// filter builds the structured clause for one predicate key.
func (s *state) filter(key string, raw any) (filter.Clause, bool, error) {
	parsed, ok := predicate.Parse(key)
	if !ok {
		s.drop(key)
		return filter.Clause{}, false, nil
	}
	v, err := s.normalizer.Normalize(raw, s.fieldType(parsed.Fields[0]))
	if err != nil {
		return filter.Clause{}, false, domain.NewParameterError(key, err)
	}
	clauses := make([]filter.Clause, 0, len(parsed.Fields))
	for _, f := range parsed.Fields {
		cl := parsed.Predicate.Build(f, v)
		if t := s.fieldType(f); t != schema.Unknown {
			cl = cl.WithFieldType(f, string(t))
		}
		clauses = append(clauses, cl)
	}
	if len(clauses) == 1 {
		return clauses[0], true, nil
	}
	return filter.Any(clauses...), true, nil
}

// contains builds the scored substring match for a top-level "<fields>_cont" key.
func (s *state) contains(key string, raw any) (filter.Clause, bool) {
	fields := predicate.SplitFields(strings.TrimSuffix(key, containsSuffix))
	text := joinText(raw)
	if fields == nil || len(strings.Fields(text)) == 0 {
		return filter.Clause{}, false
	}
	clauses := make([]filter.Clause, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, predicate.Contains(s.qualify(f), text))
	}
	if len(clauses) == 1 {
		return clauses[0], true
	}
	return filter.Any(clauses...), true
}

// groups builds OR-of-AND filters from g. Each group is compiled through the
// predicate path only, so "_cont" inside a group is a filter, not free text.
func (s *state) groups(raw any) (filter.Clause, bool, error) {
	var branches []filter.Clause
	for _, g := range params.Groups(raw) {
		var conds []filter.Clause
		for _, key := range g.Keys() {
			v, _ := g.Get(key)
			if params.IsBlank(v) {
				continue
			}
			cl, ok, err := s.filter(key, value.NormalizeIntegers(key, v))
			if err != nil {
				return filter.Clause{}, false, err
			}
			if ok {
				conds = append(conds, cl)
			}
		}
		if len(conds) > 0 {
			branches = append(branches, filter.All(conds...))
		}
	}
	if len(branches) == 0 {
		return filter.Clause{}, false, nil
	}
	return filter.Any(branches...), true, nil
}

// qualify rewrites "translations_title" to "title_<locale>" when globalization is on.
func (s *state) qualify(field string) string {
	if !s.opts.Globalize {
		return field
	}
	if bare, ok := strings.CutPrefix(field, translationPrefix); ok && bare != "" {
		return bare + "_" + s.opts.Locale
	}
	return field
}

func isContains(key string) bool {
	return strings.HasSuffix(key, containsSuffix) && !strings.HasSuffix(key, notContainsSuffix)
}

// joinText flattens scalar or list input into a space-separated string.
func joinText(v any) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := params.StringValue(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case []int64:
		parts := make([]string, 0, len(t))
		for _, n := range t {
			parts = append(parts, fmt.Sprint(n))
		}
		return strings.Join(parts, " ")
	default:
		s, _ := params.StringValue(v)
		return s
	}
}
