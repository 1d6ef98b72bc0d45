package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/result"
)

// Config holds per-service search settings.
type Config struct {
	Globalize     bool
	Escape        bool
	DefaultLocale string
	// Schemas are the statically declared field types and labels per index.
	Schemas map[string]*schema.Static
}

// FieldInfo describes one declared field of an index.
type FieldInfo struct {
	Name  string
	Type  schema.Type
	Label string
}

// Service creates searches over configured indexes.
type Service struct {
	compiler *query.Compiler
	exec     Executor
	schemas  SchemaSource // nil disables discovery
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service. schemas may be nil.
func New(compiler *query.Compiler, exec Executor, schemas SchemaSource, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = language.English.String()
	}
	return &Service{compiler: compiler, exec: exec, schemas: schemas, cfg: cfg, logger: logger}
}

// NewSearch resolves the index schema and returns an unevaluated Search.
// Compilation and execution happen on first access.
func (s *Service) NewSearch(ctx context.Context, req request.Request) *Search {
	locale := req.Locale()
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}
	return &Search{
		svc:    s,
		req:    req,
		schema: s.resolveSchema(ctx, req.Index(), locale),
		opts: query.Options{
			Locale:    locale,
			Globalize: s.cfg.Globalize,
			Escape:    s.cfg.Escape,
			Source:    req.Source(),
		},
	}
}

// Compile compiles req without executing it.
func (s *Service) Compile(ctx context.Context, req request.Request) (*query.Compiled, error) {
	return s.NewSearch(ctx, req).Compiled()
}

// Run compiles and executes req, returning the page and the compiled query.
func (s *Service) Run(ctx context.Context, req request.Request) (*result.Page, *query.Compiled, error) {
	sr := s.NewSearch(ctx, req)
	page, err := sr.Results(ctx)
	if err != nil {
		return nil, nil, err
	}
	compiled, err := sr.Compiled()
	if err != nil {
		return nil, nil, err
	}
	return page, compiled, nil
}

// Fields lists the declared fields of index with their display labels.
func (s *Service) Fields(ctx context.Context, index, locale string) ([]FieldInfo, error) {
	if err := request.ValidateIndexName(index); err != nil {
		return nil, err
	}
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}
	sc := s.resolveSchema(ctx, index, locale)
	cols := sc.Columns()
	out := make([]FieldInfo, 0, len(cols))
	for _, f := range cols {
		out = append(out, FieldInfo{Name: f.Name(), Type: f.FieldType(), Label: sc.HumanAttributeName(f.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// resolveSchema overlays the static schema of index on the discovered one.
// Discovery failures degrade to the static schema and naming conventions.
func (s *Service) resolveSchema(ctx context.Context, index, locale string) *schema.Static {
	// Merge copies, so the shared configured schema is never mutated.
	static := schema.NewStatic(nil, nil).Merge(s.cfg.Schemas[index]).WithLanguage(parseLanguage(locale))

	if s.schemas == nil {
		return static
	}
	discovered, err := s.schemas.Schema(ctx, index)
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, domain.ErrIndexNotFound) {
			level = s.logger.Debug
		}
		level("Schema discovery failed, using static schema",
			zap.String("index", index), zap.Error(err))
		return static
	}
	return static.Merge(discovered)
}

func (s *Service) execute(ctx context.Context, sr *Search, c *query.Compiled) error {
	page, err := s.exec.Execute(ctx, sr.req.Index(), c, sr.req.Page())
	if err != nil {
		return fmt.Errorf("execute search on %s: %w", sr.req.Index(), err)
	}
	sr.page = page
	return nil
}

func parseLanguage(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
