package paramsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/db"
	dbRedis "github.com/kailas-cloud/paramsearch/internal/db/redis"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/value"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
	schemacache "github.com/kailas-cloud/paramsearch/internal/repository/schemacache"
	searchrepo "github.com/kailas-cloud/paramsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/paramsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/paramsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// backend is the subset of the database store the client drives.
type backend interface {
	Ping(ctx context.Context) error
	Close()
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Client is the paramsearch entry point. It is safe for concurrent use.
type Client struct {
	store     backend
	repo      *searchrepo.Repo
	searchSvc *searchuc.Service
	registry  *schemaRegistry
	cfg       *clientConfig
	obs       *metrics.Observer
}

// New creates a Client and waits until Redis answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("paramsearch: database address required (use WithRedis or WithAddrs)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("paramsearch: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("paramsearch: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store backend, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := metrics.NewObserver("client", cfg.logger, cfg.metricsReg, errorStatus)
	if err != nil {
		return nil, err
	}

	compilerOpts := []query.Option{query.WithLogger(logger)}
	if cfg.location != nil {
		compilerOpts = append(compilerOpts, query.WithDatetimeParser(value.LayoutParser(cfg.location)))
	}
	if cfg.booleanPrefixes != nil {
		compilerOpts = append(compilerOpts, query.WithBooleanPrefixes(cfg.booleanPrefixes))
	}
	compiler := query.NewCompiler(compilerOpts...)

	repo := searchrepo.New(store, cfg.keyPrefix)

	var discover searchuc.SchemaSource
	if cfg.discovery {
		discover = schemacache.New(repo, cfg.discoveryTTL, metrics.SchemaCacheTotal, logger)
	}
	registry := newSchemaRegistry(cfg.schemas, discover)

	searchSvc := searchuc.New(
		compiler,
		searchuc.NewInstrumentedExecutor(repo, logger),
		registry,
		searchuc.Config{
			Globalize:     cfg.globalize,
			Escape:        cfg.escape,
			DefaultLocale: cfg.locale,
		},
		logger,
	)

	return &Client{
		store:     store,
		repo:      repo,
		searchSvc: searchSvc,
		registry:  registry,
		cfg:       cfg,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search compiles p and runs it against index.
func (c *Client) Search(ctx context.Context, index string, p *Params, opts ...SearchOption) (*Results, error) {
	start := time.Now()
	res, err := c.search(ctx, index, p, opts)
	c.obs.Observe("search", start, err)
	return res, err
}

func (c *Client) search(ctx context.Context, index string, p *Params, opts []SearchOption) (*Results, error) {
	req, err := c.request(index, p, opts)
	if err != nil {
		return nil, err
	}
	sr := c.searchSvc.NewSearch(ctx, req)
	page, err := sr.Results(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	compiled, _ := sr.Compiled()
	return newResults(page, string(sr.Mode()), compiled.Dropped), nil
}

// CompiledQuery is a compiled parameter map in both supported query languages.
type CompiledQuery struct {
	// DSL is the Elasticsearch request body: query, sort and _source.
	DSL json.RawMessage
	// RedisQuery is the FT.SEARCH query string.
	RedisQuery string
	// Sort is the sort directive in "field dir" form.
	Sort    string
	Mode    string
	Dropped []string
}

// Compile compiles p for index without executing it.
func (c *Client) Compile(ctx context.Context, index string, p *Params, opts ...SearchOption) (*CompiledQuery, error) {
	start := time.Now()
	cq, err := c.compile(ctx, index, p, opts)
	c.obs.Observe("compile", start, err)
	return cq, err
}

func (c *Client) compile(ctx context.Context, index string, p *Params, opts []SearchOption) (*CompiledQuery, error) {
	req, err := c.request(index, p, opts)
	if err != nil {
		return nil, err
	}
	compiled, err := c.searchSvc.Compile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", index, err)
	}
	return newCompiledQuery(compiled)
}

func newCompiledQuery(compiled *query.Compiled) (*CompiledQuery, error) {
	dsl, err := json.Marshal(compiled)
	if err != nil {
		return nil, err
	}
	ft, err := dbRedis.RenderQuery(compiled.Query())
	if err != nil {
		return nil, fmt.Errorf("render redis query: %w", err)
	}
	return &CompiledQuery{
		DSL:        dsl,
		RedisQuery: ft,
		Sort:       compiled.Sort.String(),
		Mode:       string(compiled.Mode),
		Dropped:    compiled.Dropped,
	}, nil
}

// Field describes one declared field of an index.
type Field struct {
	Name  string
	Type  FieldType
	Label string
}

// Fields lists the declared fields of index with labels in locale ("" for the default).
func (c *Client) Fields(ctx context.Context, index, locale string) ([]Field, error) {
	start := time.Now()
	infos, err := c.searchSvc.Fields(ctx, index, locale)
	c.obs.Observe("fields", start, err)
	if err != nil {
		return nil, fmt.Errorf("fields %s: %w", index, err)
	}
	out := make([]Field, 0, len(infos))
	for _, f := range infos {
		out = append(out, Field{Name: f.Name, Type: f.Type, Label: f.Label})
	}
	return out, nil
}

// HealthReport is the outcome of a health check.
type HealthReport struct {
	// Status is "ok", "degraded" or "error".
	Status string
	// Checks maps "database" and "index:<name>" to "ok", "missing" or "error".
	Checks map[string]string
}

// Health pings Redis and probes every index with declared fields.
func (c *Client) Health(ctx context.Context) HealthReport {
	report := healthuc.New(c.store, c.repo, c.registry.names()).Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthReport{Status: string(report.Status), Checks: checks}
}

func (c *Client) request(index string, p *Params, opts []SearchOption) (request.Request, error) {
	so := searchOptions{}
	for _, o := range opts {
		o(&so)
	}
	size := so.perPage
	if size <= 0 {
		size = c.cfg.defaultPerPage
	}
	page := request.NewPage(so.page, size, c.cfg.maxPerPage)
	return request.New(index, p.internal(), page, so.fields, so.locale)
}
