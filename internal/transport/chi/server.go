package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/paramsearch/internal/logger"
	"github.com/kailas-cloud/paramsearch/internal/metrics"
	batchuc "github.com/kailas-cloud/paramsearch/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/paramsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/paramsearch/internal/usecase/search"
)

// Reserved query keys consumed by the transport and never passed to the compiler.
const (
	paramPage    = "page"
	paramPerPage = "per_page"
	paramFields  = "fields"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// Options configure the HTTP layer.
type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	DefaultLocale  string
	// Locales are the languages offered for Accept-Language negotiation.
	Locales []string
	Metrics bool
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        *searchuc.Service
	batch         *batchuc.Service
	health        *healthuc.Service
	opts          Options
	locales       *localeMatcher
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. A nil batch service disables the batch route.
func NewServer(
	search *searchuc.Service, batch *batchuc.Service, health *healthuc.Service, opts Options, logger *zap.Logger,
) *Server {
	if opts.DefaultPerPage <= 0 {
		opts.DefaultPerPage = request.DefaultPerPage
	}
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = request.MaxPerPage
	}
	s := &Server{
		search:  search,
		batch:   batch,
		health:  health,
		opts:    opts,
		locales: newLocaleMatcher(opts.DefaultLocale, opts.Locales),
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		parameterErrorHandler,
		sentinelHandler(domain.ErrInvalidValue, http.StatusBadRequest, codeInvalidValue),
		sentinelHandler(domain.ErrInvalidIndexName, http.StatusBadRequest, codeInvalidIndexName),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, codeIndexNotFound),
	}
	return s
}

// Handler builds the router with the middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	if s.opts.Metrics {
		r.Use(metrics.Middleware())
	}

	r.Get("/health", s.HealthCheck)
	if s.opts.Metrics {
		r.Get("/metrics", s.Metrics)
	}
	r.Route("/v1/indexes/{index}", func(r chi.Router) {
		r.Use(indexLogger)
		r.Get("/search", s.Search)
		r.Post("/search", s.Search)
		r.Get("/compile", s.Compile)
		r.Post("/compile", s.Compile)
		r.Get("/fields", s.Fields)
		if s.batch != nil {
			r.Post("/batch", s.Batch)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	return r
}

// Search handles GET|POST /v1/indexes/{index}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(r)
	if err != nil {
		s.handleRequestError(w, r, err)
		return
	}

	sr := s.search.NewSearch(r.Context(), req)
	page, err := sr.Results(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	compiled, _ := sr.Compiled()

	writeJSON(w, http.StatusOK, searchResponse{
		Index:      req.Index(),
		Mode:       string(sr.Mode()),
		Records:    recordsToDTO(page),
		Pagination: paginationToDTO(page),
		Dropped:    compiled.Dropped,
	})
}

// Compile handles GET|POST /v1/indexes/{index}/compile.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(r)
	if err != nil {
		s.handleRequestError(w, r, err)
		return
	}

	compiled, err := s.search.Compile(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{
		Index:   req.Index(),
		Mode:    string(compiled.Mode),
		Body:    compiled,
		Dropped: compiled.Dropped,
	})
}

// Batch handles POST /v1/indexes/{index}/batch. Items fail independently;
// the response is 200 whenever the batch itself is well formed.
func (s *Server) Batch(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	if err := request.ValidateIndexName(index); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var body batchBody
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(body.Searches) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "searches must not be empty")
		return
	}
	if limit := s.batch.MaxBatchSize(); len(body.Searches) > limit {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("batch size exceeds %d", limit))
		return
	}

	locale := s.locales.negotiate(r.Header.Get("Accept-Language"))
	items := make([]batchuc.Item, len(body.Searches))
	for i, q := range body.Searches {
		req, err := request.New(index, q.Params, s.page(q.Page, q.PerPage), q.Fields, locale)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		items[i] = batchuc.Item{ID: q.ID, Request: req}
	}

	results := s.batch.Search(r.Context(), items)
	out := batchResponse{Index: index, Results: make([]batchItemDTO, len(results))}
	for i, res := range results {
		item := batchItemDTO{ID: res.ID(), Status: string(res.Status())}
		if err := res.Err(); err != nil {
			item.Error = s.itemError(logpkg.WithBatchItem(r.Context(), res.ID()), err)
		} else {
			o := res.Value()
			pg := paginationToDTO(o.Page)
			item.Mode = string(o.Compiled.Mode)
			item.Records = recordsToDTO(o.Page)
			item.Pagination = &pg
			item.Dropped = o.Compiled.Dropped
		}
		out.Results[i] = item
	}
	writeJSON(w, http.StatusOK, out)
}

// Fields handles GET /v1/indexes/{index}/fields.
func (s *Server) Fields(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	locale := s.locales.negotiate(r.Header.Get("Accept-Language"))

	fields, err := s.search.Fields(r.Context(), index, locale)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]fieldDTO, len(fields))
	for i, f := range fields {
		items[i] = fieldDTO{Name: f.Name, Type: string(f.Type), Label: f.Label}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Index: index, Locale: locale, Fields: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readRequest builds a search request from the query string (GET) or JSON body (POST).
// page, per_page and fields are bound from the query string in both cases; for POST
// the body values take precedence.
func (s *Server) readRequest(r *http.Request) (request.Request, error) {
	var (
		p       *params.Params
		page    *int
		perPage *int
		fields  *[]string
		err     error
	)

	query := r.URL.Query()
	if err = runtime.BindQueryParameter("form", true, false, paramPage, query, &page); err != nil {
		return request.Request{}, badRequest("invalid page: %v", err)
	}
	if err = runtime.BindQueryParameter("form", true, false, paramPerPage, query, &perPage); err != nil {
		return request.Request{}, badRequest("invalid per_page: %v", err)
	}
	if err = runtime.BindQueryParameter("form", false, false, paramFields, query, &fields); err != nil {
		return request.Request{}, badRequest("invalid fields: %v", err)
	}

	if r.Method == http.MethodPost {
		var body searchBody
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return request.Request{}, badRequest("invalid request body: %v", err)
		}
		p = body.Params
		if body.Page != nil {
			page = body.Page
		}
		if body.PerPage != nil {
			perPage = body.PerPage
		}
		if body.Fields != nil {
			fields = &body.Fields
		}
	} else {
		p, err = params.ParseQuery(r.URL.RawQuery)
		if err != nil {
			return request.Request{}, badRequest("invalid query string: %v", err)
		}
	}
	if p != nil {
		for _, k := range []string{paramPage, paramPerPage, paramFields} {
			p.Take(k)
		}
	}

	var source []string
	if fields != nil {
		source = *fields
	}

	req, err := request.New(
		chi.URLParam(r, "index"),
		p,
		s.page(page, perPage),
		source,
		s.locales.negotiate(r.Header.Get("Accept-Language")),
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

// page applies the configured default and maximum page sizes.
func (s *Server) page(page, perPage *int) request.Page {
	number, size := 0, s.opts.DefaultPerPage
	if page != nil {
		number = *page
	}
	if perPage != nil {
		size = *perPage
	}
	return request.NewPage(number, size, s.opts.MaxPerPage)
}

// requestError is a malformed-request failure detected by the transport itself.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func (s *Server) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeError(w, http.StatusBadRequest, codeBadRequest, re.msg)
		return
	}
	s.handleDomainError(w, r, err)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns a client-safe message without exposing backend internals.
func safeDomainMessage(err error) string {
	var pe *domain.ParameterError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	for _, s := range []error{domain.ErrInvalidValue, domain.ErrInvalidIndexName, domain.ErrIndexNotFound} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// itemErrorCodes map domain sentinels to batch item error codes.
var itemErrorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidValue, codeInvalidValue},
	{domain.ErrInvalidIndexName, codeInvalidIndexName},
	{domain.ErrIndexNotFound, codeIndexNotFound},
}

// itemError renders the error of one batch item.
func (s *Server) itemError(ctx context.Context, err error) *errorResponse {
	out := &errorResponse{Code: codeInternalError, Message: safeDomainMessage(err)}
	var pe *domain.ParameterError
	if errors.As(err, &pe) {
		out.Parameter = pe.Key
	}
	for _, c := range itemErrorCodes {
		if errors.Is(err, c.err) {
			out.Code = c.code
			return out
		}
	}
	logpkg.FromContext(ctx).Error("batch item failed", zap.Error(err))
	return out
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// parameterErrorHandler reports the offending parameter key alongside the message.
func parameterErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var pe *domain.ParameterError
	if !errors.As(err, &pe) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:      codeInvalidValue,
		Message:   msg,
		Parameter: pe.Key,
	})
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
