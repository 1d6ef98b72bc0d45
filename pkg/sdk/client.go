package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kailas-cloud/paramsearch/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Client talks to a paramsearch server. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	locale    string
	userAgent string
	obs       *metrics.Observer
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout, userAgent: "paramsearch-sdk"}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("sdk: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sdk: base url %q must be http or https", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := metrics.NewObserver("sdk", cfg.logger, cfg.metricsReg, errorStatus)
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: u, http: hc, locale: cfg.locale, userAgent: cfg.userAgent, obs: obs}, nil
}

// Search runs a GET search with a raw query string such as "status_eq=open&s=name+asc".
func (c *Client) Search(ctx context.Context, index, rawQuery string, opts ...CallOption) (*SearchResponse, error) {
	start := time.Now()
	var out SearchResponse
	err := c.get(ctx, indexPath(index, "search"), rawQuery, opts, &out)
	c.obs.Observe("search", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchParams runs a POST search. Parameter order is preserved.
func (c *Client) SearchParams(
	ctx context.Context, index string, params *orderedmap.OrderedMap[string, any], opts ...CallOption,
) (*SearchResponse, error) {
	start := time.Now()
	var out SearchResponse
	err := c.post(ctx, indexPath(index, "search"), params, opts, &out)
	c.obs.Observe("search_params", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Compile returns the compiled query for a raw query string without executing it.
func (c *Client) Compile(ctx context.Context, index, rawQuery string, opts ...CallOption) (*CompileResponse, error) {
	start := time.Now()
	var out CompileResponse
	err := c.get(ctx, indexPath(index, "compile"), rawQuery, opts, &out)
	c.obs.Observe("compile", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompileParams is the POST form of Compile.
func (c *Client) CompileParams(
	ctx context.Context, index string, params *orderedmap.OrderedMap[string, any], opts ...CallOption,
) (*CompileResponse, error) {
	start := time.Now()
	var out CompileResponse
	err := c.post(ctx, indexPath(index, "compile"), params, opts, &out)
	c.obs.Observe("compile_params", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Batch runs several searches against index in one request. Items fail
// independently; check BatchResult.Err for each.
func (c *Client) Batch(
	ctx context.Context, index string, searches []BatchSearch, opts ...CallOption,
) (*BatchResponse, error) {
	start := time.Now()
	var out BatchResponse
	err := c.postJSON(ctx, indexPath(index, "batch"), batchBody{Searches: searches}, applyCallOptions(opts), &out)
	c.obs.Observe("batch", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Fields lists the declared fields of index.
func (c *Client) Fields(ctx context.Context, index string, opts ...CallOption) (*FieldsResponse, error) {
	start := time.Now()
	var out FieldsResponse
	err := c.get(ctx, indexPath(index, "fields"), "", opts, &out)
	c.obs.Observe("fields", start, err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the service health. A degraded or unhealthy service answers 503
// with a regular report, so only transport failures return an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	var out HealthStatus
	req, err := c.newRequest(ctx, http.MethodGet, "/health", "", nil, callOptions{})
	if err == nil {
		err = c.do(req, &out, http.StatusOK, http.StatusServiceUnavailable)
	}
	c.obs.Observe("health", start, err)
	return out, err
}

func (c *Client) get(ctx context.Context, path, rawQuery string, opts []CallOption, out any) error {
	co := applyCallOptions(opts)
	query := joinQuery(rawQuery, co.values())
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, co)
	if err != nil {
		return err
	}
	return c.do(req, out, http.StatusOK)
}

// searchBody mirrors the server's POST body.
type searchBody struct {
	Params  *orderedmap.OrderedMap[string, any] `json:"params"`
	Page    *int                                `json:"page,omitempty"`
	PerPage *int                                `json:"per_page,omitempty"`
	Fields  []string                            `json:"fields,omitempty"`
}

func (c *Client) post(
	ctx context.Context, path string, params *orderedmap.OrderedMap[string, any], opts []CallOption, out any,
) error {
	co := applyCallOptions(opts)
	if params == nil {
		params = orderedmap.New[string, any]()
	}
	body := searchBody{Params: params, Fields: co.fields}
	if co.page > 0 {
		body.Page = &co.page
	}
	if co.perPage > 0 {
		body.PerPage = &co.perPage
	}
	return c.postJSON(ctx, path, body, co, out)
}

// batchBody mirrors the server's batch POST body.
type batchBody struct {
	Searches []BatchSearch `json:"searches"`
}

func (c *Client) postJSON(ctx context.Context, path string, body any, co callOptions, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("sdk: encode body: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, "", bytes.NewReader(data), co)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, http.StatusOK)
}

func (c *Client) newRequest(
	ctx context.Context, method, path, rawQuery string, body io.Reader, co callOptions,
) (*http.Request, error) {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return nil, fmt.Errorf("sdk: build path: %w", err)
	}
	u.Path = unescaped
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	locale := co.locale
	if locale == "" {
		locale = c.locale
	}
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any, accept ...int) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	for _, code := range accept {
		if resp.StatusCode == code {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("sdk: decode %s response: %w", req.URL.Path, err)
			}
			return nil
		}
	}
	return decodeError(resp)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: resp.Status}
	var body errorBody
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.Join(apiErr, err)
	}
	if json.Unmarshal(data, &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Parameter = body.Parameter
	}
	return apiErr
}

func applyCallOptions(opts []CallOption) callOptions {
	var co callOptions
	for _, o := range opts {
		o(&co)
	}
	return co
}

// values renders paging and projection as query parameters.
func (co callOptions) values() url.Values {
	v := url.Values{}
	if co.page > 0 {
		v.Set("page", strconv.Itoa(co.page))
	}
	if co.perPage > 0 {
		v.Set("per_page", strconv.Itoa(co.perPage))
	}
	if len(co.fields) > 0 {
		v.Set("fields", strings.Join(co.fields, ","))
	}
	return v
}

func joinQuery(raw string, extra url.Values) string {
	raw = strings.TrimPrefix(raw, "?")
	enc := extra.Encode()
	switch {
	case raw == "":
		return enc
	case enc == "":
		return raw
	default:
		return raw + "&" + enc
	}
}

// indexPath returns the escaped route of an index action.
func indexPath(index, action string) string {
	return "/v1/indexes/" + url.PathEscape(index) + "/" + action
}
