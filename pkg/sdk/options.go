package sdk

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	locale     string
	userAgent  string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout of the default HTTP client. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLocale sends locale as Accept-Language on every request.
func WithLocale(locale string) Option {
	return optionFunc(func(c *clientConfig) {
		c.locale = locale
	})
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// CallOption tunes a single request.
type CallOption func(*callOptions)

type callOptions struct {
	page    int
	perPage int
	fields  []string
	locale  string
}

// Page selects the 1-based page number.
func Page(n int) CallOption {
	return func(o *callOptions) { o.page = n }
}

// PerPage sets the page size.
func PerPage(n int) CallOption {
	return func(o *callOptions) { o.perPage = n }
}

// Fields restricts the returned document fields.
func Fields(names ...string) CallOption {
	return func(o *callOptions) { o.fields = names }
}

// Locale overrides the client locale for one request.
func Locale(locale string) CallOption {
	return func(o *callOptions) { o.locale = locale }
}
