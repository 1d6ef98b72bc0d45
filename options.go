package paramsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
)

// FieldType is the declared type of an index field.
type FieldType = schema.Type

// Field types accepted by WithFields and struct tags.
const (
	FieldBoolean  FieldType = schema.Boolean
	FieldDate     FieldType = schema.Date
	FieldDatetime FieldType = schema.Datetime
	FieldNumeric  FieldType = schema.Numeric
	FieldText     FieldType = schema.Text
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs            []string
	username         string
	password         string
	db               int
	keyPrefix        string
	readinessTimeout time.Duration

	locale          string
	globalize       bool
	escape          bool
	booleanPrefixes []string
	location        *time.Location
	defaultPerPage  int
	maxPerPage      int

	schemas      map[string]*schema.Static
	discovery    bool
	discoveryTTL time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
		locale:           "en",
		globalize:        true,
		escape:           true,
		schemas:          make(map[string]*schema.Static),
	}
}

// WithRedis configures the client to connect to a single Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithAddrs sets the Redis seed addresses (cluster or sentinel-less replicas).
func WithAddrs(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
	})
}

// WithAuth sets ACL credentials.
func WithAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithDB selects the logical Redis database.
func WithDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithKeyPrefix sets the prefix shared by index names and document keys.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the initial wait for Redis. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLocale sets the default locale for translated fields. Default: "en".
func WithLocale(locale string) Option {
	return optionFunc(func(c *clientConfig) {
		c.locale = locale
	})
}

// WithoutGlobalize keeps "translations_<field>" names unqualified.
func WithoutGlobalize() Option {
	return optionFunc(func(c *clientConfig) {
		c.globalize = false
	})
}

// WithoutEscape passes free text to the engine without escaping query syntax.
func WithoutEscape() Option {
	return optionFunc(func(c *clientConfig) {
		c.escape = false
	})
}

// WithBooleanPrefixes replaces the "is_" naming convention for boolean fields.
func WithBooleanPrefixes(prefixes ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.booleanPrefixes = prefixes
	})
}

// WithLocation sets the time zone for DD.MM.YYYY[ HH:MM] values. Default: UTC.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithPageSize sets the default and maximum page sizes. Defaults: 50 and 500.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPerPage = defaultSize
		c.maxPerPage = maxSize
	})
}

// WithFields declares field types and display labels of an index.
// Declared types take precedence over discovered ones.
func WithFields(index string, fields map[string]FieldType, labels map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.schemas[index] = schema.NewStatic(fields, labels).Merge(c.schemas[index])
	})
}

// WithDiscovery reads field types from FT.INFO and caches them for ttl.
func WithDiscovery(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.discovery = true
		c.discoveryTTL = ttl
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
