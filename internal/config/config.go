package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/paramsearch/internal/domain/schema"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/value"
)

// Config holds the paramsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled"` // default true
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds search backend connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	DialTimeout      int      `yaml:"dial_timeout_sec"`
	// KeyPrefix is prepended to index names and stripped from document keys.
	KeyPrefix string `yaml:"key_prefix"`
}

// SearchConfig holds compiler and pagination settings.
type SearchConfig struct {
	DefaultPerPage   int      `yaml:"default_per_page"`
	MaxPerPage       int      `yaml:"max_per_page"`
	Globalize        *bool    `yaml:"globalize"` // default true
	Escape           *bool    `yaml:"escape"`    // default true
	DefaultLocale    string   `yaml:"default_locale"`
	Locales          []string `yaml:"available_locales"`
	BooleanPrefixes  []string `yaml:"boolean_prefixes"`
	DatetimeLocation string   `yaml:"datetime_location"`
	Discovery        bool     `yaml:"schema_discovery"`
	// SchemaTTLSec caches discovered schemas across requests; 0 disables the cache.
	SchemaTTLSec     *int `yaml:"schema_cache_ttl_sec"`
	MaxBatchSize     int  `yaml:"max_batch_size"`
	BatchConcurrency int  `yaml:"batch_concurrency"`
	// Indexes declares field types and labels per index.
	Indexes map[string]IndexConfig `yaml:"indexes"`
}

// IndexConfig declares the static schema of one index.
type IndexConfig struct {
	Fields map[string]string `yaml:"fields"` // field -> type name
	Labels map[string]string `yaml:"labels"` // field -> display name
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.DialTimeout <= 0 {
		c.Database.DialTimeout = 5
	}
	if c.Search.DefaultPerPage <= 0 {
		c.Search.DefaultPerPage = request.DefaultPerPage
	}
	if c.Search.MaxPerPage <= 0 {
		c.Search.MaxPerPage = request.MaxPerPage
	}
	if c.Search.Globalize == nil {
		c.Search.Globalize = ptr(true)
	}
	if c.Search.Escape == nil {
		c.Search.Escape = ptr(true)
	}
	if c.Search.DefaultLocale == "" {
		c.Search.DefaultLocale = "en"
	}
	if c.Search.DatetimeLocation == "" {
		c.Search.DatetimeLocation = "UTC"
	}
	if c.Search.SchemaTTLSec == nil {
		c.Search.SchemaTTLSec = ptr(60)
	}
	if c.Search.MaxBatchSize <= 0 {
		c.Search.MaxBatchSize = 100
	}
	if c.Search.BatchConcurrency <= 0 {
		c.Search.BatchConcurrency = 8
	}
	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = ptr(true)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}
	if c.Search.SchemaTTLSec != nil && *c.Search.SchemaTTLSec < 0 {
		return fmt.Errorf("search.schema_cache_ttl_sec must not be negative, got %d", *c.Search.SchemaTTLSec)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.DefaultPerPage > c.Search.MaxPerPage {
		return fmt.Errorf("search.default_per_page (%d) exceeds search.max_per_page (%d)",
			c.Search.DefaultPerPage, c.Search.MaxPerPage)
	}
	for _, l := range append([]string{c.Search.DefaultLocale}, c.Search.Locales...) {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("search locale %q: %w", l, err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for name, idx := range c.Search.Indexes {
		if err := request.ValidateIndexName(name); err != nil {
			return fmt.Errorf("search.indexes: %w", err)
		}
		for field, typ := range idx.Fields {
			if _, err := schema.ParseType(typ); err != nil {
				return fmt.Errorf("search.indexes.%s.fields.%s: %w", name, field, err)
			}
		}
	}
	return nil
}

// Location returns the time zone used to parse date parameters.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Search.DatetimeLocation)
	if err != nil {
		return nil, fmt.Errorf("search.datetime_location %q: %w", c.Search.DatetimeLocation, err)
	}
	return loc, nil
}

// CompilerOptions applies the datetime location and boolean naming convention.
func (c *Config) CompilerOptions(logger *zap.Logger) ([]query.Option, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := []query.Option{
		query.WithDatetimeParser(value.LayoutParser(loc)),
		query.WithLogger(logger),
	}
	if len(c.Search.BooleanPrefixes) > 0 {
		opts = append(opts, query.WithBooleanPrefixes(c.Search.BooleanPrefixes))
	}
	return opts, nil
}

// Schemas builds the static schema of every configured index.
func (c *Config) Schemas() map[string]*schema.Static {
	out := make(map[string]*schema.Static, len(c.Search.Indexes))
	for name, idx := range c.Search.Indexes {
		types := make(map[string]schema.Type, len(idx.Fields))
		for field, typ := range idx.Fields {
			t, err := schema.ParseType(typ)
			if err != nil {
				continue
			}
			types[field] = t
		}
		out[name] = schema.NewStatic(types, idx.Labels)
	}
	return out
}

// IndexNames lists the statically configured indexes.
func (c *Config) IndexNames() []string {
	names := make([]string, 0, len(c.Search.Indexes))
	for name := range c.Search.Indexes {
		names = append(names, name)
	}
	return names
}

// SchemaTTL returns the discovery cache lifetime; zero means every search reads FT.INFO.
func (c *Config) SchemaTTL() time.Duration {
	if c.Search.SchemaTTLSec == nil {
		return 0
	}
	return time.Duration(*c.Search.SchemaTTLSec) * time.Second
}

func ptr[T any](v T) *T { return &v }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file: internal/config -> project root
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
