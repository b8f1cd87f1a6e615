// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 8080
	DefaultLogLevel          = "INFO"
	DefaultBatchSize         = 5000
	DefaultWritePageSize     = 1000
	DefaultCountry           = "US"
	DefaultSourceBasePath    = "s3://overturemaps-us-west-2/release"
	DefaultSourceS3Region    = "us-west-2"
	DefaultSourceExtensions  = "httpfs,spatial"
	DefaultDBMaxOpenConns    = 4
	DefaultReportingInterval = 5 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// SourceConfig configures access to the source dataset.
type SourceConfig struct {
	basePath   string
	s3Region   string
	extensions []string
	threads    int
}

// NewSourceConfig creates a SourceConfig with defaults.
func NewSourceConfig() SourceConfig {
	return SourceConfig{
		basePath:   DefaultSourceBasePath,
		s3Region:   DefaultSourceS3Region,
		extensions: ParseList(DefaultSourceExtensions),
	}
}

// BasePath returns the root path of the source releases.
func (s SourceConfig) BasePath() string { return s.basePath }

// S3Region returns the S3 region of the source bucket.
func (s SourceConfig) S3Region() string { return s.s3Region }

// Extensions returns the DuckDB extensions to install and load.
func (s SourceConfig) Extensions() []string {
	ext := make([]string, len(s.extensions))
	copy(ext, s.extensions)
	return ext
}

// Threads returns the DuckDB thread count (0 keeps the engine default).
func (s SourceConfig) Threads() int { return s.threads }

// ImportConfig configures the import pipeline.
type ImportConfig struct {
	batchSize      int
	writePageSize  int
	exactCounts    bool
	country        string
	categoriesFile string
}

// NewImportConfig creates an ImportConfig with defaults.
func NewImportConfig() ImportConfig {
	return ImportConfig{
		batchSize:     DefaultBatchSize,
		writePageSize: DefaultWritePageSize,
		country:       DefaultCountry,
	}
}

// BatchSize returns the number of rows per fetch chunk and per commit.
func (c ImportConfig) BatchSize() int { return c.batchSize }

// WritePageSize returns the number of rows per INSERT statement.
func (c ImportConfig) WritePageSize() int { return c.writePageSize }

// ExactCounts returns whether inserts and updates are counted separately.
func (c ImportConfig) ExactCounts() bool { return c.exactCounts }

// Country returns the country code filter.
func (c ImportConfig) Country() string { return c.country }

// CategoriesFile returns the optional vocabulary file path.
func (c ImportConfig) CategoriesFile() string { return c.categoriesFile }

// WithBatchSize returns a copy with the given batch size.
func (c ImportConfig) WithBatchSize(n int) ImportConfig {
	c.batchSize = n
	return c
}

// WithExactCounts returns a copy with exact counting toggled.
func (c ImportConfig) WithExactCounts(enabled bool) ImportConfig {
	c.exactCounts = enabled
	return c
}

// WithCategoriesFile returns a copy with the given vocabulary file.
func (c ImportConfig) WithCategoriesFile(path string) ImportConfig {
	c.categoriesFile = path
	return c
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	dbMaxOpenConns    int
	reportingInterval time.Duration
	importCfg         ImportConfig
	source            SourceConfig
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:              DefaultHost,
		port:              DefaultPort,
		logLevel:          DefaultLogLevel,
		logFormat:         LogFormatPretty,
		dbMaxOpenConns:    DefaultDBMaxOpenConns,
		reportingInterval: DefaultReportingInterval,
		importCfg:         NewImportConfig(),
		source:            NewSourceConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the destination database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// DBMaxOpenConns returns the destination pool size.
func (c AppConfig) DBMaxOpenConns() int { return c.dbMaxOpenConns }

// ReportingInterval returns the minimum time between progress logs.
func (c AppConfig) ReportingInterval() time.Duration { return c.reportingInterval }

// Import returns the import pipeline config.
func (c AppConfig) Import() ImportConfig { return c.importCfg }

// Source returns the source dataset config.
func (c AppConfig) Source() SourceConfig { return c.source }

// LogAttrs returns the non-secret settings for a startup log line.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("db", redactURL(c.dbURL)),
		slog.Int("batch_size", c.importCfg.batchSize),
		slog.Bool("exact_counts", c.importCfg.exactCounts),
		slog.String("country", c.importCfg.country),
		slog.String("source", c.source.basePath),
	}
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the destination database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithDBMaxOpenConns sets the destination pool size.
func WithDBMaxOpenConns(n int) AppConfigOption {
	return func(c *AppConfig) { c.dbMaxOpenConns = n }
}

// WithReportingInterval sets the progress log interval.
func WithReportingInterval(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.reportingInterval = d }
}

// WithImportConfig sets the import pipeline config.
func WithImportConfig(ic ImportConfig) AppConfigOption {
	return func(c *AppConfig) { c.importCfg = ic }
}

// WithSourceConfig sets the source dataset config.
func WithSourceConfig(sc SourceConfig) AppConfigOption {
	return func(c *AppConfig) { c.source = sc }
}

// NewAppConfigWithOptions creates an AppConfig with the given options applied.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of c with the options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ParseList splits a comma-separated list, trimming blanks.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// redactURL hides the password of a database URL.
func redactURL(url string) string {
	scheme := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if scheme < 0 || at < scheme {
		return url
	}
	userinfo := url[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return url[:scheme+3] + userinfo[:colon] + ":***" + url[at:]
	}
	return url
}
