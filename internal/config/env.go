package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., IMPORT_BATCH_SIZE).
type EnvConfig struct {
	// Host is the status server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the status server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DatabaseURL is the destination database URL.
	// Env: DATABASE_URL
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// DBURL is a fallback for DatabaseURL.
	// Env: DB_URL
	DBURL string `envconfig:"DB_URL"`

	// DBMaxOpenConns is the destination connection pool size.
	// Env: DB_MAX_OPEN_CONNS (default: 4)
	DBMaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"4"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Import configures the pipeline.
	Import ImportEnv `envconfig:"IMPORT"`

	// Source configures the source dataset.
	Source SourceEnv `envconfig:"SOURCE"`

	// Reporting configures progress reporting.
	Reporting ReportingEnv `envconfig:"REPORTING"`
}

// ImportEnv holds environment configuration for the pipeline.
type ImportEnv struct {
	// Env: IMPORT_BATCH_SIZE (default: 5000)
	BatchSize int `envconfig:"BATCH_SIZE" default:"5000"`

	// Env: IMPORT_WRITE_PAGE_SIZE (default: 1000)
	WritePageSize int `envconfig:"WRITE_PAGE_SIZE" default:"1000"`

	// ExactCounts splits written rows into inserts and updates with a
	// pre-write existence query.
	// Env: IMPORT_EXACT_COUNTS (default: false)
	ExactCounts bool `envconfig:"EXACT_COUNTS" default:"false"`

	// Env: IMPORT_COUNTRY (default: US)
	Country string `envconfig:"COUNTRY" default:"US"`

	// CategoriesFile is a YAML vocabulary replacing the built-in list.
	// Env: IMPORT_CATEGORIES_FILE
	CategoriesFile string `envconfig:"CATEGORIES_FILE"`
}

// SourceEnv holds environment configuration for the source dataset.
type SourceEnv struct {
	// Env: SOURCE_BASE_PATH (default: s3://overturemaps-us-west-2/release)
	BasePath string `envconfig:"BASE_PATH" default:"s3://overturemaps-us-west-2/release"`

	// Env: SOURCE_S3_REGION (default: us-west-2)
	S3Region string `envconfig:"S3_REGION" default:"us-west-2"`

	// Extensions is a comma-separated list of DuckDB extensions.
	// Env: SOURCE_EXTENSIONS (default: httpfs,spatial)
	Extensions string `envconfig:"EXTENSIONS" default:"httpfs,spatial"`

	// Env: SOURCE_THREADS (default: 0, engine default)
	Threads int `envconfig:"THREADS" default:"0"`
}

// ReportingEnv holds environment configuration for progress reporting.
type ReportingEnv struct {
	// LogTimeInterval is the interval between progress logs in seconds.
	// Env: REPORTING_LOG_TIME_INTERVAL (default: 5)
	LogTimeInterval float64 `envconfig:"LOG_TIME_INTERVAL" default:"5"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}

	// DATABASE_URL wins over DB_URL
	switch {
	case e.DatabaseURL != "":
		cfg = applyOption(cfg, WithDBURL(e.DatabaseURL))
	case e.DBURL != "":
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}

	if e.DBMaxOpenConns > 0 {
		cfg = applyOption(cfg, WithDBMaxOpenConns(e.DBMaxOpenConns))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	cfg = applyOption(cfg, WithImportConfig(e.Import.ToImportConfig()))
	cfg = applyOption(cfg, WithSourceConfig(e.Source.ToSourceConfig()))

	if e.Reporting.LogTimeInterval > 0 {
		cfg = applyOption(cfg, WithReportingInterval(
			time.Duration(e.Reporting.LogTimeInterval*float64(time.Second)),
		))
	}

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToImportConfig converts ImportEnv to ImportConfig.
func (i ImportEnv) ToImportConfig() ImportConfig {
	c := NewImportConfig()
	if i.BatchSize > 0 {
		c.batchSize = i.BatchSize
	}
	if i.WritePageSize > 0 {
		c.writePageSize = i.WritePageSize
	}
	if i.Country != "" {
		c.country = strings.ToUpper(i.Country)
	}
	c.exactCounts = i.ExactCounts
	c.categoriesFile = i.CategoriesFile
	return c
}

// ToSourceConfig converts SourceEnv to SourceConfig.
func (s SourceEnv) ToSourceConfig() SourceConfig {
	c := NewSourceConfig()
	if s.BasePath != "" {
		c.basePath = s.BasePath
	}
	if s.S3Region != "" {
		c.s3Region = s.S3Region
	}
	c.extensions = ParseList(s.Extensions)
	if s.Threads > 0 {
		c.threads = s.Threads
	}
	return c
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
