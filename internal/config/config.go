package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// record store
	StoreBackend   string `toml:"store_backend"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	MongoDatabase  string `toml:"mongo_database"`

	// redis (roster cache, rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	AllowedOrigins         []string `toml:"allowed_origins"`
	WriteRateLimitPerMin   int      `toml:"write_rate_limit_per_min"`
	RosterCacheTTLSeconds  int      `toml:"roster_cache_ttl_seconds"`
	RecordsCacheSizeMB     int      `toml:"records_cache_size_mb"`
	RecordsCacheTTLSeconds int      `toml:"records_cache_ttl_seconds"`
	RosterFetchConcurrency int      `toml:"roster_fetch_concurrency"`
	// Timezone is used for day boundaries and chart date labels.
	Timezone string `toml:"timezone"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config for env,
// with defaults applied to the fields left empty.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendPostgres
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "fittracker"
	}
	if c.WriteRateLimitPerMin == 0 {
		c.WriteRateLimitPerMin = 60
	}
	if c.RosterCacheTTLSeconds == 0 {
		c.RosterCacheTTLSeconds = 300
	}
	if c.RecordsCacheSizeMB == 0 {
		c.RecordsCacheSizeMB = 10
	}
	if c.RecordsCacheTTLSeconds == 0 {
		c.RecordsCacheTTLSeconds = 60
	}
	if c.RosterFetchConcurrency == 0 {
		c.RosterFetchConcurrency = 8
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres, StoreBackendMongo:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	if c.RosterFetchConcurrency < 0 {
		return errors.New("roster fetch concurrency must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone [%s]: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) RosterCacheTTL() time.Duration {
	return time.Duration(c.RosterCacheTTLSeconds) * time.Second
}
