package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultPort              = 8080
	defaultPageSize          = 1
	defaultMaxPages          = 10
	defaultRevalidateSeconds = 30 * 60
	defaultCacheSizeMB       = 50
	defaultRedisPort         = "6379"
	defaultLoadMorePerMin    = 60
	defaultOutDir            = "./out"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// content repository
	PrismicEndpoint   string `toml:"prismic_endpoint"`
	PageSize          int    `toml:"page_size"`
	MaxPages          int    `toml:"max_pages"`
	RevalidateSeconds int    `toml:"revalidate_seconds"`
	CacheSizeMB       int    `toml:"cache_size_mb"`
	// redis
	RedisEnabled bool   `toml:"redis_enabled"`
	RedisHost    string `toml:"redis_host"`
	RedisPort    string `toml:"redis_port"`
	// load more api
	LoadMoreRateLimitPerMin int `toml:"load_more_rate_limit_per_min"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// static build
	OutDir string `toml:"out_dir"`
}

// Revalidate is how long content API responses are served from cache.
func (c *Config) Revalidate() time.Duration {
	return time.Duration(c.RevalidateSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.RevalidateSeconds <= 0 {
		c.RevalidateSeconds = defaultRevalidateSeconds
	}
	if c.CacheSizeMB <= 0 {
		c.CacheSizeMB = defaultCacheSizeMB
	}
	if c.RedisPort == "" {
		c.RedisPort = defaultRedisPort
	}
	if c.LoadMoreRateLimitPerMin <= 0 {
		c.LoadMoreRateLimitPerMin = defaultLoadMorePerMin
	}
	if c.OutDir == "" {
		c.OutDir = defaultOutDir
	}
}

func (c *Config) validate() error {
	if c.PrismicEndpoint == "" {
		return fmt.Errorf("prismic_endpoint not set")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.RedisEnabled && c.RedisHost == "" {
		return fmt.Errorf("redis enabled, but redis_host not set")
	}
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, "development"
	case "prod", "production":
		cfg, env = t.Production, "production"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML config at path and returns the section for env,
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config [%s]: %w", cfg.Environment, err)
	}

	return cfg, nil
}
