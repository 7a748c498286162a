// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	DBURL          string `mapstructure:"DB_URL"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	GithubToken      string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIBaseURL string        `mapstructure:"GITHUB_API_BASE_URL"`
	GithubGraphQLURL string        `mapstructure:"GITHUB_GRAPHQL_URL"`
	GithubPageSize   int           `mapstructure:"GITHUB_PAGE_SIZE"`
	RESTTimeout      time.Duration `mapstructure:"GITHUB_REST_TIMEOUT"`
	SearchTimeout    time.Duration `mapstructure:"GITHUB_SEARCH_TIMEOUT"`
	GraphQLTimeout   time.Duration `mapstructure:"GITHUB_GRAPHQL_TIMEOUT"`

	StandardLookbackDays int `mapstructure:"STANDARD_LOOKBACK_DAYS"`
	DeepLookbackDays     int `mapstructure:"DEEP_LOOKBACK_DAYS"`
	StatsQueryDays       int `mapstructure:"STATS_QUERY_DAYS"`

	SyncInterval    time.Duration `mapstructure:"SYNC_INTERVAL"`
	SyncConcurrency int           `mapstructure:"SYNC_CONCURRENCY"`
	// SyncLockTTL bounds how long a crashed holder blocks an account. Live
	// holders extend it while their sync runs.
	SyncLockTTL     time.Duration `mapstructure:"SYNC_LOCK_TTL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_URL", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_BASE_URL", "https://api.github.com/")
	v.SetDefault("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql")
	v.SetDefault("GITHUB_PAGE_SIZE", 100)
	v.SetDefault("GITHUB_REST_TIMEOUT", "10s")
	v.SetDefault("GITHUB_SEARCH_TIMEOUT", "15s")
	v.SetDefault("GITHUB_GRAPHQL_TIMEOUT", "20s")
	v.SetDefault("STANDARD_LOOKBACK_DAYS", 90)
	v.SetDefault("DEEP_LOOKBACK_DAYS", 365)
	v.SetDefault("STATS_QUERY_DAYS", 30)
	v.SetDefault("SYNC_INTERVAL", "1h")
	v.SetDefault("SYNC_CONCURRENCY", 5)
	v.SetDefault("SYNC_LOCK_TTL", "30m")
	v.SetDefault("REDIS_URL", "")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.GithubPageSize <= 0 || c.GithubPageSize > 100 {
		return errors.New("GITHUB_PAGE_SIZE must be between 1 and 100")
	}
	if c.StandardLookbackDays <= 0 || c.DeepLookbackDays <= 0 || c.StatsQueryDays <= 0 {
		return errors.New("lookback day counts must be positive")
	}
	if c.RESTTimeout <= 0 || c.SearchTimeout <= 0 || c.GraphQLTimeout <= 0 {
		return errors.New("GitHub request timeouts must be positive")
	}
	if c.SyncInterval < 0 {
		return errors.New("SYNC_INTERVAL must not be negative")
	}
	if c.SyncConcurrency <= 0 {
		return errors.New("SYNC_CONCURRENCY must be at least 1")
	}
	return nil
}
