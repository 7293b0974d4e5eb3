// Package config defines the top-level configuration for the market pipeline
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PIPELINE_* environment variables.
type Config struct {
	Polymarket  PolymarketConfig  `toml:"polymarket"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	S3          S3Config          `toml:"s3"`
	Slack       SlackConfig       `toml:"slack"`
	Categorizer CategorizerConfig `toml:"categorizer"`
	Notify      NotifyConfig      `toml:"notify"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Extractor   ExtractorConfig   `toml:"extractor"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// PolymarketConfig holds the Gamma API endpoint and paging parameters.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	PageSize  int    `toml:"page_size"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. Redis backs the distributed
// run lock and, optionally, the consumed-id ledger.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for raw batch
// archives.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// SlackConfig holds Slack Web API credentials for the approval channel.
type SlackConfig struct {
	BotToken  string `toml:"bot_token"`
	ChannelID string `toml:"channel_id"`
}

// CategorizerConfig selects and parameterizes the market categorizer.
type CategorizerConfig struct {
	// Provider is "keyword" or "openai".
	Provider     string `toml:"provider"`
	OpenAIAPIKey string `toml:"openai_api_key"`
	OpenAIModel  string `toml:"openai_model"`
	// Concurrency bounds parallel categorization calls per batch.
	Concurrency int `toml:"concurrency"`
}

// NotifyConfig holds operational notification channel credentials.
type NotifyConfig struct {
	TelegramToken  string   `toml:"telegram_token"`
	TelegramChatID string   `toml:"telegram_chat_id"`
	Events         []string `toml:"events"`
}

// PipelineConfig holds run scheduling and ledger parameters.
type PipelineConfig struct {
	// Interval between runs in daily mode.
	Interval duration `toml:"interval"`
	// Ledger backend: "postgres", "redis", or "memory".
	Ledger         string `toml:"ledger"`
	ArchiveEnabled bool   `toml:"archive_enabled"`
	ArchivePrefix  string `toml:"archive_prefix"`
	// LockTTL bounds how long a crashed run can hold the distributed lock.
	LockTTL duration `toml:"lock_ttl"`
	// ReplayKey is the archived-batch object key to process in replay mode.
	ReplayKey string `toml:"replay_key"`
}

// ExtractorConfig supplies the entity vocabulary the extraction rules fall
// back to when no pattern matches a question.
type ExtractorConfig struct {
	Vocabulary []VocabularyConfig `toml:"vocabulary"`
}

// VocabularyConfig is one domain's known entity list.
type VocabularyConfig struct {
	Domain   string   `toml:"domain"`
	Entities []string `toml:"entities"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			PageSize:  100,
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "pipeline-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Categorizer: CategorizerConfig{
			Provider:    "keyword",
			OpenAIModel: "gpt-4o-mini",
			Concurrency: 4,
		},
		Notify: NotifyConfig{
			Events: []string{"run_complete", "run_failed", "manual_review"},
		},
		Pipeline: PipelineConfig{
			Interval:       duration{24 * time.Hour},
			Ledger:         "postgres",
			ArchiveEnabled: true,
			ArchivePrefix:  "raw-batches",
			LockTTL:        duration{15 * time.Minute},
		},
		Mode:     "once",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"once":   true,
	"daily":  true,
	"post":   true,
	"replay": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLedgers enumerates the accepted values for Pipeline.Ledger.
var validLedgers = map[string]bool{
	"postgres": true,
	"redis":    true,
	"memory":   true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: once, daily, post, replay)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.PageSize < 1 || c.Polymarket.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("polymarket: page_size must be 1-500, got %d", c.Polymarket.PageSize))
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.Pipeline.ArchiveEnabled || c.Mode == "replay" {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archiving is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archiving is enabled")
		}
	}

	if c.Slack.BotToken != "" && c.Slack.ChannelID == "" {
		errs = append(errs, "slack: channel_id is required when bot_token is set")
	}
	if c.Mode == "post" && c.Slack.BotToken == "" {
		errs = append(errs, "slack: bot_token is required for post mode")
	}
	if c.Mode == "replay" && c.Pipeline.ReplayKey == "" {
		errs = append(errs, "pipeline: replay_key is required for replay mode")
	}

	switch strings.ToLower(c.Categorizer.Provider) {
	case "keyword":
	case "openai":
		if c.Categorizer.OpenAIAPIKey == "" {
			errs = append(errs, "categorizer: openai_api_key is required for the openai provider")
		}
		if c.Categorizer.OpenAIModel == "" {
			errs = append(errs, "categorizer: openai_model must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("categorizer: unknown provider %q (valid: keyword, openai)", c.Categorizer.Provider))
	}
	if c.Categorizer.Concurrency < 1 {
		errs = append(errs, "categorizer: concurrency must be >= 1")
	}

	if !validLedgers[strings.ToLower(c.Pipeline.Ledger)] {
		errs = append(errs, fmt.Sprintf("pipeline: unknown ledger %q (valid: postgres, redis, memory)", c.Pipeline.Ledger))
	}
	if c.Pipeline.Interval.Duration < time.Minute {
		errs = append(errs, "pipeline: interval must be at least 1m")
	}
	if c.Pipeline.LockTTL.Duration < time.Second {
		errs = append(errs, "pipeline: lock_ttl must be at least 1s")
	}

	for i, v := range c.Extractor.Vocabulary {
		if v.Domain == "" {
			errs = append(errs, fmt.Sprintf("extractor: vocabulary[%d] has an empty domain", i))
		}
		if len(v.Entities) == 0 {
			errs = append(errs, fmt.Sprintf("extractor: vocabulary[%d] (%s) has no entities", i, v.Domain))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
