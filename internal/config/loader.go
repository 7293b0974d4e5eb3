package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PIPELINE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PIPELINE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "PIPELINE_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.PageSize, "PIPELINE_POLYMARKET_PAGE_SIZE")

	// ── Database ──
	setStr(&cfg.Database.DSN, "PIPELINE_DATABASE_DSN")
	setStr(&cfg.Database.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Database.Host, "PIPELINE_DATABASE_HOST")
	setInt(&cfg.Database.Port, "PIPELINE_DATABASE_PORT")
	setStr(&cfg.Database.Database, "PIPELINE_DATABASE_NAME")
	setStr(&cfg.Database.User, "PIPELINE_DATABASE_USER")
	setStr(&cfg.Database.Password, "PIPELINE_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "PIPELINE_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "PIPELINE_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "PIPELINE_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "PIPELINE_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PIPELINE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PIPELINE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PIPELINE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PIPELINE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PIPELINE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PIPELINE_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "PIPELINE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PIPELINE_S3_REGION")
	setStr(&cfg.S3.Bucket, "PIPELINE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PIPELINE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PIPELINE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PIPELINE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PIPELINE_S3_FORCE_PATH_STYLE")

	// ── Slack ──
	setStr(&cfg.Slack.BotToken, "PIPELINE_SLACK_BOT_TOKEN")
	setStr(&cfg.Slack.ChannelID, "PIPELINE_SLACK_CHANNEL_ID")

	// ── Categorizer ──
	setStr(&cfg.Categorizer.Provider, "PIPELINE_CATEGORIZER_PROVIDER")
	setStr(&cfg.Categorizer.OpenAIAPIKey, "PIPELINE_CATEGORIZER_OPENAI_API_KEY")
	setStr(&cfg.Categorizer.OpenAIAPIKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.Categorizer.OpenAIModel, "PIPELINE_CATEGORIZER_OPENAI_MODEL")
	setInt(&cfg.Categorizer.Concurrency, "PIPELINE_CATEGORIZER_CONCURRENCY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PIPELINE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PIPELINE_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "PIPELINE_NOTIFY_EVENTS")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.Interval, "PIPELINE_INTERVAL")
	setStr(&cfg.Pipeline.Ledger, "PIPELINE_LEDGER")
	setBool(&cfg.Pipeline.ArchiveEnabled, "PIPELINE_ARCHIVE_ENABLED")
	setStr(&cfg.Pipeline.ArchivePrefix, "PIPELINE_ARCHIVE_PREFIX")
	setDuration(&cfg.Pipeline.LockTTL, "PIPELINE_LOCK_TTL")
	setStr(&cfg.Pipeline.ReplayKey, "PIPELINE_REPLAY_KEY")

	// ── Top-level ──
	setStr(&cfg.Mode, "PIPELINE_MODE")
	setStr(&cfg.LogLevel, "PIPELINE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
