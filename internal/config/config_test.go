package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults() should validate: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Mode = "stream" },
			wantSub: "unknown mode",
		},
		{
			name:    "bad ledger",
			mutate:  func(c *Config) { c.Pipeline.Ledger = "sqlite" },
			wantSub: "unknown ledger",
		},
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.Categorizer.Provider = "openai" },
			wantSub: "openai_api_key",
		},
		{
			name:    "post mode without slack",
			mutate:  func(c *Config) { c.Mode = "post" },
			wantSub: "bot_token is required",
		},
		{
			name:    "replay mode without key",
			mutate:  func(c *Config) { c.Mode = "replay" },
			wantSub: "replay_key is required",
		},
		{
			name: "vocabulary missing entities",
			mutate: func(c *Config) {
				c.Extractor.Vocabulary = []VocabularyConfig{{Domain: "Champions League"}}
			},
			wantSub: "has no entities",
		},
		{
			name:    "page size out of range",
			mutate:  func(c *Config) { c.Polymarket.PageSize = 0 },
			wantSub: "page_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("want validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "daily"

[polymarket]
page_size = 50

[pipeline]
interval = "6h"
ledger = "redis"

[[extractor.vocabulary]]
domain = "Champions League"
entities = ["Arsenal", "Inter Milan"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PIPELINE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("PIPELINE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "daily" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Polymarket.PageSize != 50 {
		t.Errorf("PageSize = %d", cfg.Polymarket.PageSize)
	}
	if cfg.Pipeline.Interval.Duration != 6*time.Hour {
		t.Errorf("Interval = %v", cfg.Pipeline.Interval.Duration)
	}
	if cfg.Pipeline.Ledger != "redis" {
		t.Errorf("Ledger = %q", cfg.Pipeline.Ledger)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q, env override not applied", cfg.Redis.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if len(cfg.Extractor.Vocabulary) != 1 || cfg.Extractor.Vocabulary[0].Domain != "Champions League" {
		t.Errorf("Vocabulary = %+v", cfg.Extractor.Vocabulary)
	}

	// Untouched sections keep their defaults.
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want default", cfg.Database.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("merged config should validate: %v", err)
	}
}
