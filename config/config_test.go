package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Addr != ":8000" {
		t.Errorf("expected default addr :8000, got %s", d.Addr)
	}
	if d.MaxResults != 20 {
		t.Errorf("expected default max results 20, got %d", d.MaxResults)
	}
	if d.WindowDays != 7 {
		t.Errorf("expected default window days 7, got %d", d.WindowDays)
	}
	if d.CacheDir != "cache/rss_feeds" {
		t.Errorf("expected default cache dir cache/rss_feeds, got %s", d.CacheDir)
	}
	if d.CacheTTLSecs != 3600 {
		t.Errorf("expected default cache ttl 3600, got %d", d.CacheTTLSecs)
	}
	if d.ScrapeConcurrency != 10 {
		t.Errorf("expected default scrape concurrency 10, got %d", d.ScrapeConcurrency)
	}
	if d.RetryCount != 2 {
		t.Errorf("expected default retry count 2, got %d", d.RetryCount)
	}
	if d.FetchTimeoutSecs != 30 {
		t.Errorf("expected default fetch timeout 30, got %d", d.FetchTimeoutSecs)
	}
	if d.LLMHost != "localhost" || d.LLMPort != 8080 {
		t.Errorf("expected default llm endpoint localhost:8080, got %s:%d", d.LLMHost, d.LLMPort)
	}
	if d.LLMModel != "deepseek-v1" {
		t.Errorf("expected default llm model deepseek-v1, got %s", d.LLMModel)
	}
	if d.DBPath != "./news.db" {
		t.Errorf("expected default db path ./news.db, got %s", d.DBPath)
	}
	if d.SweepEveryMins != 60 {
		t.Errorf("expected default sweep interval 60, got %d", d.SweepEveryMins)
	}
	if d.PrefetchTime != "" {
		t.Errorf("expected no default prefetch time, got %s", d.PrefetchTime)
	}
	if d.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", d.Timezone)
	}
	if d.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", d.LogLevel)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
max_results: 50
cache_dir: "/tmp/news-cache"
prefetch_time: "06:30"
prefetch_topics: ["business", "technology"]
timezone: "Europe/Rome"
log_level: "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %s", cfg.Addr)
	}
	if cfg.MaxResults != 50 {
		t.Errorf("expected max_results 50, got %d", cfg.MaxResults)
	}
	if cfg.CacheDir != "/tmp/news-cache" {
		t.Errorf("expected cache_dir /tmp/news-cache, got %s", cfg.CacheDir)
	}
	if cfg.PrefetchTime != "06:30" {
		t.Errorf("expected prefetch_time 06:30, got %s", cfg.PrefetchTime)
	}
	if len(cfg.PrefetchTopics) != 2 || cfg.PrefetchTopics[0] != "business" {
		t.Errorf("expected prefetch_topics [business technology], got %v", cfg.PrefetchTopics)
	}
	if cfg.Timezone != "Europe/Rome" {
		t.Errorf("expected timezone Europe/Rome, got %s", cfg.Timezone)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %s", cfg.LogLevel)
	}
	// Defaults should be preserved for unset fields
	if cfg.ScrapeConcurrency != 10 {
		t.Errorf("expected default scrape_concurrency, got %d", cfg.ScrapeConcurrency)
	}
	if cfg.DBPath != "./news.db" {
		t.Errorf("expected default db_path, got %s", cfg.DBPath)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Defaults()
	if cfg.Addr != want.Addr || cfg.MaxResults != want.MaxResults {
		t.Errorf("expected defaults for missing file, got %+v", cfg)
	}
	if cfg.DBPath != want.DBPath || cfg.Timezone != want.Timezone {
		t.Errorf("expected defaults for missing file, got %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000
  invalid: yaml: [
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error when config path is a directory")
	}
}

func TestLoad_EnvConfigPath(t *testing.T) {
	path := writeConfig(t, `
addr: ":7777"
`)
	t.Setenv("NEWS_CONFIG", path)
	cfg, err := Load("wrong-path.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Errorf("expected :7777, got %s", cfg.Addr)
	}
}

func TestLoad_EnvDBPath(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
`)
	t.Setenv("NEWS_DB", "/custom/news.sqlite")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "/custom/news.sqlite" {
		t.Errorf("expected /custom/news.sqlite, got %s", cfg.DBPath)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }, "max_results"},
		{"negative window", func(c *Config) { c.WindowDays = -1 }, "default_window_days"},
		{"empty cache dir", func(c *Config) { c.CacheDir = "" }, "cache_dir"},
		{"zero ttl", func(c *Config) { c.CacheTTLSecs = 0 }, "cache_ttl_secs"},
		{"zero concurrency", func(c *Config) { c.ScrapeConcurrency = 0 }, "scrape_concurrency"},
		{"negative retries", func(c *Config) { c.RetryCount = -1 }, "retry_count"},
		{"negative retry delay", func(c *Config) { c.RetryDelaySecs = -1 }, "retry_delay_secs"},
		{"zero timeout", func(c *Config) { c.FetchTimeoutSecs = 0 }, "fetch_timeout_secs"},
		{"bad llm port", func(c *Config) { c.LLMPort = 70000 }, "llm_port"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"negative sweep", func(c *Config) { c.SweepEveryMins = -5 }, "sweep_every_mins"},
		{"bad prefetch time", func(c *Config) { c.PrefetchTime = "25:00" }, "invalid time"},
		{"bad timezone", func(c *Config) { c.Timezone = "Invalid/Zone" }, "timezone"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_ZeroSweepAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.SweepEveryMins = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("sweep_every_mins 0 should disable sweeping, not fail: %v", err)
	}
}

func TestValidate_EmptyPrefetchTimeAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.PrefetchTime = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty prefetch_time should be valid: %v", err)
	}
}

func TestValidateTime(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"00:00", true},
		{"09:00", true},
		{"23:59", true},
		{"12:30", true},
		{"24:00", false},
		{"23:60", false},
		{"9:00", false},
		{"abc", false},
		{"12:0a", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateTime(tt.input)
		if tt.valid && err != nil {
			t.Errorf("ValidateTime(%q) returned unexpected error: %v", tt.input, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateTime(%q) expected error, got nil", tt.input)
		}
	}
}
