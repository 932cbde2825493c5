package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Addr              string   `yaml:"addr"`
	MaxResults        int      `yaml:"max_results"`
	WindowDays        int      `yaml:"default_window_days"`
	CacheDir          string   `yaml:"cache_dir"`
	CacheTTLSecs      int      `yaml:"cache_ttl_secs"`
	ScrapeConcurrency int      `yaml:"scrape_concurrency"`
	RetryCount        int      `yaml:"retry_count"`
	RetryDelaySecs    int      `yaml:"retry_delay_secs"`
	FetchTimeoutSecs  int      `yaml:"fetch_timeout_secs"`
	LLMHost           string   `yaml:"llm_host"`
	LLMPort           int      `yaml:"llm_port"`
	LLMModel          string   `yaml:"llm_model"`
	DBPath            string   `yaml:"db_path"`
	SweepEveryMins    int      `yaml:"sweep_every_mins"`
	PrefetchTime      string   `yaml:"prefetch_time"`
	PrefetchTopics    []string `yaml:"prefetch_topics"`
	Timezone          string   `yaml:"timezone"`
	LogLevel          string   `yaml:"log_level"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		Addr:              ":8000",
		MaxResults:        20,
		WindowDays:        7,
		CacheDir:          "cache/rss_feeds",
		CacheTTLSecs:      3600,
		ScrapeConcurrency: 10,
		RetryCount:        2,
		RetryDelaySecs:    2,
		FetchTimeoutSecs:  30,
		LLMHost:           "localhost",
		LLMPort:           8080,
		LLMModel:          "deepseek-v1",
		DBPath:            "./news.db",
		SweepEveryMins:    60,
		Timezone:          "UTC",
		LogLevel:          "info",
	}
}

// Load reads a YAML config file and returns a validated Config. A missing
// file is not an error: every field has a working default, so the server
// boots without one. Environment variables NEWS_CONFIG and NEWS_DB can
// override the file path and db path.
func Load(path string) (Config, error) {
	if envPath := os.Getenv("NEWS_CONFIG"); envPath != "" {
		path = envPath
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Info("config file not found, using defaults", "path", path)
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if envDB := os.Getenv("NEWS_DB"); envDB != "" {
		cfg.DBPath = envDB
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that required fields are present and values are valid.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("default_window_days must be positive, got %d", c.WindowDays)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required")
	}
	if c.CacheTTLSecs <= 0 {
		return fmt.Errorf("cache_ttl_secs must be positive, got %d", c.CacheTTLSecs)
	}
	if c.ScrapeConcurrency <= 0 {
		return fmt.Errorf("scrape_concurrency must be positive, got %d", c.ScrapeConcurrency)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry_count cannot be negative, got %d", c.RetryCount)
	}
	if c.RetryDelaySecs < 0 {
		return fmt.Errorf("retry_delay_secs cannot be negative, got %d", c.RetryDelaySecs)
	}
	if c.FetchTimeoutSecs <= 0 {
		return fmt.Errorf("fetch_timeout_secs must be positive, got %d", c.FetchTimeoutSecs)
	}
	if c.LLMPort <= 0 || c.LLMPort > 65535 {
		return fmt.Errorf("llm_port must be a valid port, got %d", c.LLMPort)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.SweepEveryMins < 0 {
		return fmt.Errorf("sweep_every_mins cannot be negative, got %d", c.SweepEveryMins)
	}

	if c.PrefetchTime != "" {
		if err := ValidateTime(c.PrefetchTime); err != nil {
			return err
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", c.LogLevel)
	}

	return nil
}

// ValidateTime checks that a time string is in valid HH:MM 24-hour format.
func ValidateTime(t string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	hour := (int(t[0]-'0') * 10) + int(t[1]-'0')
	minute := (int(t[3]-'0') * 10) + int(t[4]-'0')

	if t[0] < '0' || t[0] > '9' || t[1] < '0' || t[1] > '9' ||
		t[3] < '0' || t[3] > '9' || t[4] < '0' || t[4] > '9' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}

	return nil
}
