package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-terminal/cache"
	"news-terminal/config"
	"news-terminal/gnews"
	"news-terminal/resolver"
	"news-terminal/scheduler"
	"news-terminal/scraper"
	"news-terminal/search"
	"news-terminal/server"
	"news-terminal/storage"
	"news-terminal/summarizer"
	"news-terminal/timeline"
)

func main() {
	// Structured JSON logging to stdout
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfgPath := "./config.yaml"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded", "addr", cfg.Addr, "cache_dir", cfg.CacheDir, "db_path", cfg.DBPath, "timezone", cfg.Timezone)

	// Set log level
	switch cfg.LogLevel {
	case "debug":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	case "warn":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	case "error":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	}

	// Initialize storage
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "db_path", cfg.DBPath)

	// Initialize the feed cache
	feedCache, err := cache.New(cfg.CacheDir, time.Duration(cfg.CacheTTLSecs)*time.Second)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}

	// Initialize components
	httpClient := &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSecs) * time.Second}
	feedClient := gnews.NewClient(httpClient)
	linkResolver := resolver.New(cfg.ScrapeConcurrency)
	articleScraper := scraper.New(scraper.Config{
		Concurrency: cfg.ScrapeConcurrency,
		RetryCount:  cfg.RetryCount,
		RetryDelay:  time.Duration(cfg.RetryDelaySecs) * time.Second,
		Timeout:     time.Duration(cfg.FetchTimeoutSecs) * time.Second,
	})
	engine := search.New(feedClient, feedCache, linkResolver, articleScraper, search.Config{
		WindowDays: cfg.WindowDays,
	})
	articleSummarizer := summarizer.NewSummarizer(cfg.LLMHost, cfg.LLMPort, cfg.LLMModel)
	chart := timeline.New(time.Now().UnixNano())

	// Initialize scheduler
	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if cfg.SweepEveryMins > 0 {
		if err := sched.ScheduleSweep(time.Duration(cfg.SweepEveryMins)*time.Minute, feedCache.Sweep); err != nil {
			slog.Error("failed to schedule cache sweep", "error", err)
			os.Exit(1)
		}
	}
	if cfg.PrefetchTime != "" {
		prefetch := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			for _, topic := range cfg.PrefetchTopics {
				n := len(engine.Search(ctx, search.Request{
					Topic:       topic,
					MaxResults:  cfg.MaxResults,
					ResolveURLs: true,
					UseCache:    true,
				}))
				slog.Info("prefetched topic", "topic", topic, "articles", n)
			}
		}
		if err := sched.SchedulePrefetch(cfg.PrefetchTime, prefetch); err != nil {
			slog.Error("failed to schedule prefetch", "error", err)
			os.Exit(1)
		}
	}
	sched.Start()
	slog.Info("scheduler started", "jobs", sched.Jobs(), "timezone", cfg.Timezone)

	// Create the API server
	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		MaxResults: cfg.MaxResults,
		WindowDays: cfg.WindowDays,
	}, server.Deps{
		Engine:     engine,
		Summarizer: articleSummarizer,
		History:    store,
		Timeline:   chart,
	})

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
	}

	sched.Stop()
	engine.Close()
	slog.Info("shutdown complete")
}
