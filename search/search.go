package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"news-terminal/cache"
	"news-terminal/dates"
	"news-terminal/extract"
	"news-terminal/gnews"
)

const defaultWindowDays = 7

// FeedFetcher retrieves headline articles for a query.
type FeedFetcher interface {
	Fetch(ctx context.Context, query, topic string) ([]gnews.Article, error)
}

// CacheStore persists search results between requests.
type CacheStore interface {
	Get(key string) ([]gnews.Article, bool)
	Put(key string, articles []gnews.Article)
}

// LinkResolver rewrites aggregator links to publisher URLs in place.
type LinkResolver interface {
	ResolveAll(ctx context.Context, articles []gnews.Article)
}

// ContentFetcher downloads and extracts a single article page.
type ContentFetcher interface {
	FetchOne(ctx context.Context, url string) (*extract.Article, error)
}

// Request holds the parameters of one search.
type Request struct {
	Query       string
	Topic       string
	From        string
	To          string
	MaxResults  int
	ResolveURLs bool
	UseCache    bool
}

// Config holds search engine configuration.
type Config struct {
	// WindowDays is how far back the search looks when the request
	// carries no from date.
	WindowDays int
}

// Engine runs feed searches end to end.
type Engine struct {
	feed      FeedFetcher
	cache     CacheStore
	resolver  LinkResolver
	content   ContentFetcher
	window    int
	closeOnce sync.Once
}

// New creates an Engine with all dependencies.
func New(feed FeedFetcher, cacheStore CacheStore, resolver LinkResolver, content ContentFetcher, cfg Config) *Engine {
	window := cfg.WindowDays
	if window <= 0 {
		window = defaultWindowDays
	}
	return &Engine{
		feed:     feed,
		cache:    cacheStore,
		resolver: resolver,
		content:  content,
		window:   window,
	}
}

// Search runs one search. Failures along the way degrade to fewer or
// zero results rather than an error; the caller always gets a list.
func (e *Engine) Search(ctx context.Context, req Request) []gnews.Article {
	if req.MaxResults <= 0 {
		return []gnews.Article{}
	}

	now := time.Now()
	from := dates.ParseInput(req.From, now.AddDate(0, 0, -e.window))
	to := dates.ParseInput(req.To, now)
	key := cache.Key(req.Query, req.Topic, from, to)

	// 1. Cache lookup
	if req.UseCache {
		if cached, ok := e.cache.Get(key); ok {
			slog.Info("cache hit", "query", req.Query, "count", len(cached))
			return truncate(cached, req.MaxResults)
		}
	}

	// 2. One feed request
	articles, err := e.feed.Fetch(ctx, req.Query, req.Topic)
	if err != nil {
		slog.Error("feed fetch failed", "query", req.Query, "error", err)
		return []gnews.Article{}
	}
	slog.Info("feed returned articles", "query", req.Query, "count", len(articles))

	// 3. Keep the date window
	articles = filterByDate(articles, from, to)

	// 4. Newest first, then cap
	sortByDate(articles)
	articles = truncate(articles, req.MaxResults)

	// 5. Swap aggregator links for publisher URLs
	if req.ResolveURLs {
		e.resolver.ResolveAll(ctx, articles)
	}

	// 6. Store the final list
	if req.UseCache {
		e.cache.Put(key, articles)
	}
	return articles
}

// ArticleContent fetches one article page directly, bypassing the
// cache and date filtering. A failed fetch degrades to an article that
// carries the error instead of text.
func (e *Engine) ArticleContent(ctx context.Context, url string) (*extract.Article, error) {
	if url == "" {
		return nil, errors.New("article url is empty")
	}

	art, err := e.content.FetchOne(ctx, url)
	if err != nil {
		slog.Warn("article fetch failed", "url", url, "error", err)
		return &extract.Article{URL: url, Source: extract.Host(url), Err: err.Error()}, nil
	}
	return art, nil
}

// Close releases resources held by closable dependencies. Safe to call
// more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		for _, dep := range []any{e.feed, e.resolver, e.content} {
			if c, ok := dep.(interface{ Close() }); ok {
				c.Close()
			}
		}
	})
}

// filterByDate keeps articles published inside the window. An article
// with an unrecognized date is better included than dropped.
func filterByDate(articles []gnews.Article, from, to time.Time) []gnews.Article {
	var kept []gnews.Article
	for _, a := range articles {
		t, ok := dates.ParsePublished(a.PublishDate)
		if !ok || dates.InRange(t, from, to) {
			kept = append(kept, a)
		}
	}
	return kept
}

// sortByDate orders articles newest first. Articles whose dates cannot
// be parsed sort after every dated one, ordered among themselves by
// raw date string descending.
func sortByDate(articles []gnews.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, iok := dates.ParsePublished(articles[i].PublishDate)
		tj, jok := dates.ParsePublished(articles[j].PublishDate)
		switch {
		case iok && jok:
			return ti.After(tj)
		case iok:
			return true
		case jok:
			return false
		default:
			return articles[i].PublishDate > articles[j].PublishDate
		}
	})
}

func truncate(articles []gnews.Article, max int) []gnews.Article {
	if articles == nil {
		return []gnews.Article{}
	}
	if len(articles) > max {
		return articles[:max]
	}
	return articles
}
