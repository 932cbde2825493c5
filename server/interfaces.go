package server

import (
	"context"
	"time"

	"news-terminal/extract"
	"news-terminal/gnews"
	"news-terminal/search"
	"news-terminal/storage"
	"news-terminal/summarizer"
	"news-terminal/timeline"
)

// SearchEngine runs feed searches and single-article retrievals.
type SearchEngine interface {
	Search(ctx context.Context, req search.Request) []gnews.Article
	ArticleContent(ctx context.Context, url string) (*extract.Article, error)
}

// Summarizer analyzes extracted article content.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) *summarizer.Summary
}

// HistoryStore persists searches and serves history lookups.
type HistoryStore interface {
	RecordSearch(query, topic string, from, to time.Time, articles []gnews.Article) (string, error)
	RecentSearches(limit int) ([]storage.SearchRecord, error)
	ArticleByURL(url string) (*storage.ArticleRecord, error)
	CountByDay(from, to time.Time) (map[string]int, error)
}

// TimelineBuilder generates daily chart series.
type TimelineBuilder interface {
	Series(from, to time.Time, countsByDay map[string]int) []timeline.Point
}
