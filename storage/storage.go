package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"news-terminal/dates"
	"news-terminal/gnews"
)

// SearchRecord is one recorded search invocation.
type SearchRecord struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	Topic       string `json:"topic,omitempty"`
	From        string `json:"from_date"`
	To          string `json:"to_date"`
	ResultCount int    `json:"result_count"`
	CreatedAt   int64  `json:"created_at"` // Unix timestamp
}

// ArticleRecord is a stored feed article.
type ArticleRecord struct {
	URL         string
	Title       string
	Source      string
	PublishDate string
	PublishDay  string // YYYY-MM-DD, empty when the date never parsed
	Snippet     string
	FetchedAt   int64 // Unix timestamp
}

// Store provides SQLite-backed persistence for searches and the
// articles they returned.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS searches (
	id TEXT PRIMARY KEY,
	query TEXT,
	topic TEXT,
	from_date TEXT,
	to_date TEXT,
	result_count INTEGER,
	created_at INTEGER
);

CREATE TABLE IF NOT EXISTS articles (
	url TEXT PRIMARY KEY,
	title TEXT,
	source TEXT,
	publish_date TEXT,
	publish_day TEXT,
	snippet TEXT,
	fetched_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_articles_publish_day ON articles (publish_day);
`

// New opens the SQLite database at dbPath, creates tables if they don't exist, and returns a Store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSearch saves one search invocation and upserts the articles it
// returned, keyed by URL. It returns the new search's ID.
func (s *Store) RecordSearch(query, topic string, from, to time.Time, articles []gnews.Article) (string, error) {
	id := uuid.NewString()
	now := time.Now().Unix()

	_, err := s.db.Exec(
		`INSERT INTO searches (id, query, topic, from_date, to_date, result_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, query, topic, dates.DayKey(from), dates.DayKey(to), len(articles), now,
	)
	if err != nil {
		return "", fmt.Errorf("storage: record search: %w", err)
	}

	for _, a := range articles {
		day := ""
		if t, ok := dates.ParsePublished(a.PublishDate); ok {
			day = dates.DayKey(t)
		}
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO articles (url, title, source, publish_date, publish_day, snippet, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.Link, a.Title, a.Source, a.PublishDate, day, a.Snippet, now,
		)
		if err != nil {
			return "", fmt.Errorf("storage: save article %q: %w", a.Link, err)
		}
	}
	return id, nil
}

// RecentSearches returns the most recent searches, newest first.
func (s *Store) RecentSearches(limit int) ([]SearchRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, query, topic, from_date, to_date, result_count, created_at
		 FROM searches ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: get recent searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		if err := rows.Scan(&r.ID, &r.Query, &r.Topic, &r.From, &r.To, &r.ResultCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan search record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate search records: %w", err)
	}
	return records, nil
}

// ArticleByURL looks up a stored article by its URL.
// Returns nil if no article is found.
func (s *Store) ArticleByURL(url string) (*ArticleRecord, error) {
	var a ArticleRecord
	err := s.db.QueryRow(
		`SELECT url, title, source, publish_date, publish_day, snippet, fetched_at
		 FROM articles WHERE url = ?`, url,
	).Scan(&a.URL, &a.Title, &a.Source, &a.PublishDate, &a.PublishDay, &a.Snippet, &a.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get article %q: %w", url, err)
	}
	return &a, nil
}

// CountByDay returns how many stored articles were published on each
// day inside the window. Articles without a parsed date are skipped.
func (s *Store) CountByDay(from, to time.Time) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT publish_day, COUNT(*) FROM articles
		 WHERE publish_day != '' AND publish_day >= ? AND publish_day <= ?
		 GROUP BY publish_day`,
		dates.DayKey(from), dates.DayKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: count articles by day: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("storage: scan day count: %w", err)
		}
		counts[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate day counts: %w", err)
	}
	return counts, nil
}
