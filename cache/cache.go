package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"news-terminal/dates"
	"news-terminal/gnews"
)

// Store keeps search results as JSON files in one directory. A file's
// modification time is the only expiry signal; entries past the TTL are
// treated as absent and eventually overwritten or swept.
type Store struct {
	dir string
	ttl time.Duration
}

// New creates the cache directory if needed and returns a Store.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, ttl: ttl}, nil
}

// Key returns the deterministic cache key for one search: an md5 digest
// of the query, topic, and date window in canonical form.
func Key(query, topic string, from, to time.Time) string {
	raw := fmt.Sprintf("%s_%s_%s_%s", query, topic, dates.DayKey(from), dates.DayKey(to))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached articles for key. Any failure, including a
// missing file, an expired entry, or undecodable content, is a miss.
func (s *Store) Get(key string) ([]gnews.Article, bool) {
	path := s.path(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > s.ttl {
		slog.Debug("cache entry expired", "key", key)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}

	var articles []gnews.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		slog.Warn("cache entry undecodable", "key", key, "error", err)
		return nil, false
	}
	return articles, true
}

// Put overwrites the entry for key. Write failures are logged and
// otherwise ignored; the caller already holds the result in memory.
func (s *Store) Put(key string, articles []gnews.Article) {
	data, err := json.Marshal(articles)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Sweep deletes expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("cache sweep failed", "dir", s.dir, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= s.ttl {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			slog.Warn("cache sweep remove failed", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
