package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"news-terminal/extract"
)

const (
	defaultConcurrency = 10
	defaultRetryCount  = 2
	defaultRetryDelay  = 2 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultJitterMin   = 200 * time.Millisecond
	defaultJitterMax   = 1500 * time.Millisecond

	// Extracted text shorter than this usually means a paywall or
	// consent page was served instead of the article.
	shortTextLength = 200

	extractWorkers = 4
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/112.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
}

// Config controls fetch concurrency and retry behavior. Zero values
// select the defaults, including RetryCount: a scraper that should
// never retry is not a supported configuration.
type Config struct {
	Concurrency int
	RetryCount  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	JitterMin   time.Duration
	JitterMax   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.RetryCount <= 0 {
		c.RetryCount = defaultRetryCount
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.JitterMin <= 0 {
		c.JitterMin = defaultJitterMin
	}
	if c.JitterMax <= 0 {
		c.JitterMax = defaultJitterMax
	}
	if c.JitterMax < c.JitterMin {
		c.JitterMax = c.JitterMin
	}
	return c
}

// Scraper downloads article pages concurrently and hands the HTML to a
// fixed pool of extraction workers, keeping the CPU-heavy readability
// pass off the network goroutines.
type Scraper struct {
	client    *http.Client
	cfg       Config
	jobs      chan extractJob
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type extractJob struct {
	pageURL string
	html    string
	result  chan *extract.Article
}

// New creates a Scraper with its own HTTP client.
func New(cfg Config) *Scraper {
	cfg = cfg.withDefaults()
	return newScraper(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewWithClient creates a Scraper with a custom HTTP client (for testing).
func NewWithClient(cfg Config, client *http.Client) *Scraper {
	return newScraper(cfg.withDefaults(), client)
}

func newScraper(cfg Config, client *http.Client) *Scraper {
	s := &Scraper{
		client: client,
		cfg:    cfg,
		jobs:   make(chan extractJob),
	}
	for range extractWorkers {
		s.wg.Add(1)
		go s.extractLoop()
	}
	return s
}

// FetchAll fetches every URL concurrently, at most Concurrency at a
// time, and returns the extracted articles in input order. URLs that
// fail every attempt are dropped from the result.
func (s *Scraper) FetchAll(ctx context.Context, urls []string) []*extract.Article {
	sem := make(chan struct{}, s.cfg.Concurrency)
	results := make([]*extract.Article, len(urls))
	var wg sync.WaitGroup

launch:
	for i, pageURL := range urls {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			slog.Debug("fetch cancelled", "remaining", len(urls)-i)
			break launch
		}

		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.fetchWithRetry(ctx, pageURL)
		}(i, pageURL)
	}
	wg.Wait()

	collected := make([]*extract.Article, 0, len(urls))
	for _, art := range results {
		if art != nil {
			collected = append(collected, art)
		}
	}
	return collected
}

// FetchOne fetches a single URL with no retries.
func (s *Scraper) FetchOne(ctx context.Context, pageURL string) (*extract.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", pageURL, err)
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}
	return s.extract(pageURL, string(body)), nil
}

// Close stops the extraction workers. FetchAll and FetchOne must not
// be called after Close; calling Close more than once is fine.
func (s *Scraper) Close() {
	s.closeOnce.Do(func() {
		close(s.jobs)
		s.wg.Wait()
	})
}

func (s *Scraper) fetchWithRetry(ctx context.Context, pageURL string) *extract.Article {
	attempts := s.cfg.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := s.cfg.RetryDelay * time.Duration(attempt)
			slog.Debug("retrying fetch", "url", pageURL, "attempt", attempt+1, "delay", delay)
			if !sleepCtx(ctx, delay) {
				return nil
			}
		}
		if !sleepCtx(ctx, s.jitter()) {
			return nil
		}

		final := attempt == attempts-1
		art, retryable := s.fetchOnce(ctx, pageURL, final)
		if art != nil {
			return art
		}
		if !retryable {
			return nil
		}
	}
	slog.Warn("giving up on url", "url", pageURL, "attempts", attempts)
	return nil
}

// fetchOnce makes one attempt. A nil article with retryable true means
// another attempt may succeed; retryable false means the URL is hopeless.
func (s *Scraper) fetchOnce(ctx context.Context, pageURL string, final bool) (*extract.Article, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Warn("invalid url", "url", pageURL, "error", err)
		return nil, false
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("fetch failed", "url", pageURL, "error", err)
		return nil, true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("fetch returned status", "url", pageURL, "status", resp.StatusCode)
		return nil, true
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("reading body failed", "url", pageURL, "error", err)
		return nil, true
	}

	art := s.extract(pageURL, string(body))
	if len(art.Text) < shortTextLength && !final {
		slog.Debug("content too short, possible paywall", "url", pageURL, "length", len(art.Text))
		return nil, true
	}
	return art, false
}

func (s *Scraper) extract(pageURL, html string) *extract.Article {
	result := make(chan *extract.Article, 1)
	s.jobs <- extractJob{pageURL: pageURL, html: html, result: result}
	return <-result
}

func (s *Scraper) extractLoop() {
	defer s.wg.Done()
	for job := range s.jobs {
		job.result <- extract.FromHTML(job.pageURL, job.html)
	}
}

func (s *Scraper) jitter() time.Duration {
	span := s.cfg.JitterMax - s.cfg.JitterMin
	if span <= 0 {
		return s.cfg.JitterMin
	}
	return s.cfg.JitterMin + rand.N(span)
}

// setBrowserHeaders makes the request look like an ordinary browser
// visit, with a fresh user agent on every attempt. Accept-Encoding is
// left unset so the transport keeps handling decompression.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Cache-Control", "no-cache")
}

// sleepCtx pauses for d and reports whether the sleep completed before
// the context was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
