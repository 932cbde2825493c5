package server

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"news-terminal/dates"
	"news-terminal/extract"
	"news-terminal/gnews"
	"news-terminal/search"
	"news-terminal/storage"
	"news-terminal/summarizer"
)

const (
	defaultNewsDays     = 30
	defaultSearchLimit  = 10
	timelineMaxResults  = 100
	displayLayout       = "Jan 02, 2006"
	fallbackSummaryText = "Click to read the full article."
)

// newsItem is the frontend shape for news feed entries. Sentiment is
// placeholder data, uniform in [-0.5, 0.5); only the article fields and
// dates are real.
type newsItem struct {
	Title       string        `json:"title"`
	Link        string        `json:"link"`
	Source      string        `json:"source"`
	PublishDate string        `json:"publish_date"`
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	DisplayDate string        `json:"display_date"`
	Sentiment   float64       `json:"sentiment"`
	Summary     string        `json:"summary"`
	RawData     gnews.Article `json:"raw_data"`
}

// articleResponse is a fetched article plus the summarizer's analysis.
type articleResponse struct {
	*extract.Article
	Analysis *summarizer.Summary `json:"analysis,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "news-terminal API is running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleRSSSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("query") {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	req := search.Request{
		Query:       q.Get("query"),
		Topic:       q.Get("topic"),
		From:        q.Get("from_date"),
		To:          q.Get("to_date"),
		MaxResults:  s.cfg.MaxResults,
		ResolveURLs: boolParam(q, "resolve_urls", true),
		UseCache:    boolParam(q, "use_cache", true),
	}
	articles := s.engine.Search(r.Context(), req)
	s.recordSearch(req, articles)

	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleArticleContent(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	art, err := s.engine.ArticleContent(r.Context(), rawURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := articleResponse{Article: art}
	if art.Err == "" {
		resp.Analysis = s.summarizer.Summarize(r.Context(), art.Title, art.Text)
	} else if rec, lookupErr := s.history.ArticleByURL(rawURL); lookupErr == nil && rec != nil {
		// A failed fetch can still serve stub metadata remembered from
		// an earlier search.
		if art.Title == "" {
			art.Title = rec.Title
		}
		if art.Summary == "" {
			art.Summary = rec.Snippet
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := intParam(q, "days", defaultNewsDays)

	from := q.Get("from_date")
	if from == "" {
		from = dates.DayKey(time.Now().AddDate(0, 0, -days))
	}

	req := search.Request{
		Query:       symbolQuery(q.Get("symbol")),
		From:        from,
		To:          q.Get("to_date"),
		MaxResults:  s.cfg.MaxResults,
		ResolveURLs: true,
		UseCache:    true,
	}
	articles := s.engine.Search(r.Context(), req)
	s.recordSearch(req, articles)

	writeJSON(w, http.StatusOK, newsItems(articles, dates.DayKey(time.Now()), "Recently"))
}

func (s *Server) handleNewsDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "Both start_date and end_date are required")
		return
	}

	req := search.Request{
		Query:       symbolQuery(q.Get("symbol")),
		From:        start + "T00:01:00",
		To:          end + "T23:59:59",
		MaxResults:  s.cfg.MaxResults,
		ResolveURLs: true,
		UseCache:    true,
	}
	articles := s.engine.Search(r.Context(), req)
	s.recordSearch(req, articles)

	writeJSON(w, http.StatusOK, newsItems(articles, dates.DayKey(time.Now()), "Recently"))
}

func (s *Server) handleNewsDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := q.Get("date")
	if day == "" {
		writeError(w, http.StatusBadRequest, "Date parameter is required")
		return
	}

	req := search.Request{
		Query:       symbolQuery(q.Get("symbol")),
		From:        day + "T00:01:00",
		To:          day + "T23:59:59",
		MaxResults:  s.cfg.MaxResults,
		ResolveURLs: true,
		UseCache:    true,
	}
	articles := s.engine.Search(r.Context(), req)
	s.recordSearch(req, articles)

	// Entries without a parseable date belong to the requested day here,
	// not to today.
	writeJSON(w, http.StatusOK, newsItems(articles, day, "Today"))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := intParam(q, "days", defaultNewsDays)
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	req := search.Request{
		Query:       symbolQuery(q.Get("symbol")),
		From:        dates.DayKey(from),
		To:          dates.DayKey(to),
		MaxResults:  timelineMaxResults,
		ResolveURLs: true,
		UseCache:    true,
	}
	articles := s.engine.Search(r.Context(), req)

	counts := liveCounts(articles)
	stored, err := s.history.CountByDay(from, to)
	if err != nil {
		slog.Warn("loading stored day counts failed", "error", err)
	}
	mergeCounts(counts, stored)

	writeJSON(w, http.StatusOK, s.timeline.Series(from, to, counts))
}

func (s *Server) handleSearches(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query(), "limit", defaultSearchLimit)

	records, err := s.history.RecentSearches(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// recordSearch persists a search and its results, best-effort. The
// window bounds are normalized the same way the engine normalizes them.
func (s *Server) recordSearch(req search.Request, articles []gnews.Article) {
	now := time.Now()
	from := dates.ParseInput(req.From, now.AddDate(0, 0, -s.cfg.WindowDays))
	to := dates.ParseInput(req.To, now)

	if _, err := s.history.RecordSearch(req.Query, req.Topic, from, to, articles); err != nil {
		slog.Warn("recording search failed", "query", req.Query, "error", err)
	}
}

func newsItems(articles []gnews.Article, fallbackDay, fallbackDisplay string) []newsItem {
	items := make([]newsItem, 0, len(articles))
	for i, a := range articles {
		day := fallbackDay
		display := fallbackDisplay
		if t, ok := dates.ParsePublished(a.PublishDate); ok {
			day = dates.DayKey(t)
			display = t.Format(displayLayout)
		}

		summary := a.Snippet
		if summary == "" {
			summary = fallbackSummaryText
		}

		items = append(items, newsItem{
			Title:       a.Title,
			Link:        a.Link,
			Source:      a.Source,
			PublishDate: day,
			ID:          fmt.Sprintf("news-%d", i),
			Date:        day,
			DisplayDate: display,
			Sentiment:   rand.Float64() - 0.5,
			Summary:     summary,
			RawData:     a,
		})
	}
	return items
}

// liveCounts groups search results by publish day, skipping entries
// whose date never parsed.
func liveCounts(articles []gnews.Article) map[string]int {
	counts := make(map[string]int)
	for _, a := range articles {
		if t, ok := dates.ParsePublished(a.PublishDate); ok {
			counts[dates.DayKey(t)]++
		}
	}
	return counts
}

// mergeCounts folds stored counts in, keeping the larger value per day.
// Live and stored results overlap, so summing would double-count.
func mergeCounts(counts, stored map[string]int) {
	for day, n := range stored {
		if n > counts[day] {
			counts[day] = n
		}
	}
}

// symbolQuery maps a frontend symbol to a feed query. GENERAL is the
// frontend's catch-all tab.
func symbolQuery(symbol string) string {
	if symbol == "" || symbol == "GENERAL" {
		return "business news"
	}
	return symbol
}

func boolParam(q url.Values, name string, def bool) bool {
	v := q.Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func intParam(q url.Values, name string, def int) int {
	v := q.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
