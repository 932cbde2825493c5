package gnews

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"
)

const BaseURL = "https://news.google.com"

// localeParams pins the locale Google News feeds are requested in.
const localeParams = "hl=en-US&gl=US&ceid=US:en"

// userAgent sent with feed requests. Matches the first entry of the
// rotation pool the scraper uses.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"

// topicIDs maps friendly topic names to Google News section identifiers.
var topicIDs = map[string]string{
	"business":      "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx6TVdZU0FtVnVHZ0pWVXlnQVAB",
	"technology":    "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGRqTVhZU0FtVnVHZ0pWVXlnQVAB",
	"health":        "CAAqIQgKIhtDQkFTRGdvSUwyMHZNR3QwTlRFU0FtVnVLQUFQAQ",
	"science":       "CAAqJggKIiBDQkFTRWdvSUwyMHZNRFp0Y1RJU0FtVnVHZ0pWVXlnQVAB",
	"entertainment": "CAAqJggKIiBDQkFTRWdvSUwyMHZNREpxYW5RU0FtVnVHZ0pWVXlnQVAB",
	"sports":        "CAAqJggKIiBDQkFTRWdvSUwyMHZNRFp1ZEdvU0FtVnVHZ0pWVXlnQVAB",
	"world":         "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx1YlY4U0FtVnVHZ0pWVXlnQVAB",
	"nation":        "CAAqIggKIhxDQkFTRHdvSUwyMHZNRGxqZHpNd0VnSmxiaWdBUAE",
}

// Article is one feed entry, lightweight and unfetched. PublishDate
// carries the raw feed string so downstream stages can apply their own
// parsing policy.
type Article struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Source      string   `json:"source"`
	PublishDate string   `json:"publish_date"`
	Snippet     string   `json:"snippet,omitempty"`
	Authors     []string `json:"authors,omitempty"`
}

// Client interface for Google News feed retrieval.
type Client interface {
	Fetch(ctx context.Context, query, topic string) ([]Article, error)
}

type httpClient struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a new feed client with the given HTTP client.
func NewClient(client *http.Client) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:  client,
		baseURL: BaseURL,
	}
}

// NewClientWithBaseURL creates a new feed client with a custom base URL (for testing).
func NewClientWithBaseURL(client *http.Client, baseURL string) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:  client,
		baseURL: baseURL,
	}
}

// Topics returns the supported topic names.
func Topics() []string {
	names := make([]string, 0, len(topicIDs))
	for name := range topicIDs {
		names = append(names, name)
	}
	return names
}

// ValidTopic reports whether name maps to a known topic feed.
func ValidTopic(name string) bool {
	_, ok := topicIDs[strings.ToLower(name)]
	return ok
}

// Fetch issues one feed request and maps each entry to an Article. A
// known topic selects that section's headline feed, with the query as
// an optional filter; otherwise the plain search feed is used.
func (c *httpClient) Fetch(ctx context.Context, query, topic string) ([]Article, error) {
	feedURL := c.feedURL(query, topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := (&rss.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, entryArticle(item))
	}
	return articles, nil
}

// feedURL builds the request URL. An unknown topic falls back to the
// search feed.
func (c *httpClient) feedURL(query, topic string) string {
	if topic != "" {
		if id, ok := topicIDs[strings.ToLower(topic)]; ok {
			u := fmt.Sprintf("%s/rss/headlines/section/topic/%s?%s", c.baseURL, id, localeParams)
			if query != "" {
				u += "&q=" + url.QueryEscape(query)
			}
			return u
		}
		slog.Warn("unknown topic, using search feed", "topic", topic)
	}
	return fmt.Sprintf("%s/rss/search?q=%s&%s", c.baseURL, url.QueryEscape(query), localeParams)
}

func entryArticle(item *rss.Item) Article {
	a := Article{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		PublishDate: strings.TrimSpace(item.PubDate),
		Snippet:     stripMarkup(item.Description),
	}
	if item.Source != nil {
		a.Source = strings.TrimSpace(item.Source.Title)
	}
	if a.Source == "" {
		a.Source = hostname(a.Link)
	}
	if author := strings.TrimSpace(item.Author); author != "" {
		a.Authors = []string{author}
	}
	return a
}

// stripMarkup reduces an entry description to plain text. Google News
// descriptions embed anchor tags around the headline.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func hostname(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
