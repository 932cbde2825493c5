package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const keywordCount = 5

// Article is the readable content pulled out of one web page. A failed
// extraction still yields an Article with Err set so callers can report
// partial results instead of dropping the page.
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Authors     []string   `json:"authors,omitempty"`
	Text        string     `json:"text"`
	Summary     string     `json:"summary,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Source      string     `json:"source"`
	TopImage    string     `json:"top_image,omitempty"`
	Images      []string   `json:"images,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Err         string     `json:"error,omitempty"`
}

var bylinePrefix = regexp.MustCompile(`(?i)^by\s+`)

// FromHTML extracts the readable article from one page's HTML.
func FromHTML(pageURL, htmlBody string) *Article {
	art := &Article{URL: pageURL, Source: Host(pageURL)}

	base, err := url.Parse(pageURL)
	if err != nil {
		art.Err = fmt.Sprintf("parsing url: %v", err)
		return art
	}

	parsed, err := readability.FromReader(strings.NewReader(htmlBody), base)
	if err != nil {
		art.Err = fmt.Sprintf("extracting content: %v", err)
		return art
	}

	art.Title = strings.TrimSpace(parsed.Title)
	art.Text = Clean(parsed.TextContent)
	art.Summary = strings.TrimSpace(parsed.Excerpt)
	art.Authors = splitByline(parsed.Byline)
	art.TopImage = parsed.Image
	art.Images = imageURLs(parsed.Content, base)
	art.PublishDate = parsed.PublishedTime
	art.Keywords = Keywords(art.Text, keywordCount)
	return art
}

// Host returns the hostname of rawURL without a leading www prefix.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

func splitByline(byline string) []string {
	byline = bylinePrefix.ReplaceAllString(strings.TrimSpace(byline), "")
	if byline == "" {
		return nil
	}

	byline = strings.ReplaceAll(byline, " and ", ", ")
	var authors []string
	for _, part := range strings.Split(byline, ",") {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// imageURLs collects absolute image URLs from the extracted content,
// in document order and without duplicates.
func imageURLs(content string, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var urls []string
	seen := make(map[string]struct{})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		abs := resolved.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		urls = append(urls, abs)
	})
	return urls
}
