package resolver

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"news-terminal/gnews"
)

const redirectHost = "news.google.com"

// Resolver replaces aggregator redirect links with the publisher URLs
// they point at. Links that cannot be resolved keep their input value.
type Resolver struct {
	client *http.Client
	host   string
	limit  int
}

// New returns a Resolver that follows at most limit redirects at once.
func New(limit int) *Resolver {
	return NewWithHost(limit, redirectHost)
}

// NewWithHost returns a Resolver that only touches links on host (for testing).
func NewWithHost(limit int, host string) *Resolver {
	if limit <= 0 {
		limit = 1
	}
	return &Resolver{
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		host:  host,
		limit: limit,
	}
}

// Resolve returns the publisher URL behind link, or link itself when
// resolution fails or the response is not a redirect.
func (r *Resolver) Resolve(ctx context.Context, link string) string {
	if direct := embeddedURL(link); direct != "" {
		return direct
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return link
	}
	resp, err := r.client.Do(req)
	if err != nil {
		slog.Debug("redirect resolution failed", "link", link, "error", err)
		return link
	}
	defer resp.Body.Close()

	if !isRedirect(resp.StatusCode) {
		return link
	}
	target, err := resp.Location()
	if err != nil {
		return link
	}
	return target.String()
}

// ResolveAll rewrites the Link of every aggregator article in place,
// resolving at most limit links concurrently. Articles that already
// point at a publisher are left alone.
func (r *Resolver) ResolveAll(ctx context.Context, articles []gnews.Article) {
	sem := make(chan struct{}, r.limit)
	var wg sync.WaitGroup

	for i := range articles {
		parsed, err := url.Parse(articles[i].Link)
		if err != nil || parsed.Host != r.host {
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(a *gnews.Article) {
			defer wg.Done()
			defer func() { <-sem }()
			a.Link = r.Resolve(ctx, a.Link)
		}(&articles[i])
	}
	wg.Wait()
}

// Close releases idle connections held by the resolver's client.
func (r *Resolver) Close() {
	r.client.CloseIdleConnections()
}

// embeddedURL extracts a publisher URL carried in the link's url= query
// parameter, a shape some aggregator redirects use.
func embeddedURL(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	direct := parsed.Query().Get("url")
	if direct == "" {
		return ""
	}
	if _, err := url.ParseRequestURI(direct); err != nil {
		return ""
	}
	return direct
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
