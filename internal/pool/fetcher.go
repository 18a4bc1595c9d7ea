package pool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/abelbrown/dailycard/internal/model"
)

const userAgent = "dailycard/1.0 (https://github.com/abelbrown/dailycard)"

// Fetcher performs throttled HTTP GETs for the network sources.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher with the given timeout, allowing perMinute
// requests per minute. perMinute <= 0 disables throttling.
func NewFetcher(timeout time.Duration, perMinute int) *Fetcher {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// get returns the body of a 200 response. The caller closes it.
func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

// HTTPSource downloads a quotes JSON asset.
type HTTPSource struct {
	URL     string
	fetcher *Fetcher
}

// NewHTTPSource creates an HTTPSource fetching url through f.
func NewHTTPSource(url string, f *Fetcher) *HTTPSource {
	return &HTTPSource{URL: url, fetcher: f}
}

// Name returns the source identifier for logging.
func (s *HTTPSource) Name() string {
	return "url:" + s.URL
}

// Fetch downloads and parses the asset.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Item, error) {
	body, err := s.fetcher.get(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return Parse(body)
}

// RSSSource turns feed entries into cards: the description (or title) is the
// text, the entry author the author, the first category the category.
type RSSSource struct {
	URL     string
	fetcher *Fetcher
}

// NewRSSSource creates an RSSSource fetching url through f.
func NewRSSSource(url string, f *Fetcher) *RSSSource {
	return &RSSSource{URL: url, fetcher: f}
}

// Name returns the source identifier for logging.
func (s *RSSSource) Name() string {
	return "rss:" + s.URL
}

// Fetch downloads and converts the feed.
func (s *RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	body, err := s.fetcher.get(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]model.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if item, ok := convertFeedItem(entry, feed.Title); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// convertFeedItem maps an entry through the same record rules as JSON assets.
func convertFeedItem(entry *gofeed.Item, feedTitle string) (model.Item, bool) {
	text := strings.TrimSpace(entry.Description)
	if text == "" {
		text = entry.Title
	}
	author := feedTitle
	if entry.Author != nil && strings.TrimSpace(entry.Author.Name) != "" {
		author = entry.Author.Name
	}
	return Record{
		Quote:  truncate(text, 500),
		Author: author,
		Tags:   entry.Categories,
	}.Item()
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
