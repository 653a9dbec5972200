package rss

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"herald/internal/adapters/ratelimit"
	"herald/internal/domain/news"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

// FetchResult is the outcome for a single feed: either its items or
// the reason it contributed nothing this run. A failed feed never
// aborts the batch.
type FetchResult struct {
	FeedURL string
	Items   []news.NewsItem
	Err     error
}

// Fetcher pulls and parses RSS/Atom feeds.
type Fetcher struct {
	client  *http.Client
	limiter *ratelimit.HostLimiter
	log     *logger.Logger
}

// NewFetcher creates a feed fetcher with a bounded per-request timeout
// and per-host rate limiting.
func NewFetcher(timeout time.Duration, requestsPerMinute int) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: ratelimit.NewHostLimiter(requestsPerMinute),
		log:     logger.Get().With("component", "rss_fetcher"),
	}
}

// Fetch pulls a single feed and maps its entries to news items.
// Entries without a parseable publish date default to now, and the
// feed title (or the URL host as a fallback) becomes the item source.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]news.NewsItem, error) {
	if err := f.limiter.Wait(ctx, feedURL); err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	parser.Client = f.client

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "%s: %v", feedURL, err)
	}

	source := feed.Title
	if source == "" {
		source = hostOf(feedURL)
	}

	now := time.Now().UTC()
	items := make([]news.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}
		items = append(items, news.NewsItem{
			Title:     entry.Title,
			Link:      entry.Link,
			Published: published,
			Source:    source,
			Summary:   entry.Description,
		})
	}
	return items, nil
}

// FetchAll pulls every feed with bounded concurrency and returns one
// result per feed, in input order. Fetches are independent, so the
// parallelism cannot change the merged outcome once results are
// aggregated deterministically by the caller.
func (f *Fetcher) FetchAll(ctx context.Context, feedURLs []string, maxConcurrency int) []FetchResult {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	results := make([]FetchResult, len(feedURLs))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, feedURL := range feedURLs {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := f.Fetch(ctx, feedURL)
			if err != nil {
				f.log.Warnw("Feed dropped for this run", "feed", feedURL, "error", err)
			}
			results[i] = FetchResult{FeedURL: feedURL, Items: items, Err: err}
		}(i, feedURL)
	}
	wg.Wait()

	return results
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
