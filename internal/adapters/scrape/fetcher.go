package scrape

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"herald/internal/adapters/ratelimit"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

// Price extraction is naive web scraping: fetch the page, look for the
// first thing that resembles a price. It only works on simple product
// pages with a visible price and will fail on JavaScript-rendered
// content or anti-scraping measures. An extraction failure is reported
// as a per-source error and the series simply gets no point this run.
var pricePatterns = []*regexp.Regexp{
	// $123.45, €123,45, £99
	regexp.MustCompile(`[\$€£¥]\s*([0-9]{1,6}(?:[.,][0-9]{2})?)`),
	// 123.45 USD
	regexp.MustCompile(`([0-9]{1,6}(?:[.,][0-9]{2})?)\s*(?:USD|EUR|GBP|JPY)`),
}

var (
	minPlausiblePrice = decimal.Zero
	maxPlausiblePrice = decimal.NewFromInt(1_000_000)
)

// maxBodyBytes bounds how much of a product page is read.
const maxBodyBytes = 2 << 20

// Fetcher extracts prices from watched product pages.
type Fetcher struct {
	client  *http.Client
	limiter *ratelimit.HostLimiter
	log     *logger.Logger
}

// NewFetcher creates a price fetcher with a bounded per-request
// timeout and per-host rate limiting.
func NewFetcher(timeout time.Duration, requestsPerMinute int) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: ratelimit.NewHostLimiter(requestsPerMinute),
		log:     logger.Get().With("component", "price_fetcher"),
	}
}

// FetchPrice downloads the page at url and extracts the first
// plausible price it can find.
func (f *Fetcher) FetchPrice(ctx context.Context, url string) (decimal.Decimal, error) {
	if err := f.limiter.Wait(ctx, url); err != nil {
		return decimal.Zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "create request for %s", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Wrapf(errors.ErrNoPrice, "%s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "read body of %s", url)
	}

	price, ok := ExtractPrice(string(body))
	if !ok {
		return decimal.Zero, errors.Wrapf(errors.ErrNoPrice, "no price pattern matched on %s", url)
	}

	f.log.Debugw("Price extracted", "url", url, "price", price)
	return price, nil
}

// ExtractPrice scans page text for the first plausible price match.
func ExtractPrice(text string) (decimal.Decimal, bool) {
	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		raw := strings.ReplaceAll(m[1], ",", ".")
		price, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		if price.GreaterThan(minPlausiblePrice) && price.LessThan(maxPlausiblePrice) {
			return price, true
		}
	}
	return decimal.Zero, false
}
