package pricewatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"herald/internal/adapters/config"
	"herald/internal/domain/price"
	"herald/internal/domain/state"
	"herald/pkg/logger"
)

// retentionDays bounds every series to a rolling 90-day window.
const retentionDays = 90

// PriceFetcher extracts the current price for a watched URL.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, url string) (decimal.Decimal, error)
}

// UpdateResult is the outcome for one watchlist entry. When the fetch
// failed, Item carries the existing series unchanged and Err holds the
// reason; the entry still flows downstream so it stays persisted and
// reported.
type UpdateResult struct {
	Item    price.PriceItem
	Fetched bool
	Err     error
}

// Service refreshes watched price series. One failing price page never
// aborts the run; it just contributes no point this time.
type Service struct {
	fetcher PriceFetcher
	log     *logger.Logger
}

// NewService constructs a price watch service.
func NewService(fetcher PriceFetcher) *Service {
	return &Service{
		fetcher: fetcher,
		log:     logger.Get().With("component", "pricewatch_service"),
	}
}

// Update fetches the current price for every watchlist entry and
// returns the refreshed items. Existing series come from the snapshot;
// new entries start empty. Successful fetches append a point and trim
// the series to the retention window ending at now.
func (s *Service) Update(ctx context.Context, snap state.Snapshot, watchlist []config.WatchEntry, now time.Time) []UpdateResult {
	results := make([]UpdateResult, 0, len(watchlist))

	for _, entry := range watchlist {
		item, ok := snap.FindPrice(entry.Name, entry.URL)
		if !ok {
			item = price.PriceItem{
				Name:     entry.Name,
				URL:      entry.URL,
				Currency: entry.Currency,
			}
		}

		current, err := s.fetcher.FetchPrice(ctx, entry.URL)
		if err != nil {
			s.log.Warnw("Price fetch failed, keeping series unchanged",
				"name", entry.Name,
				"url", entry.URL,
				"error", err,
			)
			results = append(results, UpdateResult{Item: item, Err: err})
			continue
		}

		item = item.WithPoint(price.PricePoint{Ts: now, Price: current}, retentionDays, now)
		s.log.Infow("Price observed",
			"name", entry.Name,
			"price", current,
			"currency", item.Currency,
			"points", len(item.Series),
		)
		results = append(results, UpdateResult{Item: item, Fetched: true})
	}

	return results
}
