package state

import (
	"time"

	"herald/internal/domain/news"
	"herald/internal/domain/price"
)

// Snapshot is the sole persisted aggregate: the last digest timestamp,
// a bounded cache of news items and the full collection of watched
// price series. It is loaded once at run start and saved once at run
// end; mutation steps produce new snapshots instead of editing in
// place.
//
// Invariants: CacheNews holds no two items with the same link and no
// item older than the retention horizon at save time; Prices holds at
// most one entry per (name, url) pair.
type Snapshot struct {
	LastDigest *time.Time        `json:"last_digest_utc,omitempty"`
	CacheNews  []news.NewsItem   `json:"cache_news"`
	Prices     []price.PriceItem `json:"prices"`
}

// Empty returns a zero-value snapshot.
func Empty() Snapshot {
	return Snapshot{}
}

// AppendNews merges fresh items into the cache and returns a new
// snapshot trimmed to the retention window ending at now. Duplicates
// are resolved by link with first-seen-wins precedence: an
// already-cached copy survives over any incoming copy, which keeps the
// merge deterministic regardless of fetch order.
func AppendNews(snap Snapshot, items []news.NewsItem, keepDays int, now time.Time) Snapshot {
	cutoff := now.AddDate(0, 0, -keepDays)
	seen := make(map[string]struct{}, len(snap.CacheNews)+len(items))

	merged := make([]news.NewsItem, 0, len(snap.CacheNews)+len(items))
	for _, item := range snap.CacheNews {
		merged = appendRetained(merged, seen, item, cutoff)
	}
	for _, item := range items {
		merged = appendRetained(merged, seen, item, cutoff)
	}

	out := snap
	out.CacheNews = merged
	return out
}

func appendRetained(dst []news.NewsItem, seen map[string]struct{}, item news.NewsItem, cutoff time.Time) []news.NewsItem {
	if item.Published.Before(cutoff) {
		return dst
	}
	if _, dup := seen[item.Link]; dup {
		return dst
	}
	seen[item.Link] = struct{}{}
	return append(dst, item)
}

// UpsertPrice returns a new snapshot with the item's series replacing
// the series of an existing (name, url) entry, or with the item
// appended when no entry matches. Name, URL and currency of an existing
// entry are left untouched; a currency mismatch on the incoming item is
// passed through unreconciled.
func UpsertPrice(snap Snapshot, item price.PriceItem) Snapshot {
	prices := make([]price.PriceItem, len(snap.Prices))
	copy(prices, snap.Prices)

	for i, existing := range prices {
		if existing.SameIdentity(item) {
			existing.Series = item.Series
			prices[i] = existing

			out := snap
			out.Prices = prices
			return out
		}
	}

	out := snap
	out.Prices = append(prices, item)
	return out
}

// FindPrice returns the stored series for a (name, url) pair, if any.
func (s Snapshot) FindPrice(name, url string) (price.PriceItem, bool) {
	for _, p := range s.Prices {
		if p.Name == name && p.URL == url {
			return p, true
		}
	}
	return price.PriceItem{}, false
}

// WithLastDigest stamps the last digest timestamp on a copy of the
// snapshot.
func (s Snapshot) WithLastDigest(ts time.Time) Snapshot {
	out := s
	out.LastDigest = &ts
	return out
}
