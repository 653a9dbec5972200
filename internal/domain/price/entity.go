package price

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single observation in a price series. Prices are
// exact decimals; monetary values must not drift.
type PricePoint struct {
	Ts    time.Time       `json:"ts"`
	Price decimal.Decimal `json:"price"`
}

// PriceItem is one watched product. Identity is the (Name, URL) pair.
// The series is insertion-ordered; consumers re-sort by timestamp.
type PriceItem struct {
	Name     string       `json:"name"`
	URL      string       `json:"url"`
	Currency string       `json:"currency"`
	Series   []PricePoint `json:"series"`
}

// SameIdentity reports whether two items track the same product.
func (p PriceItem) SameIdentity(other PriceItem) bool {
	return p.Name == other.Name && p.URL == other.URL
}

// Sorted returns a copy of the series ordered by timestamp ascending.
func (p PriceItem) Sorted() []PricePoint {
	out := make([]PricePoint, len(p.Series))
	copy(out, p.Series)
	sort.Slice(out, func(i, j int) bool { return out[i].Ts.Before(out[j].Ts) })
	return out
}

// Latest returns the most recent point, if any.
func (p PriceItem) Latest() (PricePoint, bool) {
	if len(p.Series) == 0 {
		return PricePoint{}, false
	}
	latest := p.Series[0]
	for _, pt := range p.Series[1:] {
		if pt.Ts.After(latest.Ts) {
			latest = pt
		}
	}
	return latest, true
}

// WithPoint returns a copy of the item with the point appended and the
// series trimmed to the rolling retention window ending at now. The
// receiver is not mutated.
func (p PriceItem) WithPoint(pt PricePoint, retentionDays int, now time.Time) PriceItem {
	cutoff := now.AddDate(0, 0, -retentionDays)

	series := make([]PricePoint, 0, len(p.Series)+1)
	for _, existing := range p.Series {
		if !existing.Ts.Before(cutoff) {
			series = append(series, existing)
		}
	}
	if !pt.Ts.Before(cutoff) {
		series = append(series, pt)
	}

	out := p
	out.Series = series
	return out
}
