package price

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Decision classifies a watched price series.
type Decision string

const (
	DecisionBuy   Decision = "BUY"
	DecisionHold  Decision = "HOLD"
	DecisionWatch Decision = "WATCH"
)

// Evaluation is a decision plus a human-readable rationale. The
// rationale cites the compared values; it is a diagnostic, not a
// machine-parsed contract.
type Evaluation struct {
	Decision  Decision
	Rationale string
}

// Evaluation thresholds: within 1% of the retained low, or at least 5%
// below the 30-day average.
var (
	nearLowFactor  = decimal.New(101, -2) // 1.01
	belowAvgFactor = decimal.New(95, -2)  // 0.95
)

const (
	// minSeriesPoints is the minimum history before a decision is made.
	minSeriesPoints = 3

	avg30WindowDays = 30
)

// Evaluate classifies a price series as BUY, HOLD or WATCH at the given
// instant. Fewer than three points is insufficient signal and yields
// WATCH until more data accrues. The series is assumed to already be
// bounded to the store's 90-day retention window, so the minimum over
// all retained points is the 90-day low.
func Evaluate(item PriceItem, now time.Time) Evaluation {
	if len(item.Series) < minSeriesPoints {
		return Evaluation{
			Decision:  DecisionWatch,
			Rationale: fmt.Sprintf("insufficient history (%d of %d points)", len(item.Series), minSeriesPoints),
		}
	}

	sorted := item.Sorted()
	last := sorted[len(sorted)-1].Price

	min90 := sorted[0].Price
	for _, pt := range sorted[1:] {
		if pt.Price.LessThan(min90) {
			min90 = pt.Price
		}
	}

	avg30 := averageSince(sorted, now.AddDate(0, 0, -avg30WindowDays), last)

	if last.LessThanOrEqual(min90.Mul(nearLowFactor)) {
		return Evaluation{
			Decision:  DecisionBuy,
			Rationale: fmt.Sprintf("near 90-day low (%s vs %s)", last, min90),
		}
	}
	if last.LessThanOrEqual(avg30.Mul(belowAvgFactor)) {
		return Evaluation{
			Decision:  DecisionBuy,
			Rationale: fmt.Sprintf("below 30-day average (%s vs %s)", last, avg30),
		}
	}
	return Evaluation{
		Decision:  DecisionHold,
		Rationale: fmt.Sprintf("price %s above recent low %s and average %s", last, min90, avg30),
	}
}

// averageSince is the mean price of points at or after cutoff. When no
// point falls in the window it falls back to the provided last price,
// avoiding an empty-set average.
func averageSince(sorted []PricePoint, cutoff time.Time, fallback decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	var n int64
	for _, pt := range sorted {
		if pt.Ts.Before(cutoff) {
			continue
		}
		sum = sum.Add(pt.Price)
		n++
	}
	if n == 0 {
		return fallback
	}
	return sum.Div(decimal.NewFromInt(n))
}
