package price

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPoint_AppendsAndTrims(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	item := PriceItem{
		Name:     "Camera",
		URL:      "https://shop.example/camera",
		Currency: "EUR",
		Series: []PricePoint{
			point(now, 120, "500.00"), // beyond retention, dropped
			point(now, 30, "480.00"),
		},
	}

	updated := item.WithPoint(point(now, 0, "470.00"), 90, now)

	require.Len(t, updated.Series, 2)
	assert.True(t, updated.Series[0].Price.Equal(decimal.RequireFromString("480.00")))
	assert.True(t, updated.Series[1].Price.Equal(decimal.RequireFromString("470.00")))

	// Receiver untouched.
	assert.Len(t, item.Series, 2)
	assert.True(t, item.Series[0].Price.Equal(decimal.RequireFromString("500.00")))
}

func TestLatest_PicksMostRecentTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	item := PriceItem{
		Series: []PricePoint{
			point(now, 5, "10.00"),
			point(now, 1, "12.00"),
			point(now, 3, "11.00"),
		},
	}

	latest, ok := item.Latest()
	require.True(t, ok)
	assert.True(t, latest.Price.Equal(decimal.RequireFromString("12.00")))

	_, ok = PriceItem{}.Latest()
	assert.False(t, ok)
}

func TestSorted_DoesNotMutateSeries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	item := PriceItem{
		Series: []PricePoint{
			point(now, 1, "12.00"),
			point(now, 5, "10.00"),
		},
	}

	sorted := item.Sorted()
	assert.True(t, sorted[0].Ts.Before(sorted[1].Ts))
	assert.True(t, item.Series[0].Ts.After(item.Series[1].Ts), "original order preserved")
}
