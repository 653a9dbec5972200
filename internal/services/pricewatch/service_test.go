package pricewatch

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"herald/internal/adapters/config"
	"herald/internal/domain/price"
	"herald/internal/domain/state"
	"herald/pkg/errors"
)

type MockPriceFetcher struct {
	mock.Mock
}

func (m *MockPriceFetcher) FetchPrice(ctx context.Context, url string) (decimal.Decimal, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestUpdate_AppendsPointForNewEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fetcher := new(MockPriceFetcher)
	fetcher.On("FetchPrice", mock.Anything, "https://shop.example/camera").
		Return(decimal.RequireFromString("499.99"), nil)

	svc := NewService(fetcher)
	watchlist := []config.WatchEntry{{Name: "Camera", URL: "https://shop.example/camera", Currency: "EUR"}}

	results := svc.Update(context.Background(), state.Empty(), watchlist, now)

	require.Len(t, results, 1)
	assert.True(t, results[0].Fetched)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Item.Series, 1)
	assert.True(t, results[0].Item.Series[0].Price.Equal(decimal.RequireFromString("499.99")))
	assert.Equal(t, "EUR", results[0].Item.Currency)
	fetcher.AssertExpectations(t)
}

func TestUpdate_ExtendsExistingSeries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	existing := price.PriceItem{
		Name:     "Camera",
		URL:      "https://shop.example/camera",
		Currency: "EUR",
		Series: []price.PricePoint{
			{Ts: now.AddDate(0, 0, -120), Price: decimal.NewFromInt(550)}, // outside retention
			{Ts: now.AddDate(0, 0, -10), Price: decimal.NewFromInt(510)},
		},
	}
	snap := state.UpsertPrice(state.Empty(), existing)

	fetcher := new(MockPriceFetcher)
	fetcher.On("FetchPrice", mock.Anything, "https://shop.example/camera").
		Return(decimal.NewFromInt(500), nil)

	svc := NewService(fetcher)
	watchlist := []config.WatchEntry{{Name: "Camera", URL: "https://shop.example/camera", Currency: "EUR"}}

	results := svc.Update(context.Background(), snap, watchlist, now)

	require.Len(t, results, 1)
	require.Len(t, results[0].Item.Series, 2, "stale point trimmed, new point appended")
	assert.True(t, results[0].Item.Series[1].Ts.Equal(now))
}

func TestUpdate_FetchFailureKeepsSeriesUnchanged(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	existing := price.PriceItem{
		Name:     "Camera",
		URL:      "https://shop.example/camera",
		Currency: "EUR",
		Series:   []price.PricePoint{{Ts: now.AddDate(0, 0, -1), Price: decimal.NewFromInt(510)}},
	}
	snap := state.UpsertPrice(state.Empty(), existing)

	fetcher := new(MockPriceFetcher)
	fetcher.On("FetchPrice", mock.Anything, "https://shop.example/camera").
		Return(decimal.Zero, errors.ErrNoPrice)

	svc := NewService(fetcher)
	watchlist := []config.WatchEntry{{Name: "Camera", URL: "https://shop.example/camera", Currency: "EUR"}}

	results := svc.Update(context.Background(), snap, watchlist, now)

	require.Len(t, results, 1, "failed entry still flows downstream")
	assert.False(t, results[0].Fetched)
	assert.Error(t, results[0].Err)
	assert.Len(t, results[0].Item.Series, 1, "no point added on failure")
}

func TestUpdate_OneFailureDoesNotAbortOthers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fetcher := new(MockPriceFetcher)
	fetcher.On("FetchPrice", mock.Anything, "https://shop.example/broken").
		Return(decimal.Zero, errors.ErrNoPrice)
	fetcher.On("FetchPrice", mock.Anything, "https://shop.example/working").
		Return(decimal.NewFromInt(42), nil)

	svc := NewService(fetcher)
	watchlist := []config.WatchEntry{
		{Name: "Broken", URL: "https://shop.example/broken", Currency: "USD"},
		{Name: "Working", URL: "https://shop.example/working", Currency: "USD"},
	}

	results := svc.Update(context.Background(), state.Empty(), watchlist, now)

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.True(t, results[1].Fetched)
	fetcher.AssertExpectations(t)
}
