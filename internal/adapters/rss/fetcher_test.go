package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/pkg/errors"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Wire</title>
    <link>https://example.com</link>
    <item>
      <title>Solar output record</title>
      <link>https://example.com/solar</link>
      <description>Record output across the grid</description>
      <pubDate>Mon, 09 Mar 2026 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://example.com/undated</link>
    </item>
  </channel>
</rss>`

func TestFetch_ParsesFeedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 60)
	items, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Solar output record", items[0].Title)
	assert.Equal(t, "https://example.com/solar", items[0].Link)
	assert.Equal(t, "Example Wire", items[0].Source)
	assert.Equal(t, "Record output across the grid", items[0].Summary)
	assert.True(t, items[0].Published.Equal(time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)))

	assert.WithinDuration(t, time.Now().UTC(), items[1].Published, time.Minute,
		"undated entries default to the fetch time")
}

func TestFetch_UnreachableFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	f := NewFetcher(2*time.Second, 60)
	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFeedUnavailable))
}

func TestFetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, 60)
	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFeedUnavailable))
}

func TestFetchAll_ResultsInInputOrderWithPartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	f := NewFetcher(5*time.Second, 60)
	results := f.FetchAll(context.Background(), []string{bad.URL, good.URL}, 2)

	require.Len(t, results, 2)
	assert.Equal(t, bad.URL, results[0].FeedURL)
	assert.Error(t, results[0].Err)
	assert.Equal(t, good.URL, results[1].FeedURL)
	require.NoError(t, results[1].Err)
	assert.Len(t, results[1].Items, 2)
}
