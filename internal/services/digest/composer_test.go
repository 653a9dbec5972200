package digest

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/domain/news"
	"herald/internal/domain/price"
	"herald/internal/domain/trend"
)

func sampleContent(now time.Time) Content {
	return Content{
		GeneratedAt: now,
		AISummary:   "Markets rallied on chip news [1]. Energy prices fell [2].",
		Relevant: []news.NewsItem{
			{Title: "Chipmaker surges", Link: "https://example.com/chips", Source: "Example Wire", Published: now.Add(-3 * time.Hour)},
			{Title: "Oil slides", Link: "https://example.com/oil", Source: "Example Wire", Published: now.Add(-5 * time.Hour)},
		},
		Trends: []trend.TopicTrend{
			{Topic: "chip exports", CountNow: 6, CountPrev: 2, Slope: 4},
		},
		Prices: []PriceReport{{
			Item: price.PriceItem{
				Name:     "Camera",
				URL:      "https://shop.example/camera",
				Currency: "EUR",
				Series:   []price.PricePoint{{Ts: now.AddDate(0, 0, -1), Price: decimal.RequireFromString("499.99")}},
			},
			Evaluation: price.Evaluation{Decision: price.DecisionWatch, Rationale: "not enough history"},
		}},
		Challenge: "Today's challenge: explain TCP backoff to a rubber duck.",
	}
}

func TestCompose_RendersAllSections(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	body := NewComposer("UTC").Compose(sampleContent(now))

	assert.Contains(t, body, "# Daily Digest")
	assert.Contains(t, body, "## AI Summary")
	assert.Contains(t, body, "## Worldwide but relevant to you")
	assert.Contains(t, body, "[Chipmaker surges](https://example.com/chips)")
	assert.Contains(t, body, "## Developing stories")
	assert.Contains(t, body, "**chip exports** — 6 mentions (+4 vs prior window)")
	assert.Contains(t, body, "## Price trends (watchlist)")
	assert.Contains(t, body, "499.99 EUR")
	assert.Contains(t, body, "rubber duck")
}

func TestCompose_OmitsEmptySections(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	body := NewComposer("UTC").Compose(Content{GeneratedAt: now})

	assert.NotContains(t, body, "## AI Summary")
	assert.NotContains(t, body, "## Developing stories")
	assert.NotContains(t, body, "## Price trends")
	assert.Contains(t, body, "## Worldwide but relevant to you", "article section header always present")
}

func TestCompose_CapsShownItems(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	content := Content{GeneratedAt: now}
	for i := 0; i < maxShownItems+5; i++ {
		content.Relevant = append(content.Relevant, news.NewsItem{
			Title:     "Item",
			Link:      "https://example.com/" + strings.Repeat("x", i+1),
			Published: now,
		})
	}

	body := NewComposer("UTC").Compose(content)
	assert.Equal(t, maxShownItems, strings.Count(body, "- [Item]("))
}

func TestCompose_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	body := NewComposer("Not/AZone").Compose(Content{GeneratedAt: now})

	assert.Contains(t, body, "12:00 PM UTC")
}

func TestCompose_FooterIsValidJSON(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	body := NewComposer("UTC").Compose(sampleContent(now))

	start := strings.Index(body, "```json\n")
	require.NotEqual(t, -1, start)
	rest := body[start+len("```json\n"):]
	end := strings.Index(rest, "\n```")
	require.NotEqual(t, -1, end)

	var footer struct {
		Version         string `json:"version"`
		DigestID        string `json:"digest_id"`
		ItemsConsidered int    `json:"items_considered"`
		Trends          int    `json:"trends"`
		PriceItems      []struct {
			Name string  `json:"name"`
			URL  string  `json:"url"`
			Last *string `json:"last"`
		} `json:"price_items"`
	}
	require.NoError(t, json.Unmarshal([]byte(rest[:end]), &footer))

	assert.Equal(t, composerVersion, footer.Version)
	assert.NotEmpty(t, footer.DigestID)
	assert.Equal(t, 2, footer.ItemsConsidered)
	assert.Equal(t, 1, footer.Trends)
	require.Len(t, footer.PriceItems, 1)
	require.NotNil(t, footer.PriceItems[0].Last)
	assert.Equal(t, "499.99", *footer.PriceItems[0].Last)
}

func TestLinkCitations(t *testing.T) {
	relevant := []news.NewsItem{
		{Link: "https://example.com/one"},
		{Link: "https://example.com/two"},
	}

	t.Run("bare markers become links", func(t *testing.T) {
		got := linkCitations("First [1] and second [2].", relevant)
		assert.Equal(t,
			"First [[1]](https://example.com/one) and second [[2]](https://example.com/two).",
			got)
	})

	t.Run("already linked markers untouched", func(t *testing.T) {
		in := "Already [1](https://example.com/other) linked."
		assert.Equal(t, in, linkCitations(in, relevant))
	})

	t.Run("out of range markers untouched", func(t *testing.T) {
		in := "No source for [7]."
		assert.Equal(t, in, linkCitations(in, relevant))
	})

	t.Run("no relevant items", func(t *testing.T) {
		in := "Some [1] text."
		assert.Equal(t, in, linkCitations(in, nil))
	})
}
