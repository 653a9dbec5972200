package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_KeywordPlusRecency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer(nil, nil, []string{"rust"})

	item := NewsItem{
		Title:     "Rust 2.0 released",
		Link:      "https://example.com/rust",
		Published: now,
	}

	// 1.0 keyword hit + 0.5 full recency bonus
	assert.InDelta(t, 1.5, scorer.Score(item, now), 1e-9)
}

func TestScore_AllTermKindsStack(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer([]string{"energy"}, []string{"europe"}, []string{"solar"})

	item := NewsItem{
		Title:     "Solar energy output hits record in Europe",
		Published: now,
	}

	assert.InDelta(t, 1.0+0.6+0.4+0.5, scorer.Score(item, now), 1e-9)
}

func TestScore_ZeroForOldItemWithNoMatches(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer([]string{"energy"}, []string{"europe"}, []string{"solar"})

	item := NewsItem{
		Title:     "Completely unrelated headline",
		Published: now.Add(-72 * time.Hour),
	}

	assert.Equal(t, 0.0, scorer.Score(item, now))

	item.Published = now.Add(-200 * time.Hour)
	assert.Equal(t, 0.0, scorer.Score(item, now))
}

func TestScore_MonotonicInRecency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer(nil, nil, []string{"chips"})

	newer := NewsItem{Title: "Chips shortage easing", Published: now.Add(-2 * time.Hour)}
	older := newer
	older.Published = now.Add(-50 * time.Hour)

	assert.GreaterOrEqual(t, scorer.Score(newer, now), scorer.Score(older, now))
}

func TestScore_MatchingIsCaseInsensitiveSubstring(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer(nil, nil, []string{"AI"})

	// Substring matching false-positives on "rain"; that is the
	// documented behavior, not a bug.
	item := NewsItem{Title: "Heavy rain expected", Published: now.Add(-100 * time.Hour)}
	assert.InDelta(t, 1.0, scorer.Score(item, now), 1e-9)
}

func TestRank_OrdersByScoreThenLink(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer(nil, nil, []string{"go"})

	published := now.Add(-100 * time.Hour) // recency bonus flat zero
	items := []NewsItem{
		{Title: "nothing here", Link: "https://a.example/z", Published: published},
		{Title: "go release", Link: "https://b.example/b", Published: published},
		{Title: "go modules", Link: "https://b.example/a", Published: published},
	}

	ranked := scorer.Rank(items, now)

	assert.Len(t, ranked, 3)
	assert.Equal(t, "https://b.example/a", ranked[0].Item.Link)
	assert.Equal(t, "https://b.example/b", ranked[1].Item.Link)
	assert.Equal(t, "https://a.example/z", ranked[2].Item.Link)
}

func TestRelevant_ThresholdAndCap(t *testing.T) {
	scored := []ScoredItem{
		{Item: NewsItem{Link: "a"}, Score: 2.0},
		{Item: NewsItem{Link: "b"}, Score: 1.0},
		{Item: NewsItem{Link: "c"}, Score: 0.75}, // at threshold, excluded
		{Item: NewsItem{Link: "d"}, Score: 0.1},
	}

	relevant := Relevant(scored, 0.75, 30)
	assert.Len(t, relevant, 2)

	capped := Relevant(scored, 0.75, 1)
	assert.Len(t, capped, 1)
	assert.Equal(t, "a", capped[0].Link)
}
