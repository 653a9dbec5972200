package news

import (
	"sort"
	"strings"
	"time"
)

// Scoring weights. Keyword hits dominate, topics and regions are softer
// signals, and a linear recency bonus decays to zero at 72 hours.
const (
	keywordWeight = 1.0
	topicWeight   = 0.6
	regionWeight  = 0.4
	recencyWeight = 0.5

	recencyHorizonHours = 72.0
)

// Scorer assigns interest scores to items based on user preference sets.
// Matching is plain case-insensitive substring search over title+summary.
// A term that happens to be a substring of an unrelated word will
// false-positive; that is accepted simplicity, not something to fix here.
type Scorer struct {
	topics   []string
	regions  []string
	keywords []string
}

// NewScorer builds a scorer from free-text preference sets.
// Terms are lower-cased; blank terms are dropped.
func NewScorer(topics, regions, keywords []string) *Scorer {
	return &Scorer{
		topics:   normalizeTerms(topics),
		regions:  normalizeTerms(regions),
		keywords: normalizeTerms(keywords),
	}
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Score returns the relevance score for an item at the given instant.
// The score is unbounded above (matching terms stack); it is a ranking
// signal, not a probability. Pure function, no side effects.
func (s *Scorer) Score(item NewsItem, now time.Time) float64 {
	text := strings.ToLower(item.Title + " " + item.Summary)

	var score float64
	for _, k := range s.keywords {
		if strings.Contains(text, k) {
			score += keywordWeight
		}
	}
	for _, t := range s.topics {
		if strings.Contains(text, t) {
			score += topicWeight
		}
	}
	for _, r := range s.regions {
		if strings.Contains(text, r) {
			score += regionWeight
		}
	}

	ageHours := now.Sub(item.Published).Hours()
	recency := 1 - ageHours/recencyHorizonHours
	if recency < 0 {
		recency = 0
	}
	score += recency * recencyWeight

	return score
}

// ScoredItem pairs an item with its relevance score.
type ScoredItem struct {
	Item  NewsItem
	Score float64
}

// Rank scores every item and returns them ordered by score descending.
// Ties are broken by link ascending so the order is a deterministic
// total order regardless of input ordering.
func (s *Scorer) Rank(items []NewsItem, now time.Time) []ScoredItem {
	scored := make([]ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, ScoredItem{Item: item, Score: s.Score(item, now)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item.Link < scored[j].Item.Link
	})
	return scored
}

// Relevant filters ranked items down to those above the threshold,
// capped to at most limit items. The input must already be ranked.
func Relevant(scored []ScoredItem, threshold float64, limit int) []NewsItem {
	out := make([]NewsItem, 0, limit)
	for _, s := range scored {
		if s.Score <= threshold {
			continue
		}
		out = append(out, s.Item)
		if len(out) == limit {
			break
		}
	}
	return out
}
