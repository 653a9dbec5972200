package trend

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"herald/internal/domain/news"
)

// Candidate and ranking limits. Tokens must appear at least minCount
// times in the recent window and be longer than three characters to
// qualify; the 50 most frequent candidates are ranked by slope and the
// top 12 reported.
const (
	minCount       = 3
	minTokenLength = 4
	maxTokenWords  = 3
	candidateLimit = 50
	resultLimit    = 12
)

var (
	nonTokenRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	pureNumericRe = regexp.MustCompile(`^[0-9]+$`)
	yearRe        = regexp.MustCompile(`(19|20)[0-9][0-9]`)
)

// lowContentPrefixes are leading words that make a phrase meaningless
// as a headline topic.
var lowContentPrefixes = []string{"in ", "of ", "the "}

// Detect compares token frequencies in two adjacent time buckets ending
// at now: a recent bucket covering the last windowDays and a preceding
// bucket covering the prevDays before that (no overlap, no gap). It is
// a cheap, explainable burst detector over title tokens; no NLP, just
// frequency deltas.
//
// Ties in both ranking steps are broken by count and then token string
// so the result is deterministic for a given input set.
func Detect(items []news.NewsItem, windowDays, prevDays int, now time.Time) []TopicTrend {
	nowCut := now.AddDate(0, 0, -windowDays)
	prevCut := now.AddDate(0, 0, -(windowDays + prevDays))

	nowCounts := make(map[string]int)
	prevCounts := make(map[string]int)
	for _, item := range items {
		switch {
		case !item.Published.Before(nowCut):
			countTokens(nowCounts, item.Title)
		case !item.Published.Before(prevCut):
			countTokens(prevCounts, item.Title)
		}
	}

	candidates := make([]TopicTrend, 0, len(nowCounts))
	for token, count := range nowCounts {
		if !isCandidate(token, count) {
			continue
		}
		candidates = append(candidates, TopicTrend{
			Topic:     token,
			CountNow:  count,
			CountPrev: prevCounts[token],
			Slope:     count - prevCounts[token],
		})
	}

	// First cut: most frequent recent tokens.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CountNow != candidates[j].CountNow {
			return candidates[i].CountNow > candidates[j].CountNow
		}
		return candidates[i].Topic < candidates[j].Topic
	})
	if len(candidates) > candidateLimit {
		candidates = candidates[:candidateLimit]
	}

	// Second cut: biggest frequency delta wins.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Slope != candidates[j].Slope {
			return candidates[i].Slope > candidates[j].Slope
		}
		if candidates[i].CountNow != candidates[j].CountNow {
			return candidates[i].CountNow > candidates[j].CountNow
		}
		return candidates[i].Topic < candidates[j].Topic
	})
	if len(candidates) > resultLimit {
		candidates = candidates[:resultLimit]
	}
	return candidates
}

// Tokenize folds a title to lower case, strips everything outside
// [a-z0-9\s-], and emits every unigram plus every adjacent-word bigram.
// A 5-word title yields 5 unigrams and 4 bigrams, all counted
// independently.
func Tokenize(title string) []string {
	clean := nonTokenRe.ReplaceAllString(strings.ToLower(title), " ")
	words := strings.Fields(clean)

	tokens := make([]string, 0, 2*len(words))
	for i, w := range words {
		tokens = append(tokens, w)
		if i+1 < len(words) {
			tokens = append(tokens, w+" "+words[i+1])
		}
	}
	return tokens
}

func countTokens(counts map[string]int, title string) {
	for _, tok := range Tokenize(title) {
		counts[tok]++
	}
}

func isCandidate(token string, count int) bool {
	if count < minCount || len(token) < minTokenLength {
		return false
	}
	if isStopWord(token) {
		return false
	}
	if pureNumericRe.MatchString(token) {
		return false
	}
	// Year-bearing phrases ("budget 2025") dominate headlines without
	// saying anything about a developing story.
	if yearRe.MatchString(token) {
		return false
	}
	for _, prefix := range lowContentPrefixes {
		if strings.HasPrefix(token, prefix) {
			return false
		}
	}
	if strings.Count(token, " ") >= maxTokenWords {
		return false
	}
	return true
}
