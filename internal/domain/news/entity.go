package news

import "time"

// NewsItem represents a single article pulled from a feed.
// The link doubles as the identity key: two items with the same
// link are the same article for dedup purposes.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
	Summary   string    `json:"summary,omitempty"`
}

// Age returns how old the item is relative to now.
func (n NewsItem) Age(now time.Time) time.Duration {
	return now.Sub(n.Published)
}
