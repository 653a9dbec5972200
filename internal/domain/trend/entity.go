package trend

// TopicTrend is a burst-detection result for one token (unigram or
// bigram) from recent titles. Recomputed fresh on every run and never
// persisted.
type TopicTrend struct {
	Topic     string
	CountNow  int
	CountPrev int
	// Slope is the frequency delta between the recent window and the
	// window immediately before it (CountNow - CountPrev).
	Slope int
}
