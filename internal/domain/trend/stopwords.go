package trend

// stopWords are common English words excluded from trend candidates.
// Includes news-specific filler ("says", "year", "new") on top of the
// usual function words.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {},
	"as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"can": {}, "this": {}, "that": {}, "these": {}, "those": {}, "it": {},
	"its": {}, "they": {}, "them": {}, "their": {}, "what": {}, "which": {},
	"who": {}, "when": {}, "where": {}, "why": {}, "how": {}, "all": {}, "each": {},
	"every": {}, "both": {}, "few": {}, "more": {}, "most": {}, "some": {},
	"such": {}, "no": {}, "nor": {}, "not": {}, "only": {}, "own": {}, "same": {},
	"so": {}, "than": {}, "too": {}, "very": {}, "just": {}, "after": {},
	"before": {}, "over": {}, "under": {}, "again": {}, "further": {}, "then": {},
	"once": {}, "here": {}, "there": {}, "about": {}, "into": {}, "through": {},
	"during": {}, "out": {}, "up": {}, "down": {}, "off": {}, "above": {},
	"below": {}, "says": {}, "said": {}, "year": {}, "years": {}, "day": {},
	"days": {}, "week": {}, "weeks": {}, "month": {}, "months": {}, "new": {},
}

func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
