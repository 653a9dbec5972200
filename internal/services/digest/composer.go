package digest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"herald/internal/domain/news"
	"herald/internal/domain/price"
	"herald/internal/domain/trend"
)

const composerVersion = "v0.2"

// maxShownItems bounds the article list in the rendered digest; the
// full relevant set still feeds the metadata footer and citations.
const (
	maxShownItems    = 8
	maxCitationLinks = 15
)

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// PriceReport pairs a refreshed price item with its evaluation for
// rendering.
type PriceReport struct {
	Item       price.PriceItem
	Evaluation price.Evaluation
}

// Content is everything that goes into one rendered digest.
type Content struct {
	GeneratedAt time.Time
	AISummary   string
	Relevant    []news.NewsItem
	Trends      []trend.TopicTrend
	Prices      []PriceReport
	Challenge   string
}

// Composer renders digest content to markdown.
type Composer struct {
	location *time.Location
}

// NewComposer creates a composer rendering timestamps in the given
// timezone. An unknown timezone name falls back to UTC.
func NewComposer(timezone string) *Composer {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Composer{location: loc}
}

// Compose renders the digest document.
func (c *Composer) Compose(content Content) string {
	var sb strings.Builder

	local := content.GeneratedAt.In(c.location)
	fmt.Fprintf(&sb, "# Daily Digest — %s\n\n", local.Format("Monday, January 2, 2006 at 3:04 PM MST"))

	if content.AISummary != "" {
		sb.WriteString("## AI Summary\n")
		sb.WriteString(linkCitations(content.AISummary, content.Relevant))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Worldwide but relevant to you\n")
	for i, item := range content.Relevant {
		if i == maxShownItems {
			break
		}
		fmt.Fprintf(&sb, "- [%s](%s) — %s (%s)\n",
			item.Title, item.Link, item.Source, humanize.Time(item.Published))
	}

	if len(content.Trends) > 0 {
		sb.WriteString("\n## Developing stories\n")
		for _, t := range content.Trends {
			fmt.Fprintf(&sb, "- **%s** — %d mentions (%+d vs prior window)\n",
				t.Topic, t.CountNow, t.Slope)
		}
	}

	if len(content.Prices) > 0 {
		sb.WriteString("\n## Price trends (watchlist)\n")
		for _, report := range content.Prices {
			fmt.Fprintf(&sb, "- **%s** — %s. %s. Latest: %s\n",
				report.Item.Name,
				report.Evaluation.Decision,
				report.Evaluation.Rationale,
				latestLabel(report.Item),
			)
		}
	}

	if content.Challenge != "" {
		sb.WriteString("\n---\n\n")
		sb.WriteString(content.Challenge)
		sb.WriteString("\n")
	}

	sb.WriteString("\n```json\n")
	sb.WriteString(c.footer(content))
	sb.WriteString("\n```\n")

	return sb.String()
}

// linkCitations turns bare [n] citation markers in the AI summary into
// markdown links pointing at the n-th relevant article. Markers already
// followed by a link target are left alone.
func linkCitations(summary string, relevant []news.NewsItem) string {
	if len(relevant) == 0 {
		return summary
	}

	var sb strings.Builder
	last := 0
	for _, loc := range citationRe.FindAllStringSubmatchIndex(summary, -1) {
		start, end := loc[0], loc[1]
		if end < len(summary) && summary[end] == '(' {
			continue
		}

		n, err := strconv.Atoi(summary[loc[2]:loc[3]])
		if err != nil || n < 1 || n > len(relevant) || n > maxCitationLinks {
			continue
		}

		sb.WriteString(summary[last:start])
		fmt.Fprintf(&sb, "[[%d]](%s)", n, relevant[n-1].Link)
		last = end
	}
	sb.WriteString(summary[last:])
	return sb.String()
}

func latestLabel(item price.PriceItem) string {
	latest, ok := item.Latest()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%s %s on %s", latest.Price, item.Currency, latest.Ts.Format("2006-01-02"))
}

// footer emits machine-readable run metadata at the end of the digest.
func (c *Composer) footer(content Content) string {
	type priceMeta struct {
		Name string  `json:"name"`
		URL  string  `json:"url"`
		Last *string `json:"last"`
	}

	prices := make([]priceMeta, 0, len(content.Prices))
	for _, report := range content.Prices {
		meta := priceMeta{Name: report.Item.Name, URL: report.Item.URL}
		if latest, ok := report.Item.Latest(); ok {
			s := latest.Price.String()
			meta.Last = &s
		}
		prices = append(prices, meta)
	}

	footer := struct {
		Version         string      `json:"version"`
		DigestID        string      `json:"digest_id"`
		ItemsConsidered int         `json:"items_considered"`
		Trends          int         `json:"trends"`
		PriceItems      []priceMeta `json:"price_items"`
	}{
		Version:         composerVersion,
		DigestID:        uuid.New().String(),
		ItemsConsidered: len(content.Relevant),
		Trends:          len(content.Trends),
		PriceItems:      prices,
	}

	data, err := json.Marshal(footer)
	if err != nil {
		return "{}"
	}
	return string(data)
}
