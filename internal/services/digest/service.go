package digest

import (
	"context"
	"sort"
	"strings"
	"time"

	"herald/internal/adapters/config"
	"herald/internal/adapters/rss"
	"herald/internal/domain/news"
	"herald/internal/domain/price"
	"herald/internal/domain/state"
	"herald/internal/domain/trend"
	"herald/internal/services/pricewatch"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

// Downstream relevance policy: items score above the threshold to be
// included, capped to the top 30.
const (
	relevanceThreshold = 0.75
	maxRelevantItems   = 30

	digestSubject = "Your Daily AI Digest"
)

// FeedFetcher pulls all configured feeds, one result per feed.
type FeedFetcher interface {
	FetchAll(ctx context.Context, feedURLs []string, maxConcurrency int) []rss.FetchResult
}

// PriceUpdater refreshes watched price series from their source pages.
type PriceUpdater interface {
	Update(ctx context.Context, snap state.Snapshot, watchlist []config.WatchEntry, now time.Time) []pricewatch.UpdateResult
}

// Summarizer generates optional AI text blocks for the digest.
type Summarizer interface {
	SummarizeWorldNews(ctx context.Context, userProfile string) (string, error)
	DailyChallenge(ctx context.Context, date string) (string, error)
}

// Deliverer is one outbound digest channel.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, subject, body string) error
}

// Service runs one full digest cycle: load state, ingest feeds, score
// and rank the retained cache, detect trends, refresh watched prices,
// optionally summarize, render, deliver and persist.
type Service struct {
	cfg        *config.Config
	repo       state.Repository
	feeds      FeedFetcher
	prices     PriceUpdater
	summarizer Summarizer
	deliverers []Deliverer
	scorer     *news.Scorer
	composer   *Composer
	log        *logger.Logger
}

// NewService wires the digest pipeline. summarizer may be nil when AI
// features are disabled.
func NewService(
	cfg *config.Config,
	repo state.Repository,
	feeds FeedFetcher,
	prices PriceUpdater,
	summarizer Summarizer,
	deliverers []Deliverer,
) *Service {
	return &Service{
		cfg:        cfg,
		repo:       repo,
		feeds:      feeds,
		prices:     prices,
		summarizer: summarizer,
		deliverers: deliverers,
		scorer:     news.NewScorer(cfg.Prefs.Topics, cfg.Prefs.Regions, cfg.Prefs.Keywords),
		composer:   NewComposer(cfg.App.Timezone),
		log:        logger.Get().With("component", "digest_service"),
	}
}

// Run executes one digest cycle anchored at the current time.
func (s *Service) Run(ctx context.Context) error {
	return s.RunAt(ctx, time.Now().UTC())
}

// RunAt executes one digest cycle anchored at now. State is saved even
// when delivery fails, so fetched news and prices are never re-fetched
// on the next run; the delivery error is still returned so the process
// can exit nonzero.
func (s *Service) RunAt(ctx context.Context, now time.Time) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load state")
	}

	snap = s.ingest(ctx, snap, now)

	scored := s.scorer.Rank(snap.CacheNews, now)
	relevant := news.Relevant(scored, relevanceThreshold, maxRelevantItems)
	trends := trend.Detect(snap.CacheNews, s.cfg.Trends.WindowDays, s.cfg.Trends.PrevDays, now)
	s.log.Infow("Cache ranked",
		"cached", len(snap.CacheNews),
		"relevant", len(relevant),
		"trends", len(trends),
	)

	var reports []PriceReport
	if watchlist := s.cfg.Watch.Entries(); len(watchlist) > 0 {
		for _, result := range s.prices.Update(ctx, snap, watchlist, now) {
			snap = state.UpsertPrice(snap, result.Item)
			reports = append(reports, PriceReport{
				Item:       result.Item,
				Evaluation: price.Evaluate(result.Item, now),
			})
		}
	}

	body := s.composer.Compose(Content{
		GeneratedAt: now,
		AISummary:   s.summarize(ctx),
		Relevant:    relevant,
		Trends:      trends,
		Prices:      reports,
		Challenge:   s.challenge(ctx, now),
	})

	deliveryErr := s.deliver(ctx, body)

	snap = snap.WithLastDigest(now)
	if err := s.repo.Save(ctx, snap); err != nil {
		return errors.Wrap(err, "save state")
	}

	return deliveryErr
}

// ingest fetches all feeds and merges the fresh items into the cached
// window. Fetch completion order cannot influence the merged state: the
// flattened batch is sorted into a total order before the merge.
func (s *Service) ingest(ctx context.Context, snap state.Snapshot, now time.Time) state.Snapshot {
	results := s.feeds.FetchAll(ctx, s.cfg.Feeds.URLs, s.cfg.Feeds.MaxConcurrency)

	var fresh []news.NewsItem
	var failed int
	for _, result := range results {
		if result.Err != nil {
			failed++
			continue
		}
		fresh = append(fresh, result.Items...)
	}
	sort.Slice(fresh, func(i, j int) bool {
		if !fresh[i].Published.Equal(fresh[j].Published) {
			return fresh[i].Published.After(fresh[j].Published)
		}
		return fresh[i].Link < fresh[j].Link
	})

	s.log.Infow("Feeds ingested",
		"feeds", len(results),
		"failed", failed,
		"fresh_items", len(fresh),
	)

	return state.AppendNews(snap, fresh, s.cfg.Prefs.KeepDays, now)
}

func (s *Service) summarize(ctx context.Context) string {
	if s.summarizer == nil || !s.cfg.AI.SummaryEnabled {
		return ""
	}

	profile := "Topics: " + strings.Join(s.cfg.Prefs.Topics, ", ") +
		"\nRegions: " + strings.Join(s.cfg.Prefs.Regions, ", ") +
		"\nKeywords: " + strings.Join(s.cfg.Prefs.Keywords, ", ")

	summary, err := s.summarizer.SummarizeWorldNews(ctx, profile)
	if err != nil {
		s.log.Warnw("AI summary skipped", "error", err)
		return ""
	}
	return summary
}

func (s *Service) challenge(ctx context.Context, now time.Time) string {
	if s.summarizer == nil || !s.cfg.AI.ChallengeEnabled {
		return ""
	}

	challenge, err := s.summarizer.DailyChallenge(ctx, now.Format("2006-01-02"))
	if err != nil {
		s.log.Warnw("Daily challenge skipped", "error", err)
		return ""
	}
	return challenge
}

// deliver pushes the rendered digest to every configured channel. Any
// channel failure makes the whole run report failure, but only after
// all channels were attempted.
func (s *Service) deliver(ctx context.Context, body string) error {
	multi := &errors.MultiError{}
	for _, deliverer := range s.deliverers {
		if err := deliverer.Deliver(ctx, digestSubject, body); err != nil {
			s.log.Errorw("Delivery failed", "channel", deliverer.Name(), "error", err)
			multi.Add(errors.Wrapf(err, "channel %s", deliverer.Name()))
			continue
		}
		s.log.Infow("Digest delivered", "channel", deliverer.Name())
	}
	if multi.HasErrors() {
		return errors.Wrap(errors.ErrDeliveryFailed, multi.Error())
	}
	return nil
}
