package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"herald/internal/adapters/ai"
	"herald/internal/adapters/config"
	"herald/internal/adapters/errors/noop"
	"herald/internal/adapters/errors/sentry"
	"herald/internal/adapters/mail"
	adapterredis "herald/internal/adapters/redis"
	"herald/internal/adapters/rss"
	"herald/internal/adapters/scrape"
	"herald/internal/adapters/telegram"
	"herald/internal/domain/state"
	repofile "herald/internal/repository/file"
	reporedis "herald/internal/repository/redis"
	"herald/internal/services/digest"
	"herald/internal/services/pricewatch"
	"herald/internal/workers"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single digest cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	repo, closeRepo, err := initStateRepository(cfg)
	if err != nil {
		log.Fatalf("failed to init state backend: %v", err)
	}
	defer closeRepo()

	service, err := initDigestService(cfg, repo, log)
	if err != nil {
		log.Fatalf("failed to init digest service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once || cfg.Worker.RunOnce {
		if err := service.Run(ctx); err != nil {
			log.Errorf("digest run failed: %v", err)
			errorTracker.Flush(ctx)
			logger.Sync()
			os.Exit(1)
		}
		return
	}

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewDigestWorker(service, cfg.Worker.DigestInterval))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	waitForShutdown(ctx, cancel, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Sentry init failed, using no-op tracker: %v", err)
		return noop.New()
	}
	log.Info("Sentry error tracking enabled")
	return tracker
}

// initStateRepository picks the snapshot backend from configuration.
func initStateRepository(cfg *config.Config) (state.Repository, func(), error) {
	switch cfg.State.Backend {
	case "redis":
		client, err := adapterredis.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		return reporedis.NewStateRepository(client.Client(), cfg.State.RedisKey),
			func() { _ = client.Close() }, nil
	default:
		return repofile.NewStateRepository(cfg.State.Path), func() {}, nil
	}
}

// initDigestService wires the pipeline: feed ingestion, price watch,
// optional AI text generation and the configured delivery channels.
func initDigestService(cfg *config.Config, repo state.Repository, log *logger.Logger) (*digest.Service, error) {
	feeds := rss.NewFetcher(cfg.Feeds.FetchTimeout, cfg.Feeds.RequestsPerMinute)
	prices := pricewatch.NewService(scrape.NewFetcher(cfg.Watch.FetchTimeout, cfg.Feeds.RequestsPerMinute))

	var summarizer digest.Summarizer
	if cfg.AI.SummaryEnabled || cfg.AI.ChallengeEnabled {
		client, err := ai.NewClient(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			return nil, errors.Wrap(err, "init AI client")
		}
		summarizer = client
	}

	var deliverers []digest.Deliverer
	if cfg.Mail.Enabled {
		deliverers = append(deliverers,
			mail.NewClient(cfg.Mail.ResendAPIKey, cfg.Mail.From, cfg.Mail.To, cfg.Mail.Timeout))
	}
	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, errors.Wrap(err, "init telegram notifier")
		}
		deliverers = append(deliverers, notifier)
	}

	log.Infow("Digest pipeline wired",
		"feeds", len(cfg.Feeds.URLs),
		"watchlist", len(cfg.Watch.Entries()),
		"channels", len(deliverers),
		"ai_summary", cfg.AI.SummaryEnabled,
	)

	return digest.NewService(cfg, repo, feeds, prices, summarizer, deliverers), nil
}

// waitForShutdown blocks until an interrupt arrives, then stops the
// scheduler and flushes pending error reports.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, scheduler *workers.Scheduler, tracker errors.Tracker, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %s, shutting down", sig)
	case <-ctx.Done():
	}

	cancel()
	if err := scheduler.Stop(); err != nil {
		log.Warnf("Scheduler stop: %v", err)
	}
	tracker.Flush(context.Background())
}
