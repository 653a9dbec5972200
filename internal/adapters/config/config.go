package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"herald/pkg/errors"
)

type Config struct {
	App           AppConfig
	State         StateConfig
	Redis         RedisConfig
	Feeds         FeedsConfig
	Prefs         PrefsConfig
	Trends        TrendsConfig
	Watch         WatchConfig
	AI            AIConfig
	Mail          MailConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
	Worker        WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"herald"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone string `envconfig:"TIMEZONE" default:"America/New_York"`
}

type StateConfig struct {
	// Backend selects where the snapshot blob lives: "file" or "redis".
	Backend  string `envconfig:"STATE_BACKEND" default:"file"`
	Path     string `envconfig:"STATE_PATH" default:"/data/state.json"`
	RedisKey string `envconfig:"STATE_REDIS_KEY" default:"herald:state"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type FeedsConfig struct {
	URLs              []string      `envconfig:"RSS_FEEDS"`
	FetchTimeout      time.Duration `envconfig:"FEED_FETCH_TIMEOUT" default:"20s"`
	RequestsPerMinute int           `envconfig:"FEED_REQUESTS_PER_MINUTE" default:"30"`
	MaxConcurrency    int           `envconfig:"FEED_MAX_CONCURRENCY" default:"4"`
}

type PrefsConfig struct {
	Topics   []string `envconfig:"PREF_TOPICS"`
	Regions  []string `envconfig:"PREF_REGIONS"`
	Keywords []string `envconfig:"PREF_KEYWORDS"`
	KeepDays int      `envconfig:"NEWS_KEEP_DAYS" default:"10"`
}

type TrendsConfig struct {
	WindowDays int `envconfig:"TREND_WINDOW_DAYS" default:"3"`
	PrevDays   int `envconfig:"TREND_PREV_DAYS" default:"3"`
}

type WatchConfig struct {
	// Raw watchlist: "Name|URL|Currency" entries separated by ';'.
	Raw          string        `envconfig:"PRICE_WATCH"`
	FetchTimeout time.Duration `envconfig:"PRICE_FETCH_TIMEOUT" default:"20s"`
}

// WatchEntry is one watched product parsed from PRICE_WATCH.
type WatchEntry struct {
	Name     string
	URL      string
	Currency string
}

// Entries parses the raw watchlist string. Entries without a URL are
// dropped; missing name and currency fall back to "Item" and "USD".
func (c WatchConfig) Entries() []WatchEntry {
	var out []WatchEntry
	for _, entry := range strings.Split(c.Raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		w := WatchEntry{Name: "Item", Currency: "USD"}
		if len(parts) > 0 && parts[0] != "" {
			w.Name = parts[0]
		}
		if len(parts) > 1 {
			w.URL = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			w.Currency = parts[2]
		}
		if w.URL == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

type AIConfig struct {
	SummaryEnabled   bool          `envconfig:"ENABLE_AI_SUMMARY" default:"false"`
	ChallengeEnabled bool          `envconfig:"ENABLE_DAILY_CHALLENGE" default:"false"`
	OpenAIKey        string        `envconfig:"OPENAI_API_KEY"`
	Model            string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	Timeout          time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
}

type MailConfig struct {
	Enabled      bool          `envconfig:"MAIL_ENABLED" default:"true"`
	ResendAPIKey string        `envconfig:"RESEND_API_KEY"`
	To           string        `envconfig:"MAIL_TO"`
	From         string        `envconfig:"MAIL_FROM" default:"digest@resend.dev"`
	Timeout      time.Duration `envconfig:"MAIL_TIMEOUT" default:"15s"`
}

type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	DigestInterval time.Duration `envconfig:"DIGEST_INTERVAL" default:"24h"`
	RunOnce        bool          `envconfig:"RUN_ONCE" default:"false"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
// Components never read the environment themselves; this struct is
// built once at process entry and passed down.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	cfg.Feeds.URLs = trimList(cfg.Feeds.URLs)
	cfg.Prefs.Topics = trimList(cfg.Prefs.Topics)
	cfg.Prefs.Regions = trimList(cfg.Prefs.Regions)
	cfg.Prefs.Keywords = trimList(cfg.Prefs.Keywords)

	return &cfg, nil
}

// Validate checks the parts of the configuration whose absence must be
// a fatal startup error rather than a silently skipped step.
func (c *Config) Validate() error {
	if !c.Mail.Enabled && !c.Telegram.Enabled {
		return errors.New("no delivery channel configured: enable MAIL_ENABLED or TELEGRAM_ENABLED")
	}
	if c.Mail.Enabled {
		if c.Mail.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required when mail delivery is enabled")
		}
		if c.Mail.To == "" {
			return errors.New("MAIL_TO is required when mail delivery is enabled")
		}
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required when telegram delivery is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return errors.New("TELEGRAM_CHAT_ID is required when telegram delivery is enabled")
		}
	}
	if (c.AI.SummaryEnabled || c.AI.ChallengeEnabled) && c.AI.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY is required when AI features are enabled")
	}
	switch c.State.Backend {
	case "file":
		if c.State.Path == "" {
			return errors.New("STATE_PATH is required for the file state backend")
		}
	case "redis":
		if c.Redis.Host == "" {
			return errors.New("REDIS_HOST is required for the redis state backend")
		}
	default:
		return errors.Newf("unknown state backend %q", c.State.Backend)
	}
	return nil
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
