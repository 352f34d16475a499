package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	defaultPollMinutes    = 15
	defaultFeedTimeoutSec = 30
	defaultSteamTimeoutMs = 5000
	defaultSeenTTLDays    = 90
)

type rawCfg struct {
	// Broker and state
	RabbitMQURL  string      `long:"rabbitmq-url" env:"RABBITMQ_URL" description:"AMQP connection URL (required)"`
	RedisURL     string      `long:"redis-url" env:"REDIS_URL" description:"Redis connection URL (required)"`
	ExchangeName string      `long:"exchange" env:"EXCHANGE_NAME" default:"fitgirl" description:"Topic exchange for published messages"`
	ServiceName  string      `long:"service-name" env:"SERVICE_NAME" default:"rss-reader" description:"Name used for reset targeting and queue names"`
	SeenTTLDays  positiveInt `long:"seen-ttl-days" env:"SEEN_TTL_DAYS" default:"90" description:"Days the seen-set survives without new releases"`

	// Feed polling
	PollIntervalMinutes positiveInt `long:"poll-interval" env:"POLL_INTERVAL_MINUTES" default:"15" description:"Minutes between poll cycles"`
	FeedURL             string      `long:"feed-url" env:"RSS_FEED_URL" default:"https://fitgirl-repacks.site/feed/" description:"Feed to poll"`
	FeedCategory        string      `long:"feed-category" env:"RSS_FEED_CATEGORY" default:"Lossless Repack" description:"Category an entry must carry to be published"`
	FeedTimeoutSeconds  positiveInt `long:"feed-timeout" env:"RSS_FEED_TIMEOUT_SECONDS" default:"30" description:"Feed request timeout in seconds"`
	UserAgent           string      `long:"user-agent" env:"USER_AGENT" default:"fitgirl-rss-reader/1.0" description:"User agent string for HTTP requests"`

	// Catalog enrichment
	SteamBaseURL   string      `long:"steam-url" env:"STEAM_API_URL" default:"https://store.steampowered.com" description:"Steam store base URL"`
	SteamTimeoutMs positiveInt `long:"steam-timeout" env:"STEAM_LOOKUP_TIMEOUT_MS" default:"5000" description:"Per-request Steam timeout in milliseconds"`
	SteamRateLimit float64     `long:"steam-rate-limit" env:"STEAM_RATE_LIMIT" default:"2" description:"Steam requests per second, 0 disables pacing"`
	FailuresPath   string      `long:"failures-path" env:"ENRICHMENT_FAILURES_PATH" default:"/app/data/enrichment-failures.jsonl" description:"JSONL file for failed lookups"`

	// Local history and ops API
	JournalPath  string `long:"journal-path" env:"RELEASE_JOURNAL_PATH" description:"SQLite release journal, empty disables it"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Logging
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
	LokiHost string `long:"loki-host" env:"LOKI_HOST" description:"Log shipping host (optional)"`
}

// Load reads configuration from args and the environment. It returns nil
// without error when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.RabbitMQURL == "" {
		return nil, errors.New("RABBITMQ_URL is required")
	}
	if raw.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	cfg := &Cfg{
		RabbitMQURL:    raw.RabbitMQURL,
		RedisURL:       raw.RedisURL,
		ExchangeName:   raw.ExchangeName,
		ServiceName:    raw.ServiceName,
		SeenTTL:        days(cmp.Or(int(raw.SeenTTLDays), defaultSeenTTLDays)),
		PollInterval:   time.Duration(cmp.Or(int(raw.PollIntervalMinutes), defaultPollMinutes)) * time.Minute,
		FeedURL:        raw.FeedURL,
		FeedCategory:   raw.FeedCategory,
		FeedTimeout:    time.Duration(cmp.Or(int(raw.FeedTimeoutSeconds), defaultFeedTimeoutSec)) * time.Second,
		UserAgent:      raw.UserAgent,
		SteamBaseURL:   raw.SteamBaseURL,
		SteamTimeout:   time.Duration(cmp.Or(int(raw.SteamTimeoutMs), defaultSteamTimeoutMs)) * time.Millisecond,
		SteamRateLimit: max(raw.SteamRateLimit, 0),
		FailuresPath:   raw.FailuresPath,
		JournalPath:    raw.JournalPath,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		LogLevel:       raw.LogLevel,
		LokiHost:       raw.LokiHost,
		Version:        GetVersion(),
	}

	return cfg, nil
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
