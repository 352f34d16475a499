package cfg

import (
	"strconv"
	"strings"
	"time"
)

type Cfg struct {
	// Broker and state
	RabbitMQURL  string
	RedisURL     string
	ExchangeName string
	ServiceName  string
	SeenTTL      time.Duration

	// Feed polling
	PollInterval time.Duration
	FeedURL      string
	FeedCategory string
	FeedTimeout  time.Duration
	UserAgent    string

	// Catalog enrichment
	SteamBaseURL   string
	SteamTimeout   time.Duration
	SteamRateLimit float64
	FailuresPath   string

	// Local history and ops API
	JournalPath  string
	Port         string
	APIAccessKey string

	// Logging
	LogLevel string
	LokiHost string

	Version string
}

// positiveInt accepts any input; values that are not positive integers
// become zero so the caller can substitute the default.
type positiveInt int

func (p *positiveInt) UnmarshalFlag(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		*p = 0
		return nil
	}
	*p = positiveInt(n)
	return nil
}
