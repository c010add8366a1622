package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type QStash struct {
	Token             string        // API token for the QStash REST API
	BaseURL           string        // e.g. https://qstash.upstash.io
	CurrentSigningKey string        // Current key for delivery signature verification
	NextSigningKey    string        // Next key, accepted during rotation
	Tolerance         time.Duration // Allowed clock skew for signature claims
}

type DB struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

type NSQ struct {
	NsqdTCPAddr    string // e.g. localhost:4150
	LookupHTTPAddr string // e.g. http://localhost:4161
	InboundTopic   string // NSQ topic for verified inbound deliveries
	OutboundTopic  string // NSQ topic consumed for outbound publishes
	Channel        string // NSQ channel name for relay consumers
}

type Relay struct {
	ListenAddr      string          // HTTP listen address for /relay, /healthz, /metrics
	MaxAttempts     int             // Maximum outbound publish attempts
	BackoffSchedule []time.Duration // Requeue backoff durations
	JitterPercent   float64         // Backoff jitter percentage (0.0-1.0)
	ReadTimeout     time.Duration   // HTTP read timeout
	WriteTimeout    time.Duration   // HTTP write timeout
	IdleTimeout     time.Duration   // HTTP idle timeout
}

type Archiver struct {
	PollInterval time.Duration // How often the event log is polled
	BatchSize    int           // Events requested per page
	IncludeDLQ   bool          // Whether dead-letter messages are archived too
	HTTPPort     string        // Archiver HTTP metrics port
}

type Config struct {
	AppName  string
	QStash   QStash
	DB       DB
	NSQ      NSQ
	Relay    Relay
	Archiver Archiver
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseBackoffSchedule(schedule string) []time.Duration {
	if schedule == "" {
		return []time.Duration{1 * time.Second, 4 * time.Second, 16 * time.Second, 1 * time.Minute, 4 * time.Minute, 10 * time.Minute}
	}

	parts := strings.Split(schedule, ",")
	durations := make([]time.Duration, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if d, err := time.ParseDuration(part); err == nil {
			durations = append(durations, d)
		}
	}

	if len(durations) == 0 {
		// Fallback to default if parsing failed
		return []time.Duration{1 * time.Second, 4 * time.Second, 16 * time.Second, 1 * time.Minute, 4 * time.Minute, 10 * time.Minute}
	}

	return durations
}

func FromEnv() Config {
	return Config{
		AppName: getenv("APP_NAME", "qstash"),
		QStash: QStash{
			Token:             getenv("QSTASH_TOKEN", ""),
			BaseURL:           getenv("QSTASH_URL", "https://qstash.upstash.io"),
			CurrentSigningKey: getenv("QSTASH_CURRENT_SIGNING_KEY", ""),
			NextSigningKey:    getenv("QSTASH_NEXT_SIGNING_KEY", ""),
			Tolerance:         getenvDuration("QSTASH_SIGNING_TOLERANCE", 5*time.Minute),
		},
		DB: DB{
			User: getenv("DB_USER", "postgres"),
			Pass: getenv("DB_PASS", "postgres"),
			Host: getenv("DB_HOST", "localhost"),
			Port: getenv("DB_PORT", "5432"),
			Name: getenv("DB_NAME", "qstash_events"),
		},
		NSQ: NSQ{
			NsqdTCPAddr:    getenv("NSQD_TCP_ADDR", "localhost:4150"),
			LookupHTTPAddr: getenv("NSQ_LOOKUP_HTTP_ADDR", "http://localhost:4161"),
			InboundTopic:   getenv("NSQ_INBOUND_TOPIC", "qstash_deliveries"),
			OutboundTopic:  getenv("NSQ_OUTBOUND_TOPIC", "qstash_publishes"),
			Channel:        getenv("NSQ_RELAY_CHANNEL", "relay"),
		},
		Relay: Relay{
			ListenAddr:      getenv("RELAY_LISTEN_ADDR", ":8082"),
			MaxAttempts:     getenvInt("RELAY_MAX_ATTEMPTS", 6),
			BackoffSchedule: parseBackoffSchedule(getenv("RELAY_BACKOFF_SCHEDULE", "")),
			JitterPercent:   getenvFloat("RELAY_BACKOFF_JITTER_PCT", 0.25),
			ReadTimeout:     getenvDuration("RELAY_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getenvDuration("RELAY_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getenvDuration("RELAY_IDLE_TIMEOUT", 60*time.Second),
		},
		Archiver: Archiver{
			PollInterval: getenvDuration("ARCHIVER_POLL_INTERVAL", 30*time.Second),
			BatchSize:    getenvInt("ARCHIVER_BATCH_SIZE", 100),
			IncludeDLQ:   getenvBool("ARCHIVER_INCLUDE_DLQ", false),
			HTTPPort:     ":" + getenv("ARCHIVER_HTTP_PORT", "8084"),
		},
	}
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Pass, c.DB.Host, c.DB.Port, c.DB.Name)
}
