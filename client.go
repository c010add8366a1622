package qstash

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public QStash API endpoint.
const DefaultBaseURL = "https://qstash.upstash.io"

// Client is a QStash API client. Methods are grouped by resource: messages,
// queues, schedules, URL groups, signing keys, events, the dead letter queue,
// and chat completions.
type Client struct {
	transport *transport
}

// NewClient creates a client authenticated with the given QStash token.
//
// Example:
//
//	client, err := qstash.NewClient(os.Getenv("QSTASH_TOKEN"))
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("qstash: token is required")
	}
	cfg := clientConfig{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := strings.TrimRight(cfg.baseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("qstash: invalid base URL %q", cfg.baseURL)
	}

	return &Client{
		transport: newTransport(base, token, cfg),
	}, nil
}
