package qstash

import (
	"net/http"
	"strconv"
	"time"
)

// Request headers understood by the QStash API. Values set through publish
// options travel as headers, not body fields.
const (
	headerDelay             = "Upstash-Delay"
	headerNotBefore         = "Upstash-Not-Before"
	headerRetries           = "Upstash-Retries"
	headerCallback          = "Upstash-Callback"
	headerFailureCallback   = "Upstash-Failure-Callback"
	headerMethod            = "Upstash-Method"
	headerDeduplicationID   = "Upstash-Deduplication-Id"
	headerContentBasedDedup = "Upstash-Content-Based-Deduplication"
	headerTimeout           = "Upstash-Timeout"
	headerCron              = "Upstash-Cron"

	// ForwardHeaderPrefix marks headers QStash strips and forwards verbatim
	// to the destination endpoint.
	ForwardHeaderPrefix = "Upstash-Forward-"
)

// --- Client options ---

// clientConfig holds the resolved configuration for a Client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

// ClientOption configures the QStash client.
type ClientOption func(*clientConfig)

// WithBaseURL points the client at a different API endpoint, for example a
// test server. Default: DefaultBaseURL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom net/http.Client for all requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header on all requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithHeader sets a custom header on all requests.
func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// --- Publish options ---

// publishConfig collects the option headers of a publish, enqueue, or
// schedule request.
type publishConfig struct {
	header http.Header
}

// PublishOption configures a single publish, enqueue, or schedule request.
type PublishOption func(*publishConfig)

func resolvePublishConfig(opts []PublishOption) publishConfig {
	cfg := publishConfig{header: make(http.Header)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDelay delays delivery by the given duration. The value is rounded down
// to whole seconds.
func WithDelay(d time.Duration) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerDelay, strconv.FormatInt(int64(d/time.Second), 10)+"s")
	}
}

// WithNotBefore delays delivery until the given absolute time.
func WithNotBefore(t time.Time) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerNotBefore, strconv.FormatInt(t.Unix(), 10))
	}
}

// WithRetries caps how often QStash retries a failed delivery.
func WithRetries(n int) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerRetries, strconv.Itoa(n))
	}
}

// WithCallback registers a URL QStash calls with the delivery response.
func WithCallback(url string) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerCallback, url)
	}
}

// WithFailureCallback registers a URL QStash calls once all retries are
// exhausted.
func WithFailureCallback(url string) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerFailureCallback, url)
	}
}

// WithMethod overrides the HTTP method used for delivery. Default: POST.
func WithMethod(method string) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerMethod, method)
	}
}

// WithDeduplicationID deduplicates the message against earlier publishes
// carrying the same ID.
func WithDeduplicationID(id string) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerDeduplicationID, id)
	}
}

// WithContentBasedDeduplication derives the deduplication ID from the
// destination, body, and headers instead of an explicit ID.
func WithContentBasedDeduplication() PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerContentBasedDedup, "true")
	}
}

// WithTimeout caps how long QStash waits for the destination to respond.
// The value is rounded down to whole seconds.
func WithTimeout(d time.Duration) PublishOption {
	return func(c *publishConfig) {
		c.header.Set(headerTimeout, strconv.FormatInt(int64(d/time.Second), 10)+"s")
	}
}

// WithContentType sets the Content-Type of the published body.
// Default: application/json.
func WithContentType(contentType string) PublishOption {
	return func(c *publishConfig) {
		c.header.Set("Content-Type", contentType)
	}
}

// WithForwardHeader adds a header that QStash forwards to the destination.
// Repeated keys accumulate.
func WithForwardHeader(key, value string) PublishOption {
	return func(c *publishConfig) {
		c.header.Add(ForwardHeaderPrefix+key, value)
	}
}
