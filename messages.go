package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// PublishedMessage is the receipt for one accepted message.
type PublishedMessage struct {
	// MessageID identifies the message for later lookup and cancellation.
	MessageID string `json:"messageId"`

	// URL is the destination endpoint, set when publishing to a URL group.
	URL string `json:"url,omitempty"`

	// Deduplicated reports that the service dropped the message as a
	// duplicate instead of accepting it.
	Deduplicated bool `json:"deduplicated,omitempty"`
}

// messageResponses decodes a publish response, which is a single object for a
// URL destination and an array for a URL group.
type messageResponses []PublishedMessage

func (m *messageResponses) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]PublishedMessage)(m))
	}
	var one PublishedMessage
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*m = messageResponses{one}
	return nil
}

// Message is a message as the service holds it.
type Message struct {
	MessageID string `json:"messageId"`

	// TopicName is the URL group the message was published to, if any.
	TopicName string `json:"topicName,omitempty"`

	// URL is the destination endpoint.
	URL string `json:"url"`

	// Method is the HTTP method used for delivery.
	Method string `json:"method,omitempty"`

	// Header holds the headers forwarded with the delivery.
	Header map[string][]string `json:"header,omitempty"`

	// Body is the raw message payload.
	Body string `json:"body,omitempty"`

	// CreatedAt is the creation time in unix milliseconds.
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// BatchEntry is one message of a batch publish.
type BatchEntry struct {
	// Destination is a URL or URL group name. Required.
	Destination string

	// Queue routes the entry through the named queue when set.
	Queue string

	// Headers carries the same option and forward headers as a single
	// publish. Only the first value of each key is sent.
	Headers http.Header

	// Body is the raw payload.
	Body string
}

type batchEntryJSON struct {
	Destination string            `json:"destination"`
	Queue       string            `json:"queue,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
}

// MarshalJSON flattens Headers to single values, which is the shape the batch
// endpoint expects.
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	w := batchEntryJSON{
		Destination: e.Destination,
		Queue:       e.Queue,
		Body:        e.Body,
	}
	if len(e.Headers) > 0 {
		w.Headers = make(map[string]string, len(e.Headers))
		for k, vs := range e.Headers {
			if len(vs) > 0 {
				w.Headers[k] = vs[0]
			}
		}
	}
	return json.Marshal(w)
}

// BatchResult is the outcome of one batch entry.
type BatchResult struct {
	// Messages holds one receipt per destination. An entry addressed to a
	// URL group fans out to one receipt per endpoint.
	Messages []PublishedMessage
}

// UnmarshalJSON accepts both the single-receipt and fan-out shapes.
func (r *BatchResult) UnmarshalJSON(data []byte) error {
	var m messageResponses
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Messages = []PublishedMessage(m)
	return nil
}

// Publish sends a message to a destination URL or URL group. Publishing to a
// URL group returns one receipt per endpoint.
//
// Example:
//
//	msgs, err := client.Publish(ctx, "https://example.com/hook",
//	    []byte(`{"hello":"world"}`),
//	    qstash.WithDelay(time.Minute),
//	)
func (c *Client) Publish(ctx context.Context, destination string, body []byte, opts ...PublishOption) ([]PublishedMessage, error) {
	if destination == "" {
		return nil, fmt.Errorf("qstash: destination is required")
	}
	cfg := resolvePublishConfig(opts)

	var res messageResponses
	if err := c.transport.post(ctx, "/v2/publish/"+destination, cfg.header, body, &res); err != nil {
		return nil, err
	}
	return []PublishedMessage(res), nil
}

// PublishJSON marshals v and publishes it with Content-Type application/json.
func (c *Client) PublishJSON(ctx context.Context, destination string, v any, opts ...PublishOption) ([]PublishedMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("qstash: marshal body: %w", err)
	}
	return c.Publish(ctx, destination, data, opts...)
}

// Enqueue publishes a message through a queue, which delivers in order and
// bounded by the queue's parallelism.
func (c *Client) Enqueue(ctx context.Context, queue, destination string, body []byte, opts ...PublishOption) ([]PublishedMessage, error) {
	if queue == "" {
		return nil, fmt.Errorf("qstash: queue is required")
	}
	if destination == "" {
		return nil, fmt.Errorf("qstash: destination is required")
	}
	cfg := resolvePublishConfig(opts)

	var res messageResponses
	path := "/v2/enqueue/" + url.PathEscape(queue) + "/" + destination
	if err := c.transport.post(ctx, path, cfg.header, body, &res); err != nil {
		return nil, err
	}
	return []PublishedMessage(res), nil
}

// Batch publishes several messages in one request. Results are returned in
// entry order.
func (c *Client) Batch(ctx context.Context, entries []BatchEntry) ([]BatchResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("qstash: at least one batch entry is required")
	}
	for i, e := range entries {
		if e.Destination == "" {
			return nil, fmt.Errorf("qstash: batch entry %d: destination is required", i)
		}
	}

	var res []BatchResult
	if err := c.transport.postJSON(ctx, "/v2/batch", entries, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetMessage fetches an in-flight message. Messages are only retained while
// delivery is still in progress.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("qstash: message ID is required")
	}
	var msg Message
	if err := c.transport.get(ctx, "/v2/messages/"+url.PathEscape(messageID), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CancelMessage stops delivery of an in-flight message, including any
// outstanding retries.
func (c *Client) CancelMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("qstash: message ID is required")
	}
	return c.transport.del(ctx, "/v2/messages/"+url.PathEscape(messageID), nil, nil)
}

// CancelMessages stops delivery of several in-flight messages at once.
func (c *Client) CancelMessages(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return fmt.Errorf("qstash: at least one message ID is required")
	}
	body := struct {
		MessageIDs []string `json:"messageIds"`
	}{MessageIDs: messageIDs}
	return c.transport.del(ctx, "/v2/messages", body, nil)
}
