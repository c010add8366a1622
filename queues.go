package qstash

import (
	"context"
	"fmt"
	"net/url"
)

// Queue is a named queue that delivers messages in order with bounded
// parallelism.
type Queue struct {
	// CreatedAt is the creation time in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the last configuration change in unix milliseconds.
	UpdatedAt int64 `json:"updatedAt"`

	Name string `json:"name"`

	// Parallelism is the number of deliveries the queue runs concurrently.
	Parallelism int `json:"parallelism"`

	// Lag is the number of messages waiting in the queue.
	Lag int64 `json:"lag"`

	// Paused reports whether delivery is currently suspended.
	Paused bool `json:"paused,omitempty"`
}

// UpsertQueue creates the queue or updates its parallelism.
func (c *Client) UpsertQueue(ctx context.Context, name string, parallelism int) error {
	if name == "" {
		return fmt.Errorf("qstash: queue name is required")
	}
	if parallelism < 1 {
		return fmt.Errorf("qstash: parallelism must be at least 1")
	}
	body := struct {
		QueueName   string `json:"queueName"`
		Parallelism int    `json:"parallelism"`
	}{QueueName: name, Parallelism: parallelism}
	return c.transport.postJSON(ctx, "/v2/queues/", body, nil)
}

// GetQueue fetches a queue by name.
func (c *Client) GetQueue(ctx context.Context, name string) (*Queue, error) {
	if name == "" {
		return nil, fmt.Errorf("qstash: queue name is required")
	}
	var q Queue
	if err := c.transport.get(ctx, "/v2/queues/"+url.PathEscape(name)+"/", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQueues returns all queues.
func (c *Client) ListQueues(ctx context.Context) ([]Queue, error) {
	var queues []Queue
	if err := c.transport.get(ctx, "/v2/queues/", nil, &queues); err != nil {
		return nil, err
	}
	return queues, nil
}

// RemoveQueue deletes a queue and everything waiting in it.
func (c *Client) RemoveQueue(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("qstash: queue name is required")
	}
	return c.transport.del(ctx, "/v2/queues/"+url.PathEscape(name), nil, nil)
}

// PauseQueue suspends delivery from a queue. Messages keep accumulating while
// the queue is paused.
func (c *Client) PauseQueue(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("qstash: queue name is required")
	}
	return c.transport.post(ctx, "/v2/queues/"+url.PathEscape(name)+"/pause", nil, nil, nil)
}

// ResumeQueue resumes delivery from a paused queue.
func (c *Client) ResumeQueue(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("qstash: queue name is required")
	}
	return c.transport.post(ctx, "/v2/queues/"+url.PathEscape(name)+"/resume", nil, nil, nil)
}
