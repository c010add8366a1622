package qstash

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// DLQMessage is a message whose delivery retries are exhausted, together with
// the last delivery response.
type DLQMessage struct {
	Message

	// DLQID identifies the entry inside the dead letter queue.
	DLQID string `json:"dlqId"`

	// ResponseStatus is the HTTP status of the last delivery attempt.
	ResponseStatus int `json:"responseStatus,omitempty"`

	// ResponseHeader holds the headers of the last delivery response.
	ResponseHeader map[string][]string `json:"responseHeader,omitempty"`

	// ResponseBody is the body of the last delivery response.
	ResponseBody string `json:"responseBody,omitempty"`
}

// ListDLQOptions filters a dead letter listing. The zero value lists the
// oldest entries.
type ListDLQOptions struct {
	// Cursor resumes a paginated listing.
	Cursor string

	MessageID  string
	URL        string
	TopicName  string
	ScheduleID string
	QueueName  string

	// ResponseStatus filters by the status of the last delivery attempt.
	ResponseStatus int

	// FromDate and ToDate bound the listing in unix milliseconds.
	FromDate int64
	ToDate   int64

	// Count caps the page size. The service enforces a maximum of 100.
	Count int

	// Order is OrderEarliestFirst or OrderLatestFirst.
	Order string
}

func (o *ListDLQOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.Cursor != "" {
		v.Set("cursor", o.Cursor)
	}
	if o.MessageID != "" {
		v.Set("messageId", o.MessageID)
	}
	if o.URL != "" {
		v.Set("url", o.URL)
	}
	if o.TopicName != "" {
		v.Set("topicName", o.TopicName)
	}
	if o.ScheduleID != "" {
		v.Set("scheduleId", o.ScheduleID)
	}
	if o.QueueName != "" {
		v.Set("queueName", o.QueueName)
	}
	if o.ResponseStatus != 0 {
		v.Set("responseStatus", strconv.Itoa(o.ResponseStatus))
	}
	if o.FromDate != 0 {
		v.Set("fromDate", strconv.FormatInt(o.FromDate, 10))
	}
	if o.ToDate != 0 {
		v.Set("toDate", strconv.FormatInt(o.ToDate, 10))
	}
	if o.Count != 0 {
		v.Set("count", strconv.Itoa(o.Count))
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	return v
}

// DLQPage is one page of the dead letter queue.
type DLQPage struct {
	// Cursor points at the next page; empty on the last page.
	Cursor string `json:"cursor,omitempty"`

	Messages []DLQMessage `json:"messages"`
}

// ListDLQ returns a page of the dead letter queue. Pass the returned cursor
// in the next call to continue; a nil opts lists the oldest entries.
func (c *Client) ListDLQ(ctx context.Context, opts *ListDLQOptions) (*DLQPage, error) {
	var page DLQPage
	if err := c.transport.get(ctx, "/v2/dlq", opts.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDLQMessage fetches one dead letter entry.
func (c *Client) GetDLQMessage(ctx context.Context, dlqID string) (*DLQMessage, error) {
	if dlqID == "" {
		return nil, fmt.Errorf("qstash: DLQ ID is required")
	}
	var msg DLQMessage
	if err := c.transport.get(ctx, "/v2/dlq/"+url.PathEscape(dlqID), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteDLQMessage removes one dead letter entry.
func (c *Client) DeleteDLQMessage(ctx context.Context, dlqID string) error {
	if dlqID == "" {
		return fmt.Errorf("qstash: DLQ ID is required")
	}
	return c.transport.del(ctx, "/v2/dlq/"+url.PathEscape(dlqID), nil, nil)
}

// DeleteDLQMessages removes several dead letter entries and reports how many
// were deleted. IDs that no longer exist are skipped, not errors.
func (c *Client) DeleteDLQMessages(ctx context.Context, dlqIDs []string) (int, error) {
	if len(dlqIDs) == 0 {
		return 0, fmt.Errorf("qstash: at least one DLQ ID is required")
	}
	body := struct {
		DLQIDs []string `json:"dlqIds"`
	}{DLQIDs: dlqIDs}
	var res struct {
		Deleted int `json:"deleted"`
	}
	if err := c.transport.del(ctx, "/v2/dlq", body, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}
