package qstash

import (
	"context"
	"net/url"
	"strconv"
)

// EventState is one stage of a message's delivery lifecycle.
type EventState string

const (
	// EventStateCreated marks acceptance of a new message.
	EventStateCreated EventState = "CREATED"
	// EventStateActive marks a delivery attempt in progress.
	EventStateActive EventState = "ACTIVE"
	// EventStateRetry marks a failed attempt waiting to be retried.
	EventStateRetry EventState = "RETRY"
	// EventStateError marks a delivery attempt that errored.
	EventStateError EventState = "ERROR"
	// EventStateDelivered marks successful delivery.
	EventStateDelivered EventState = "DELIVERED"
	// EventStateFailed marks a message whose retries are exhausted. Failed
	// messages move to the dead letter queue.
	EventStateFailed EventState = "FAILED"
	// EventStateCancelRequested marks a pending cancellation.
	EventStateCancelRequested EventState = "CANCEL_REQUESTED"
	// EventStateCancelled marks a cancelled message.
	EventStateCancelled EventState = "CANCELLED"
)

// Sort orders for event and dead letter listings.
const (
	OrderEarliestFirst = "earliestFirst"
	OrderLatestFirst   = "latestFirst"
)

// Event is one state transition of a message.
type Event struct {
	// Time is when the transition happened, in unix milliseconds.
	Time int64 `json:"time"`

	MessageID string     `json:"messageId"`
	State     EventState `json:"state"`

	// URL is the destination endpoint.
	URL string `json:"url"`

	// Header holds the headers forwarded with the delivery.
	Header map[string][]string `json:"header,omitempty"`

	// Body is the message payload. It travels base64 encoded on the wire.
	Body []byte `json:"body,omitempty"`

	TopicName    string `json:"topicName,omitempty"`
	EndpointName string `json:"endpointName,omitempty"`
	ScheduleID   string `json:"scheduleId,omitempty"`
	QueueName    string `json:"queueName,omitempty"`

	// Error describes the failure for ERROR and FAILED states.
	Error string `json:"error,omitempty"`

	Method          string `json:"method,omitempty"`
	Callback        string `json:"callback,omitempty"`
	FailureCallback string `json:"failureCallback,omitempty"`
	MaxRetries      int    `json:"maxRetries,omitempty"`

	// NotBefore is the earliest delivery time in unix milliseconds.
	NotBefore int64 `json:"notBefore,omitempty"`
}

// ListEventsOptions filters an event listing. The zero value lists the most
// recent events.
type ListEventsOptions struct {
	// Cursor resumes a paginated listing.
	Cursor string

	MessageID  string
	State      EventState
	URL        string
	TopicName  string
	ScheduleID string
	QueueName  string

	// FromDate and ToDate bound the listing in unix milliseconds.
	FromDate int64
	ToDate   int64

	// Count caps the page size. The service enforces a maximum of 1000.
	Count int

	// Order is OrderEarliestFirst or OrderLatestFirst.
	Order string
}

func (o *ListEventsOptions) values() url.Values {
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
	if o.State != "" {
		v.Set("state", string(o.State))
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

// EventPage is one page of the event log.
type EventPage struct {
	// Cursor points at the next page; empty on the last page.
	Cursor string `json:"cursor,omitempty"`

	Events []Event `json:"events"`
}

// ListEvents returns a page of the event log. Pass the returned cursor in the
// next call to continue; a nil opts lists the most recent events.
//
//	var opts *qstash.ListEventsOptions
//	for {
//	    page, err := client.ListEvents(ctx, opts)
//	    if err != nil || page.Cursor == "" {
//	        break
//	    }
//	    opts = &qstash.ListEventsOptions{Cursor: page.Cursor}
//	}
func (c *Client) ListEvents(ctx context.Context, opts *ListEventsOptions) (*EventPage, error) {
	var page EventPage
	if err := c.transport.get(ctx, "/v2/events", opts.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
