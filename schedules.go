package qstash

import (
	"context"
	"fmt"
	"net/url"
)

// Schedule publishes a message to its destination on a cron expression.
type Schedule struct {
	// CreatedAt is the creation time in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	ScheduleID string `json:"scheduleId"`

	// Cron is the schedule expression, evaluated in UTC.
	Cron string `json:"cron"`

	// Destination is a URL or URL group name.
	Destination string `json:"destination"`

	// Method is the HTTP method used for delivery.
	Method string `json:"method,omitempty"`

	// Header holds the headers forwarded with each delivery.
	Header map[string][]string `json:"header,omitempty"`

	// Body is the payload published on each trigger.
	Body string `json:"body,omitempty"`

	// Retries caps delivery retries for triggered messages.
	Retries int `json:"retries,omitempty"`

	// Delay postpones each triggered delivery, in seconds.
	Delay int64 `json:"delay,omitempty"`

	Callback        string `json:"callback,omitempty"`
	FailureCallback string `json:"failureCallback,omitempty"`

	// IsPaused reports whether triggering is currently suspended.
	IsPaused bool `json:"isPaused,omitempty"`
}

// CreateSchedule registers a cron schedule that publishes body to the
// destination on every trigger. It returns the schedule ID. Publish options
// apply to every triggered message.
//
// Example:
//
//	id, err := client.CreateSchedule(ctx, "https://example.com/hook",
//	    "0 * * * *",
//	    []byte(`{"tick":true}`),
//	    qstash.WithRetries(3),
//	)
func (c *Client) CreateSchedule(ctx context.Context, destination, cron string, body []byte, opts ...PublishOption) (string, error) {
	if destination == "" {
		return "", fmt.Errorf("qstash: destination is required")
	}
	if cron == "" {
		return "", fmt.Errorf("qstash: cron expression is required")
	}
	cfg := resolvePublishConfig(opts)
	cfg.header.Set(headerCron, cron)

	var res struct {
		ScheduleID string `json:"scheduleId"`
	}
	if err := c.transport.post(ctx, "/v2/schedules/"+destination, cfg.header, body, &res); err != nil {
		return "", err
	}
	return res.ScheduleID, nil
}

// GetSchedule fetches a schedule by ID.
func (c *Client) GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("qstash: schedule ID is required")
	}
	var s Schedule
	if err := c.transport.get(ctx, "/v2/schedules/"+url.PathEscape(scheduleID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSchedules returns all schedules.
func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	var schedules []Schedule
	if err := c.transport.get(ctx, "/v2/schedules", nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule. Messages already triggered are not
// affected.
func (c *Client) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return fmt.Errorf("qstash: schedule ID is required")
	}
	return c.transport.del(ctx, "/v2/schedules/"+url.PathEscape(scheduleID), nil, nil)
}

// PauseSchedule suspends triggering. The schedule and its configuration are
// kept.
func (c *Client) PauseSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return fmt.Errorf("qstash: schedule ID is required")
	}
	return c.transport.post(ctx, "/v2/schedules/"+url.PathEscape(scheduleID)+"/pause", nil, nil, nil)
}

// ResumeSchedule resumes a paused schedule.
func (c *Client) ResumeSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return fmt.Errorf("qstash: schedule ID is required")
	}
	return c.transport.post(ctx, "/v2/schedules/"+url.PathEscape(scheduleID)+"/resume", nil, nil, nil)
}
