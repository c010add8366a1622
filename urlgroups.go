package qstash

import (
	"context"
	"fmt"
	"net/url"
)

// Endpoint is one destination of a URL group.
type Endpoint struct {
	// Name is optional; unnamed endpoints are identified by URL.
	Name string `json:"name,omitempty"`

	// URL may be empty when removing an endpoint by name.
	URL string `json:"url,omitempty"`
}

// URLGroup is a named set of endpoints. Publishing to the group fans out one
// message per endpoint.
type URLGroup struct {
	// CreatedAt is the creation time in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the last endpoint change in unix milliseconds.
	UpdatedAt int64 `json:"updatedAt"`

	Name string `json:"name"`

	Endpoints []Endpoint `json:"endpoints"`
}

type endpointsRequest struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// AddEndpoints adds endpoints to a URL group, creating the group if it does
// not exist.
func (c *Client) AddEndpoints(ctx context.Context, group string, endpoints []Endpoint) error {
	if group == "" {
		return fmt.Errorf("qstash: URL group name is required")
	}
	if len(endpoints) == 0 {
		return fmt.Errorf("qstash: at least one endpoint is required")
	}
	for i, e := range endpoints {
		if e.URL == "" {
			return fmt.Errorf("qstash: endpoint %d: URL is required", i)
		}
	}
	path := "/v2/topics/" + url.PathEscape(group) + "/endpoints"
	return c.transport.postJSON(ctx, path, endpointsRequest{Endpoints: endpoints}, nil)
}

// RemoveEndpoints removes endpoints from a URL group. Endpoints match by name
// or by URL.
func (c *Client) RemoveEndpoints(ctx context.Context, group string, endpoints []Endpoint) error {
	if group == "" {
		return fmt.Errorf("qstash: URL group name is required")
	}
	if len(endpoints) == 0 {
		return fmt.Errorf("qstash: at least one endpoint is required")
	}
	path := "/v2/topics/" + url.PathEscape(group) + "/endpoints"
	return c.transport.del(ctx, path, endpointsRequest{Endpoints: endpoints}, nil)
}

// GetURLGroup fetches a URL group by name.
func (c *Client) GetURLGroup(ctx context.Context, group string) (*URLGroup, error) {
	if group == "" {
		return nil, fmt.Errorf("qstash: URL group name is required")
	}
	var g URLGroup
	if err := c.transport.get(ctx, "/v2/topics/"+url.PathEscape(group), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListURLGroups returns all URL groups.
func (c *Client) ListURLGroups(ctx context.Context) ([]URLGroup, error) {
	var groups []URLGroup
	if err := c.transport.get(ctx, "/v2/topics", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// RemoveURLGroup deletes a URL group and all its endpoints.
func (c *Client) RemoveURLGroup(ctx context.Context, group string) error {
	if group == "" {
		return fmt.Errorf("qstash: URL group name is required")
	}
	return c.transport.del(ctx, "/v2/topics/"+url.PathEscape(group), nil, nil)
}
