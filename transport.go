package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// transport is a thin HTTP wrapper around the QStash REST API.
type transport struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
	headers    map[string]string
}

func newTransport(baseURL, token string, cfg clientConfig) *transport {
	client := cfg.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	return &transport{
		baseURL:    baseURL,
		httpClient: client,
		token:      token,
		userAgent:  cfg.userAgent,
		headers:    cfg.headers,
	}
}

// do executes one API request and decodes the JSON response into result.
// A nil body sends no request body; a nil result discards the response body.
func (t *transport) do(ctx context.Context, method, path string, query url.Values, header http.Header, body []byte, result any) error {
	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("qstash: create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qstash: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("qstash: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, resp.Header, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("qstash: unmarshal response: %w", err)
		}
	}
	return nil
}

// get performs a GET request with optional query parameters.
func (t *transport) get(ctx context.Context, path string, query url.Values, result any) error {
	return t.do(ctx, http.MethodGet, path, query, nil, nil, result)
}

// post performs a POST request with a raw body and extra headers.
func (t *transport) post(ctx context.Context, path string, header http.Header, body []byte, result any) error {
	return t.do(ctx, http.MethodPost, path, nil, header, body, result)
}

// postJSON performs a POST request with a JSON-encoded body.
func (t *transport) postJSON(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qstash: marshal request: %w", err)
	}
	return t.do(ctx, http.MethodPost, path, nil, nil, data, result)
}

// del performs a DELETE request, with a JSON body when one is given.
func (t *transport) del(ctx context.Context, path string, body any, result any) error {
	if body == nil {
		return t.do(ctx, http.MethodDelete, path, nil, nil, nil, result)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qstash: marshal request: %w", err)
	}
	return t.do(ctx, http.MethodDelete, path, nil, nil, data, result)
}
