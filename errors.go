package qstash

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Sentinel errors for use with errors.Is.
var (
	ErrUnauthorized     = errors.New("qstash: unauthorized")
	ErrNotFound         = errors.New("qstash: resource not found")
	ErrRateLimited      = errors.New("qstash: rate limit exceeded")
	ErrInvalidSignature = errors.New("qstash: invalid signature")
)

// APIError is a non-2xx response from the QStash API.
// It matches the sentinel errors above through errors.Is.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the error description from the response body.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("qstash: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("qstash: %s (status %d)", e.Message, e.StatusCode)
}

// Is enables errors.Is matching against sentinel errors.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

// Unwrap returns the sentinel error corresponding to the status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// RateLimitKind identifies which quota a 429 response exhausted.
type RateLimitKind string

const (
	// RateLimitDaily is the per-day request quota.
	RateLimitDaily RateLimitKind = "daily"
	// RateLimitBurst is the short-window burst quota.
	RateLimitBurst RateLimitKind = "burst"
	// RateLimitChat is the chat completion quota, tracked in requests and tokens.
	RateLimitChat RateLimitKind = "chat"
	// RateLimitUnknown is a 429 without recognizable quota headers.
	RateLimitUnknown RateLimitKind = "unknown"
)

// RateLimitError is an HTTP 429 response, classified by the quota headers the
// service returned. Fields the response did not carry stay zero.
type RateLimitError struct {
	Kind RateLimitKind

	Limit     int64 // requests allowed in the window
	Remaining int64 // requests left in the window
	Reset     int64 // unix time the window resets

	// Chat quotas are tracked in tokens as well as requests.
	TokenLimit     int64
	TokenRemaining int64
	TokenReset     int64
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Kind == RateLimitUnknown || e.Kind == "" {
		return "qstash: rate limit exceeded"
	}
	return fmt.Sprintf("qstash: %s rate limit exceeded", e.Kind)
}

// Is enables errors.Is matching against ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// responseError maps a non-2xx response to a typed error.
func responseError(status int, header http.Header, body []byte) error {
	if status == http.StatusTooManyRequests {
		return rateLimitError(header)
	}
	msg := string(body)
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		msg = wire.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

// rateLimitError classifies a 429 by which quota header family is present.
func rateLimitError(h http.Header) *RateLimitError {
	switch {
	case h.Get("RateLimit-Limit") != "" || h.Get("RateLimit-Reset") != "":
		return &RateLimitError{
			Kind:      RateLimitDaily,
			Limit:     headerInt(h, "RateLimit-Limit"),
			Remaining: headerInt(h, "RateLimit-Remaining"),
			Reset:     headerInt(h, "RateLimit-Reset"),
		}
	case h.Get("Burst-RateLimit-Limit") != "" || h.Get("Burst-RateLimit-Reset") != "":
		return &RateLimitError{
			Kind:      RateLimitBurst,
			Limit:     headerInt(h, "Burst-RateLimit-Limit"),
			Remaining: headerInt(h, "Burst-RateLimit-Remaining"),
			Reset:     headerInt(h, "Burst-RateLimit-Reset"),
		}
	case h.Get("x-ratelimit-limit-requests") != "" || h.Get("x-ratelimit-reset-requests") != "":
		return &RateLimitError{
			Kind:           RateLimitChat,
			Limit:          headerInt(h, "x-ratelimit-limit-requests"),
			Remaining:      headerInt(h, "x-ratelimit-remaining-requests"),
			Reset:          headerInt(h, "x-ratelimit-reset-requests"),
			TokenLimit:     headerInt(h, "x-ratelimit-limit-tokens"),
			TokenRemaining: headerInt(h, "x-ratelimit-remaining-tokens"),
			TokenReset:     headerInt(h, "x-ratelimit-reset-tokens"),
		}
	}
	return &RateLimitError{Kind: RateLimitUnknown}
}

func headerInt(h http.Header, key string) int64 {
	n, _ := strconv.ParseInt(h.Get(key), 10, 64)
	return n
}
