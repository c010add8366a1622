package qstash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a contract-test server and returns a client pointed
// at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("test-token")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.transport.baseURL)
}

func TestNewClientEmptyToken(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}

func TestNewClientInvalidBaseURL(t *testing.T) {
	for _, baseURL := range []string{"://bad", "not-a-url", ""} {
		_, err := NewClient("test-token", WithBaseURL(baseURL))
		assert.Error(t, err, "base URL %q", baseURL)
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client, err := NewClient("test-token", WithBaseURL("https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", client.transport.baseURL)
}

func TestNewClientWithOptions(t *testing.T) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := NewClient("test-token",
		WithHTTPClient(httpClient),
		WithUserAgent("qstash-go-test"),
		WithHeader("X-Custom", "value"),
	)
	require.NoError(t, err)
	assert.Same(t, httpClient, client.transport.httpClient)
	assert.Equal(t, "qstash-go-test", client.transport.userAgent)
	assert.Equal(t, "value", client.transport.headers["X-Custom"])
}

func TestRequestHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"current":"sig_a","next":"sig_b"}`))
	})

	_, err := client.GetSigningKeys(context.Background())
	require.NoError(t, err)
}

func TestCustomHeadersOnEveryRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "qstash-go-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "value", r.Header.Get("X-Custom"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient("test-token",
		WithBaseURL(srv.URL),
		WithUserAgent("qstash-go-test"),
		WithHeader("X-Custom", "value"),
	)
	require.NoError(t, err)

	_, err = client.ListQueues(context.Background())
	require.NoError(t, err)
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListQueues(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}
