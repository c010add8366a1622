package qstash

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/publish/https://example.com/hook", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))

		w.Write([]byte(`{"messageId":"msg_123"}`))
	})

	msgs, err := client.Publish(context.Background(), "https://example.com/hook", []byte(`{"hello":"world"}`))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg_123", msgs[0].MessageID)
	assert.False(t, msgs[0].Deduplicated)
}

func TestPublishToURLGroup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/publish/my-group", r.URL.Path)
		w.Write([]byte(`[
			{"messageId":"msg_1","url":"https://a.example.com"},
			{"messageId":"msg_2","url":"https://b.example.com","deduplicated":true}
		]`))
	})

	msgs, err := client.Publish(context.Background(), "my-group", []byte(`{}`))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg_1", msgs[0].MessageID)
	assert.Equal(t, "https://a.example.com", msgs[0].URL)
	assert.True(t, msgs[1].Deduplicated)
}

func TestPublishEmptyDestination(t *testing.T) {
	client, err := NewClient("test-token")
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), "", nil)
	require.Error(t, err)
}

func TestPublishOptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "90s", r.Header.Get("Upstash-Delay"))
		assert.Equal(t, "5", r.Header.Get("Upstash-Retries"))
		assert.Equal(t, "https://example.com/cb", r.Header.Get("Upstash-Callback"))
		assert.Equal(t, "https://example.com/fail", r.Header.Get("Upstash-Failure-Callback"))
		assert.Equal(t, "PUT", r.Header.Get("Upstash-Method"))
		assert.Equal(t, "dedup-1", r.Header.Get("Upstash-Deduplication-Id"))
		assert.Equal(t, "30s", r.Header.Get("Upstash-Timeout"))
		assert.Equal(t, "1700000000", r.Header.Get("Upstash-Not-Before"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, []string{"a", "b"}, r.Header.Values("Upstash-Forward-X-Tag"))

		w.Write([]byte(`{"messageId":"msg_123"}`))
	})

	_, err := client.Publish(context.Background(), "https://example.com/hook", []byte("hi"),
		WithDelay(90*time.Second),
		WithRetries(5),
		WithCallback("https://example.com/cb"),
		WithFailureCallback("https://example.com/fail"),
		WithMethod(http.MethodPut),
		WithDeduplicationID("dedup-1"),
		WithTimeout(30*time.Second),
		WithNotBefore(time.Unix(1700000000, 0)),
		WithContentType("text/plain"),
		WithForwardHeader("X-Tag", "a"),
		WithForwardHeader("X-Tag", "b"),
	)
	require.NoError(t, err)
}

func TestPublishContentBasedDeduplication(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.Header.Get("Upstash-Content-Based-Deduplication"))
		w.Write([]byte(`{"messageId":"msg_123","deduplicated":true}`))
	})

	msgs, err := client.Publish(context.Background(), "https://example.com/hook", []byte("hi"),
		WithContentBasedDeduplication())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Deduplicated)
}

func TestPublishJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"user":"u1","count":2}`, string(body))
		w.Write([]byte(`{"messageId":"msg_123"}`))
	})

	payload := map[string]any{"user": "u1", "count": 2}
	msgs, err := client.PublishJSON(context.Background(), "https://example.com/hook", payload)
	require.NoError(t, err)
	assert.Equal(t, "msg_123", msgs[0].MessageID)
}

func TestEnqueue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/enqueue/orders/https://example.com/hook", r.URL.Path)
		w.Write([]byte(`{"messageId":"msg_456"}`))
	})

	msgs, err := client.Enqueue(context.Background(), "orders", "https://example.com/hook", []byte(`{}`))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg_456", msgs[0].MessageID)
}

func TestEnqueueValidation(t *testing.T) {
	client, err := NewClient("test-token")
	require.NoError(t, err)

	_, err = client.Enqueue(context.Background(), "", "https://example.com", nil)
	assert.Error(t, err)
	_, err = client.Enqueue(context.Background(), "orders", "", nil)
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var entries []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "https://example.com/hook", entries[0]["destination"])
		assert.Equal(t, map[string]any{"Upstash-Retries": "2"}, entries[0]["headers"])
		assert.Equal(t, "my-group", entries[1]["destination"])
		assert.Equal(t, "orders", entries[1]["queue"])

		// One receipt for the URL entry, a fan-out for the group entry.
		w.Write([]byte(`[
			{"messageId":"msg_1"},
			[{"messageId":"msg_2","url":"https://a.example.com"},
			 {"messageId":"msg_3","url":"https://b.example.com"}]
		]`))
	})

	results, err := client.Batch(context.Background(), []BatchEntry{
		{
			Destination: "https://example.com/hook",
			Headers:     http.Header{"Upstash-Retries": {"2"}},
			Body:        `{"n":1}`,
		},
		{
			Destination: "my-group",
			Queue:       "orders",
			Body:        `{"n":2}`,
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, results[0].Messages, 1)
	assert.Equal(t, "msg_1", results[0].Messages[0].MessageID)
	require.Len(t, results[1].Messages, 2)
	assert.Equal(t, "msg_3", results[1].Messages[1].MessageID)
}

func TestBatchValidation(t *testing.T) {
	client, err := NewClient("test-token")
	require.NoError(t, err)

	_, err = client.Batch(context.Background(), nil)
	assert.Error(t, err)
	_, err = client.Batch(context.Background(), []BatchEntry{{Body: "x"}})
	assert.Error(t, err)
}

func TestGetMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/messages/msg_123", r.URL.Path)
		w.Write([]byte(`{
			"messageId":"msg_123",
			"topicName":"my-group",
			"url":"https://example.com/hook",
			"method":"POST",
			"header":{"Content-Type":["application/json"]},
			"body":"{\"hello\":\"world\"}",
			"createdAt":1700000000000
		}`))
	})

	msg, err := client.GetMessage(context.Background(), "msg_123")
	require.NoError(t, err)
	assert.Equal(t, "msg_123", msg.MessageID)
	assert.Equal(t, "my-group", msg.TopicName)
	assert.Equal(t, "https://example.com/hook", msg.URL)
	assert.Equal(t, []string{"application/json"}, msg.Header["Content-Type"])
	assert.Equal(t, int64(1700000000000), msg.CreatedAt)
}

func TestCancelMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v2/messages/msg_123", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.CancelMessage(context.Background(), "msg_123"))
}

func TestCancelMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v2/messages", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"messageIds":["msg_1","msg_2"]}`, string(body))
		w.WriteHeader(http.StatusOK)
	})

	err := client.CancelMessages(context.Background(), []string{"msg_1", "msg_2"})
	require.NoError(t, err)
}

func TestCancelMessagesEmpty(t *testing.T) {
	client, err := NewClient("test-token")
	require.NoError(t, err)

	require.Error(t, client.CancelMessages(context.Background(), nil))
}
