package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nsqio/go-nsq"
	"go.opentelemetry.io/otel/attribute"

	qstash "github.com/austindbirch/qstash-go"
	"github.com/austindbirch/qstash-go/internal/config"
	"github.com/austindbirch/qstash-go/internal/logging"
	"github.com/austindbirch/qstash-go/internal/metrics"
	"github.com/austindbirch/qstash-go/internal/tracing"
)

// Sender is the subset of the QStash client the outbound consumer uses.
type Sender interface {
	Publish(ctx context.Context, destination string, body []byte, opts ...qstash.PublishOption) ([]qstash.PublishedMessage, error)
	Enqueue(ctx context.Context, queue, destination string, body []byte, opts ...qstash.PublishOption) ([]qstash.PublishedMessage, error)
}

// Outbound consumes publish requests from NSQ and forwards them to QStash.
// It implements nsq.Handler.
type Outbound struct {
	sender      Sender
	dlq         Publisher // nil disables dead letter publishes
	dlqTopic    string
	log         *logging.Logger
	maxAttempts int
	backoff     []time.Duration
	jitterPct   float64
}

func NewOutbound(sender Sender, dlq Publisher, dlqTopic string, cfg config.Relay, log *logging.Logger) *Outbound {
	return &Outbound{
		sender:      sender,
		dlq:         dlq,
		dlqTopic:    dlqTopic,
		log:         log,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.BackoffSchedule,
		jitterPct:   cfg.JitterPercent,
	}
}

func (o *Outbound) HandleMessage(m *nsq.Message) error {
	m.DisableAutoResponse() // we manually requeue or finish
	defer func() {
		if !m.HasResponded() {
			o.log.Plain().Warn("message had no response, finishing")
			m.Finish()
		}
	}()

	var pr PublishRequest
	if err := json.Unmarshal(m.Body, &pr); err != nil {
		o.log.Plain().WithError(err).Error("bad publish payload")
		metrics.RecordDrop("bad_payload")
		m.Finish() // terminal: don't retry bad payloads
		return nil
	}

	// nsqd counts delivery attempts for us, so the count survives requeues.
	attempt := int(m.Attempts)

	ctx := tracing.ExtractTraceFromNSQ(context.Background(), pr.TraceHeaders)
	ctx, span := tracing.StartSpan(ctx, "relay.publish",
		attribute.String("destination", pr.Destination),
		attribute.String("queue", pr.Queue),
		attribute.Int("attempt", attempt),
	)
	defer span.End()

	start := time.Now()
	msgs, pubErr := o.send(ctx, pr)
	latency := time.Since(start)
	span.SetAttributes(attribute.Int64("publish.latency_ms", latency.Milliseconds()))

	if pubErr == nil {
		messageID := ""
		if len(msgs) > 0 {
			messageID = msgs[0].MessageID
		}
		tracing.AddSpanEvent(ctx, "publish.success", attribute.String("message_id", messageID))
		o.log.WithContext(ctx).WithMessageID(messageID).WithField("destination", pr.Destination).Info("publish forwarded")
		metrics.RecordPublish("published", latency)
		m.Finish() // explicit ack
		return nil
	}

	tracing.SetSpanError(ctx, pubErr)
	reason := classifyReason(pubErr)
	span.SetAttributes(attribute.String("failure_reason", reason))
	metrics.RecordPublish("failed", latency)

	if terminal(pubErr) || attempt >= o.maxAttempts {
		tracing.AddSpanEvent(ctx, "publish.dlq", attribute.Int("attempt", attempt))
		o.deadLetter(ctx, pr, attempt, pubErr, reason)
		metrics.RecordDrop(reason)
		m.Finish() // drop from main topic
		return nil
	}

	delay := computeDelay(attempt, o.backoff, o.jitterPct)
	tracing.AddSpanEvent(ctx, "publish.requeue",
		attribute.Int("attempt", attempt),
		attribute.String("delay", delay.String()),
	)
	o.log.WithContext(ctx).WithFields(map[string]any{
		"destination": pr.Destination,
		"attempt":     attempt,
		"delay":       delay.String(),
	}).Info("requeue publish")
	metrics.RecordRequeue(reason)
	m.Requeue(delay) // explicit requeue with delay
	return nil
}

func (o *Outbound) send(ctx context.Context, pr PublishRequest) ([]qstash.PublishedMessage, error) {
	var opts []qstash.PublishOption
	if pr.ContentType != "" {
		opts = append(opts, qstash.WithContentType(pr.ContentType))
	}
	if pr.Method != "" {
		opts = append(opts, qstash.WithMethod(pr.Method))
	}
	if pr.DelaySeconds > 0 {
		opts = append(opts, qstash.WithDelay(time.Duration(pr.DelaySeconds)*time.Second))
	}
	if pr.DeduplicationID != "" {
		opts = append(opts, qstash.WithDeduplicationID(pr.DeduplicationID))
	}
	if pr.Queue != "" {
		return o.sender.Enqueue(ctx, pr.Queue, pr.Destination, pr.Body, opts...)
	}
	return o.sender.Publish(ctx, pr.Destination, pr.Body, opts...)
}

func (o *Outbound) deadLetter(ctx context.Context, pr PublishRequest, attempt int, pubErr error, reason string) {
	if o.dlq == nil {
		return
	}
	env := NewDeadLetter(pr, attempt, errString(pubErr), fmt.Sprintf("%s after %d attempts", reason, attempt))
	b, _ := json.Marshal(env)
	if err := o.dlq.Publish(o.dlqTopic, b); err != nil {
		o.log.WithContext(ctx).WithError(err).Error("dlq publish failed")
		tracing.SetSpanError(ctx, err)
		return
	}
	o.log.WithContext(ctx).WithTopic(o.dlqTopic).WithField("destination", pr.Destination).Info("dlq published")
	tracing.AddSpanEvent(ctx, "nsq.published_dlq", attribute.String("topic", o.dlqTopic))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func computeDelay(attempt int, schedule []time.Duration, jitterPct float64) time.Duration {
	// attempt is 1-based; map to schedule index
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(schedule) {
		idx = len(schedule) - 1
	}
	base := schedule[idx]
	// jitter: +/- jitterPct
	j := 1 + (rand.Float64()*2-1)*jitterPct
	if j < 0.1 {
		j = 0.1
	}
	return time.Duration(float64(base) * j)
}

// terminal reports whether a publish error cannot succeed on retry.
// Rate limits clear on their own; other 4xx responses will not.
func terminal(err error) bool {
	if errors.Is(err, qstash.ErrRateLimited) {
		return false
	}
	var apiErr *qstash.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
	}
	return false
}

func classifyReason(err error) string {
	if errors.Is(err, qstash.ErrRateLimited) {
		return "rate_limited"
	}
	var apiErr *qstash.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= 500:
			return "http_5xx"
		case apiErr.StatusCode >= 400:
			return "http_4xx"
		}
	}
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "timeout") || strings.Contains(errLower, "deadline exceeded") {
		return "timeout"
	}
	if strings.Contains(errLower, "connection refused") {
		return "connection_refused"
	}
	if strings.Contains(errLower, "no such host") || strings.Contains(errLower, "dns") {
		return "dns_error"
	}
	return "network"
}
