package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/austindbirch/qstash-go/internal/logging"
	"github.com/austindbirch/qstash-go/internal/metrics"
	"github.com/austindbirch/qstash-go/internal/tracing"
)

// maxBodyBytes matches the broker's 1 MB message size limit.
const maxBodyBytes = 1 << 20

// Publisher is the subset of the NSQ producer the relay uses.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// ProducerPinger adapts the NSQ producer's context-free Ping to the
// health handler.
type ProducerPinger struct {
	Producer interface{ Ping() error }
}

func (p ProducerPinger) Ping(_ context.Context) error {
	return p.Producer.Ping()
}

// Inbound turns QStash deliveries into receipts on an NSQ topic.
// Signature verification happens in the middleware wrapping Handler,
// so everything reaching the handler is already authenticated.
type Inbound struct {
	producer Publisher
	topic    string
	log      *logging.Logger
}

func NewInbound(producer Publisher, topic string, log *logging.Logger) *Inbound {
	return &Inbound{producer: producer, topic: topic, log: log}
}

// Handler accepts a delivery, wraps it in a Receipt, and publishes the
// receipt to the inbound topic. QStash treats any 2xx as consumed, so
// the delivery is only acknowledged after the NSQ publish succeeds.
func (in *Inbound) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			metrics.RecordDeliveryReceived("rejected")
			http.Error(w, "read body failed", http.StatusBadRequest)
			return
		}

		messageID := r.Header.Get(headerMessageID)
		retried, _ := strconv.Atoi(r.Header.Get(headerRetried))

		ctx, span := tracing.StartSpan(r.Context(), "relay.receive",
			attribute.String("message_id", messageID),
			attribute.Int("retried", retried),
			attribute.Int("body_bytes", len(body)),
		)
		defer span.End()

		rc := NewReceipt(messageID, body)
		rc.TopicName = r.Header.Get(headerTopicName)
		rc.ScheduleID = r.Header.Get(headerScheduleID)
		rc.CallerIP = r.Header.Get(headerCallerIP)
		rc.ContentType = r.Header.Get("Content-Type")
		rc.Retried = retried
		rc.TraceHeaders = tracing.PropagateTraceToNSQ(ctx)

		payload, err := json.Marshal(rc)
		if err != nil {
			tracing.SetSpanError(ctx, err)
			metrics.RecordDeliveryReceived("error")
			http.Error(w, "encode receipt failed", http.StatusInternalServerError)
			return
		}
		if err := in.producer.Publish(in.topic, payload); err != nil {
			tracing.SetSpanError(ctx, err)
			in.log.WithContext(ctx).WithMessageID(messageID).WithError(err).Error("receipt publish failed")
			metrics.RecordDeliveryReceived("error")
			http.Error(w, "receipt publish failed", http.StatusInternalServerError)
			return
		}

		tracing.AddSpanEvent(ctx, "nsq.published_receipt", attribute.String("topic", in.topic))
		in.log.WithContext(ctx).WithMessageID(messageID).WithReceipt(rc.ReceiptID).WithTopic(in.topic).Info("receipt published")
		metrics.RecordDeliveryReceived("accepted")
		metrics.RecordReceiptPublished(in.topic)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"receiptId": rc.ReceiptID})
	}
}
