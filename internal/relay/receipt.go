package relay

import (
	"time"

	"github.com/google/uuid"
)

// Headers QStash sets on outbound delivery requests.
const (
	headerMessageID  = "Upstash-Message-Id"
	headerTopicName  = "Upstash-Topic-Name"
	headerScheduleID = "Upstash-Schedule-Id"
	headerRetried    = "Upstash-Retried"
	headerCallerIP   = "Upstash-Caller-Ip"
)

// Receipt is the payload placed on the inbound NSQ topic for each verified
// QStash delivery.
type Receipt struct {
	ReceiptID    string            `json:"receipt_id"`
	MessageID    string            `json:"message_id"`
	TopicName    string            `json:"topic_name,omitempty"`
	ScheduleID   string            `json:"schedule_id,omitempty"`
	CallerIP     string            `json:"caller_ip,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	Retried      int               `json:"retried"`
	Body         []byte            `json:"body,omitempty"`          // base64 over the wire
	ReceivedAt   string            `json:"received_at"`             // RFC3339
	TraceHeaders map[string]string `json:"trace_headers,omitempty"` // OTel trace propagation headers
}

// NewReceipt stamps a fresh receipt ID and arrival time.
func NewReceipt(messageID string, body []byte) Receipt {
	return Receipt{
		ReceiptID:  uuid.New().String(),
		MessageID:  messageID,
		Body:       body,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// PublishRequest is the payload local services place on the outbound NSQ
// topic to have the relay forward a message to QStash.
type PublishRequest struct {
	Destination     string            `json:"destination"`      // URL, URL group name, or api/llm
	Queue           string            `json:"queue,omitempty"`  // enqueue instead of publish when set
	Body            []byte            `json:"body,omitempty"`   // base64 over the wire
	ContentType     string            `json:"content_type,omitempty"`
	Method          string            `json:"method,omitempty"`
	DelaySeconds    int64             `json:"delay_seconds,omitempty"`
	DeduplicationID string            `json:"deduplication_id,omitempty"`
	TraceHeaders    map[string]string `json:"trace_headers,omitempty"` // OTel trace propagation headers
}
