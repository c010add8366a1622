package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DeliveriesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_relay_deliveries_total",
			Help: "Total number of inbound deliveries by verification status.",
		},
		[]string{"status"}, // accepted, rejected, bad_request
	)

	ReceiptsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_relay_receipts_total",
			Help: "Total number of delivery receipts published to NSQ by topic.",
		},
		[]string{"topic"},
	)

	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_relay_publishes_total",
			Help: "Total number of outbound publishes by status.",
		},
		[]string{"status"}, // published, failed
	)

	PublishLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qstash_relay_publish_latency_seconds",
			Help:    "Latency of outbound publish requests.",
			Buckets: prometheus.DefBuckets,
		},
	)

	RequeuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_relay_requeues_total",
			Help: "Total number of outbound publish requeues by reason.",
		},
		[]string{"reason"}, // rate_limited, http_5xx, network, other
	)

	DroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_relay_dropped_total",
			Help: "Total number of outbound publishes dropped by reason.",
		},
		[]string{"reason"},
	)

	EventsArchivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_archiver_events_total",
			Help: "Total number of events archived by state.",
		},
		[]string{"state"},
	)

	DLQArchivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qstash_archiver_dlq_total",
			Help: "Total number of dead-letter messages archived.",
		},
	)

	ArchivePagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qstash_archiver_pages_total",
			Help: "Total number of event log pages fetched.",
		},
	)

	PollErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qstash_archiver_poll_errors_total",
			Help: "Total number of poll failures by source.",
		},
		[]string{"source"}, // events, dlq
	)

	LastEventTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qstash_archiver_last_event_timestamp_seconds",
			Help: "Unix timestamp of the newest archived event.",
		},
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		DeliveriesReceivedTotal,
		ReceiptsPublishedTotal,
		PublishesTotal,
		PublishLatencySeconds,
		RequeuesTotal,
		DroppedTotal,
		EventsArchivedTotal,
		DLQArchivedTotal,
		ArchivePagesTotal,
		PollErrorsTotal,
		LastEventTimestamp,
	)
}

// RecordDeliveryReceived increments the inbound delivery counter
func RecordDeliveryReceived(status string) {
	DeliveriesReceivedTotal.WithLabelValues(status).Inc()
}

// RecordReceiptPublished increments the NSQ receipt counter for a topic
func RecordReceiptPublished(topic string) {
	ReceiptsPublishedTotal.WithLabelValues(topic).Inc()
}

// RecordPublish records an outbound publish attempt and its latency
func RecordPublish(status string, duration time.Duration) {
	PublishesTotal.WithLabelValues(status).Inc()
	PublishLatencySeconds.Observe(duration.Seconds())
}

// RecordRequeue increments the requeue counter for a reason
func RecordRequeue(reason string) {
	RequeuesTotal.WithLabelValues(reason).Inc()
}

// RecordDrop increments the dropped counter for a reason
func RecordDrop(reason string) {
	DroppedTotal.WithLabelValues(reason).Inc()
}

// RecordEventArchived increments the archived event counter for a state
func RecordEventArchived(state string) {
	EventsArchivedTotal.WithLabelValues(state).Inc()
}

// RecordDLQArchived increments the archived dead-letter counter
func RecordDLQArchived() {
	DLQArchivedTotal.Inc()
}

// RecordArchivePage increments the fetched page counter
func RecordArchivePage() {
	ArchivePagesTotal.Inc()
}

// RecordPollError increments the poll error counter for a source
func RecordPollError(source string) {
	PollErrorsTotal.WithLabelValues(source).Inc()
}

// UpdateLastEventTime sets the newest archived event timestamp
func UpdateLastEventTime(unixSeconds float64) {
	LastEventTimestamp.Set(unixSeconds)
}
