package relay

import "time"

const DLQType = "publish.dlq"

// DeadLetter is the envelope published to the dead letter topic when a
// publish request exhausts its retries or fails permanently.
type DeadLetter struct {
	Type      string         `json:"type"`    // "publish.dlq"
	Version   string         `json:"version"` // schema version
	At        string         `json:"at"`      // RFC3339 time the DLQ was emitted
	Reason    string         `json:"reason"`  // human/debug text
	Attempt   int            `json:"attempt"` // attempt count when DLQ'd
	LastError string         `json:"last_error,omitempty"`
	Request   PublishRequest `json:"request"` // full publish snapshot
}

func NewDeadLetter(pr PublishRequest, attempt int, lastErr, reason string) DeadLetter {
	return DeadLetter{
		Type:      DLQType,
		Version:   "v1",
		At:        time.Now().Format(time.RFC3339Nano),
		Reason:    reason,
		Attempt:   attempt,
		LastError: lastErr,
		Request:   pr,
	}
}
