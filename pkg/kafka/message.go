package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	// Parsed content
	Candidate *CandidateMessage
}

// CandidateMessage is the wire shape of a deal candidate produced by
// the chat listener and the page monitor.
type CandidateMessage struct {
	Type         string                   `json:"type"` // "deal.candidate"
	Candidate    models.RawCandidate      `json:"candidate"`
	Verification *models.VerificationInfo `json:"verification,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
}

// ParseCandidate parses the message value as a candidate message.
// Chat-feed payloads often carry the price only inside the message
// text, so a missing claimed_price falls back to parsing raw_text.
func (m *IncomingMessage) ParseCandidate() error {
	var msg CandidateMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if msg.Candidate.ClaimedPrice == nil && msg.Candidate.RawText != "" {
		if price, ok := normalizers.ParsePrice(msg.Candidate.RawText); ok {
			msg.Candidate.ClaimedPrice = &price
		}
	}
	m.Candidate = &msg
	return nil
}

// IsCandidate checks whether the message carries a deal candidate
func (m *IncomingMessage) IsCandidate() bool {
	if msgType := m.Headers["type"]; msgType == "deal.candidate" {
		return true
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(m.Value, &probe); err != nil {
		return false
	}
	return probe.Type == "deal.candidate"
}

// GetStore returns the candidate's store, falling back to the header
func (m *IncomingMessage) GetStore() string {
	if m.Candidate != nil && m.Candidate.Candidate.Store != "" {
		return m.Candidate.Candidate.Store
	}
	return m.Headers["store"]
}

// GetSource returns where the candidate was detected
func (m *IncomingMessage) GetSource() models.Source {
	if m.Candidate != nil {
		return m.Candidate.Candidate.Source
	}
	return models.Source(m.Headers["source"])
}
