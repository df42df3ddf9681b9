package sip

import (
	"sync"
	"time"

	"firestige.xyz/sipcore/internal/core"
)

// Message is an immutable-once-parsed SIP message record. A Message
// always carries its raw payload and arrival metadata; the
// structured fields below are filled lazily on first access via Parse,
// which is idempotent and safe to call concurrently (the registry lock
// only guards the call's message slice, not the Message itself).
type Message struct {
	Raw         []byte
	Arrival     time.Time
	Source      core.Endpoint
	Destination core.Endpoint
	Transport   core.Transport

	parseOnce sync.Once
	parseErr  error

	// Method is set for requests, MethodUnknown for responses.
	Method Method
	// StatusCode is set for responses (e.g. 200), 0 for requests.
	StatusCode int
	// ReasonPhrase is the Reason header value when one is present (for
	// requests and responses alike), otherwise a response's status-line
	// reason phrase.
	ReasonPhrase string

	CallID    string
	XCallID   string
	CSeq      string
	FromURI   string
	ToURI     string
	ToTag     bool
	Warning   string
	Body      []byte
}

// IsResponse reports whether this message is a SIP response.
func (m *Message) IsResponse() bool {
	m.ensureParsed()
	return m.StatusCode != 0
}

// Parse fills the structured fields from Raw, advancing the message from
// "raw" to "parsed" state. It is idempotent: calling it more than once
// (concurrently or not) performs the parse exactly once and every caller
// observes the same result.
func (m *Message) Parse() error {
	m.ensureParsed()
	return m.parseErr
}

func (m *Message) ensureParsed() {
	m.parseOnce.Do(func() {
		m.parseErr = parseInto(m)
	})
}

// NewMessage wraps a raw payload and its arrival metadata into a Message
// in "raw" state. Call-ID is not yet extracted; use QuickCallID for that
// cheap path, or Parse to fill every field.
func NewMessage(payload []byte, p core.Packet) *Message {
	raw := make([]byte, len(payload))
	copy(raw, payload)
	return &Message{
		Raw:         raw,
		Arrival:     p.Timestamp,
		Source:      p.Source,
		Destination: p.Destination,
		Transport:   p.Transport,
	}
}
