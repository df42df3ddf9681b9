package sip

import (
	"bytes"
	"strings"

	"firestige.xyz/sipcore/internal/core"
)

// ValidationResult classifies a raw payload.
type ValidationResult int

const (
	NotSIP ValidationResult = iota
	Partial
	Complete
	Multiple
)

func (r ValidationResult) String() string {
	switch r {
	case NotSIP:
		return "NOT_SIP"
	case Partial:
		return "PARTIAL"
	case Complete:
		return "COMPLETE"
	case Multiple:
		return "MULTIPLE"
	default:
		return "UNKNOWN"
	}
}

// Validate classifies payload and, for Complete/Multiple, returns how many
// leading bytes make up the first message. For Multiple the caller is
// expected to re-validate payload[consumed:].
func Validate(payload []byte, transport core.Transport) (result ValidationResult, consumed int) {
	firstLine := firstLineOf(payload)
	if !isStartLine(firstLine) {
		return NotSIP, 0
	}

	if transport == core.TransportUDP {
		// Datagram transports deliver one message per packet; no
		// Content-Length bookkeeping is needed to know it's complete.
		return Complete, len(payload)
	}

	loc := reBodyDelim.FindIndex(payload)
	if loc == nil {
		return Partial, 0
	}
	headers := payload[:loc[0]]
	bodyStart := loc[1]

	cl, ok := contentLength(headers)
	if !ok {
		return Partial, 0
	}

	total := bodyStart + cl
	switch {
	case len(payload) < total:
		return Partial, 0
	case len(payload) > total:
		return Multiple, total
	default:
		return Complete, total
	}
}

func firstLineOf(payload []byte) string {
	end := bytes.IndexAny(payload, "\r\n")
	if end == -1 {
		return strings.TrimSpace(string(payload))
	}
	return strings.TrimSpace(string(payload[:end]))
}

func isStartLine(firstLine string) bool {
	if reResponseLine.MatchString(firstLine) {
		return true
	}
	return reRequestLine.MatchString(firstLine) && knownMethodToken(firstLine)
}
