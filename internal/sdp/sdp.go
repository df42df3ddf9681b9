// Package sdp extracts RTP media descriptors from a SIP message body. It
// has no notion of a Call or a registry: callers own deduplication
// against a call's existing stream sequence.
package sdp

import (
	"bytes"
	"net/netip"
	"strconv"
	"strings"
)

// Descriptor is one m= line's media endpoint and codec set, keyed by
// {endpoint, format}. It becomes an RTP Stream once a caller appends or
// coalesces it into a Call.
type Descriptor struct {
	Addr      netip.Addr
	Port      uint16
	MediaType string   // "audio", "video", ...
	Formats   []string // RTP/AVP payload type numbers, in m= line order
}

// Parse scans body for SDP `m=` lines and returns one Descriptor per
// media section, resolving each one's connection address from its own
// `c=` line or, failing that, the session-level `c=` line (RFC 4566 §5.7).
func Parse(body []byte) []Descriptor {
	lines := bytes.Split(body, []byte("\n"))

	var sessionAddr netip.Addr
	var descriptors []Descriptor
	var current *Descriptor

	flush := func() {
		if current != nil {
			if !current.Addr.IsValid() {
				current.Addr = sessionAddr
			}
			descriptors = append(descriptors, *current)
			current = nil
		}
	}

	for _, raw := range lines {
		line := bytes.TrimSpace(raw)
		if len(line) < 2 || line[1] != '=' {
			continue
		}
		value := string(bytes.TrimSpace(line[2:]))

		switch line[0] {
		case 'c':
			addr := parseConnectionAddr(value)
			if !addr.IsValid() {
				continue
			}
			if current != nil {
				current.Addr = addr
			} else {
				sessionAddr = addr
			}
		case 'm':
			flush()
			fields := strings.Fields(value)
			if len(fields) < 3 {
				continue
			}
			port, err := strconv.ParseUint(fields[1], 10, 16)
			if err != nil {
				continue
			}
			current = &Descriptor{
				Port:      uint16(port),
				MediaType: fields[0],
				Formats:   append([]string{}, fields[3:]...),
			}
		}
	}
	flush()

	return descriptors
}

// parseConnectionAddr parses a `c=` line value: "IN IP4 192.168.1.1" or
// "IN IP6 2001:db8::1".
func parseConnectionAddr(value string) netip.Addr {
	fields := strings.Fields(value)
	if len(fields) < 3 {
		return netip.Addr{}
	}
	addr, err := netip.ParseAddr(fields[2])
	if err != nil {
		return netip.Addr{}
	}
	return addr
}

// HasSDPBody reports whether a message body looks like an SDP session,
// used to decide whether it's worth calling Parse at all.
func HasSDPBody(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "application/sdp") {
		return true
	}
	return len(body) > 0 && bytes.HasPrefix(bytes.TrimSpace(body), []byte("v="))
}
