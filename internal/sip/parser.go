package sip

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header patterns are compiled once at package init. All are line-oriented
// and case-insensitive; folded (multi-line) header values are not
// recognized.
var (
	reRequestLine  = regexp.MustCompile(`(?i)^([A-Za-z]+)\s+(\S+)\s+SIP/2\.0\s*$`)
	reResponseLine = regexp.MustCompile(`(?i)^SIP/2\.0\s+(\d{3})(?:\s+(.*))?\s*$`)

	reCallID        = regexp.MustCompile(`(?im)^(?:Call-ID|i)\s*:\s*(.+?)\s*$`)
	reXCallID       = regexp.MustCompile(`(?im)^X-Call-ID\s*:\s*(.+?)\s*$`)
	reCSeq          = regexp.MustCompile(`(?im)^CSeq\s*:\s*(.+?)\s*$`)
	reFrom          = regexp.MustCompile(`(?im)^(?:From|f)\s*:\s*(.+?)\s*$`)
	reTo            = regexp.MustCompile(`(?im)^(?:To|t)\s*:\s*(.+?)\s*$`)
	reContentLength = regexp.MustCompile(`(?im)^(?:Content-Length|l)\s*:\s*(\d+)\s*$`)
	reReason        = regexp.MustCompile(`(?im)^Reason\s*:\s*(.+?)\s*$`)
	reWarning       = regexp.MustCompile(`(?im)^Warning\s*:\s*(\d+)`)
	reToTagParam    = regexp.MustCompile(`(?i);\s*tag\s*=`)
	reURIAngle      = regexp.MustCompile(`<([^>]*)>`)

	reBodyDelim = regexp.MustCompile(`\r?\n\r?\n`)
)

// knownMethodToken matches one of the enumerated method tokens at the
// start of the payload, used by the payload validator's fast pre-check.
func knownMethodToken(firstLine string) bool {
	sp := strings.IndexByte(firstLine, ' ')
	if sp <= 0 {
		return false
	}
	return MethodFromStr(firstLine[:sp]) != MethodUnknown
}

// QuickCallID extracts the Call-ID header value without a full parse:
// the cheap path used before admission decides whether the message is
// even worth fully parsing.
func QuickCallID(payload []byte) string {
	headers := payload
	if loc := reBodyDelim.FindIndex(payload); loc != nil {
		headers = payload[:loc[0]]
	}
	m := reCallID.FindSubmatch(headers)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// parseInto fills msg's structured fields from msg.Raw. It is the single
// full-parse implementation; Message.Parse wraps it in a sync.Once so
// repeated calls are idempotent.
func parseInto(msg *Message) error {
	payload := msg.Raw
	bodyStart := len(payload)
	headers := payload
	if loc := reBodyDelim.FindIndex(payload); loc != nil {
		headers = payload[:loc[0]]
		bodyStart = loc[1]
	}

	firstLineEnd := bytes.IndexAny(headers, "\r\n")
	var firstLine string
	if firstLineEnd == -1 {
		firstLine = string(headers)
	} else {
		firstLine = string(headers[:firstLineEnd])
	}
	firstLine = strings.TrimSpace(firstLine)

	switch {
	case reResponseLine.MatchString(firstLine):
		sub := reResponseLine.FindStringSubmatch(firstLine)
		code, _ := strconv.Atoi(sub[1])
		msg.StatusCode = code
		msg.ReasonPhrase = strings.TrimSpace(sub[2])
	case reRequestLine.MatchString(firstLine):
		sub := reRequestLine.FindStringSubmatch(firstLine)
		msg.Method = MethodFromStr(sub[1])
	default:
		return fmt.Errorf("sip: unrecognized start line: %q", firstLine)
	}

	if m := reCallID.FindSubmatch(headers); m != nil {
		msg.CallID = string(m[1])
	}
	if m := reXCallID.FindSubmatch(headers); m != nil {
		msg.XCallID = string(m[1])
	}
	if m := reCSeq.FindSubmatch(headers); m != nil {
		msg.CSeq = string(m[1])
	}
	if m := reFrom.FindSubmatch(headers); m != nil {
		msg.FromURI = extractURI(string(m[1]))
	}
	if m := reTo.FindSubmatch(headers); m != nil {
		toValue := string(m[1])
		msg.ToURI = extractURI(toValue)
		msg.ToTag = reToTagParam.MatchString(toValue)
	}
	if m := reReason.FindSubmatch(headers); m != nil {
		msg.ReasonPhrase = string(m[1])
	}
	if m := reWarning.FindSubmatch(headers); m != nil {
		msg.Warning = string(m[1])
	}

	if bodyStart < len(payload) {
		msg.Body = payload[bodyStart:]
	}

	return nil
}

// extractURI pulls the URI out of a From/To header value, e.g.
// `"Alice" <sip:alice@example.com>;tag=1234` -> `sip:alice@example.com`.
func extractURI(value string) string {
	if m := reURIAngle.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	uri := fields[0]
	if i := strings.IndexByte(uri, ';'); i != -1 {
		uri = uri[:i]
	}
	return uri
}

// contentLength reads the Content-Length header from a header block.
// Stream transports need it to decide completeness; requests with no
// body legitimately omit it.
func contentLength(headers []byte) (int, bool) {
	m := reContentLength.FindSubmatch(headers)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
