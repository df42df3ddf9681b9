package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"firestige.xyz/sipcore/internal/sip"
)

// AttrID enumerates the closed attribute set exposed by a call. It is the
// single source of field extraction shared by the filter engine
// (internal/filter) and any consumer rendering a call or message.
type AttrID int

const (
	AttrUnknown AttrID = iota
	AttrCallID
	AttrXCallID
	AttrFrom
	AttrTo
	AttrSrc
	AttrDst
	AttrMethod
	AttrCSeq
	AttrDate
	AttrTime
	AttrSipFrom
	AttrSipTo
	AttrMsgCnt
	AttrRtpCnt
	AttrState
	AttrConvDur
	AttrTotalDur
	AttrReason
	AttrWarning
	AttrTransport
	// AttrCallListLine (CALL_LIST_LINE) renders the one-line call summary
	// used by the CALL_LIST_LINE filter selector and by the line renderer
	// (pkg/render); it is not one of the named call attributes.
	AttrCallListLine
)

var attrNames = map[AttrID]string{
	AttrCallID:       "CALLID",
	AttrXCallID:      "XCALLID",
	AttrFrom:         "FROM",
	AttrTo:           "TO",
	AttrSrc:          "SRC",
	AttrDst:          "DST",
	AttrMethod:       "METHOD",
	AttrCSeq:         "CSEQ",
	AttrDate:         "DATE",
	AttrTime:         "TIME",
	AttrSipFrom:      "SIPFROM",
	AttrSipTo:        "SIPTO",
	AttrMsgCnt:       "MSGCNT",
	AttrRtpCnt:       "RTPCNT",
	AttrState:        "STATE",
	AttrConvDur:      "CONVDUR",
	AttrTotalDur:     "TOTALDUR",
	AttrReason:       "REASON",
	AttrWarning:      "WARNING",
	AttrTransport:    "TRANSPORT",
	AttrCallListLine: "CALL_LIST_LINE",
}

// AttrIDFromName maps an attribute/field-selector token to its AttrID,
// case-insensitively. Unknown tokens return AttrUnknown.
func AttrIDFromName(name string) AttrID {
	upper := strings.ToUpper(name)
	for id, n := range attrNames {
		if n == upper {
			return id
		}
	}
	return AttrUnknown
}

func stripScheme(uri string) string {
	if i := strings.Index(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// GetAttribute is the uniform keyed accessor over a call's and its
// messages' derived fields.
func GetAttribute(c *Call, id AttrID) string {
	first := c.FirstMessage()
	last := c.LastMessage()
	if first == nil {
		return ""
	}

	switch id {
	case AttrCallID:
		return c.CallID
	case AttrXCallID:
		if c.XCallIDRef != nil {
			return c.XCallIDRef.CallID
		}
		return c.XCallIDLiteral
	case AttrFrom:
		return stripScheme(first.FromURI)
	case AttrSipFrom:
		return first.FromURI
	case AttrTo:
		return stripScheme(first.ToURI)
	case AttrSipTo:
		return first.ToURI
	case AttrSrc:
		return first.Source.String()
	case AttrDst:
		return first.Destination.String()
	case AttrMethod:
		if first.IsResponse() {
			return strconv.Itoa(first.StatusCode)
		}
		return sip.MethodStr(first.Method)
	case AttrCSeq:
		return first.CSeq
	case AttrDate:
		return first.Arrival.Format("2006-01-02")
	case AttrTime:
		return first.Arrival.Format("15:04:05.000")
	case AttrMsgCnt:
		return strconv.Itoa(len(c.Messages))
	case AttrRtpCnt:
		return strconv.Itoa(len(c.Streams))
	case AttrState:
		return c.State()
	case AttrConvDur:
		return formatDuration(conversationDuration(c))
	case AttrTotalDur:
		return formatDuration(last.Arrival.Sub(first.Arrival))
	case AttrReason:
		return last.ReasonPhrase
	case AttrWarning:
		return last.Warning
	case AttrTransport:
		return first.Transport.String()
	case AttrCallListLine:
		return callListLine(c, first)
	default:
		return ""
	}
}

// conversationDuration is the time from the call's first 2xx final
// response (dialog confirmed) to its last message; zero if never
// confirmed.
func conversationDuration(c *Call) time.Duration {
	var confirmedAt time.Time
	for _, m := range c.Messages {
		if m.IsResponse() && m.StatusCode >= 200 && m.StatusCode < 300 {
			confirmedAt = m.Arrival
			break
		}
	}
	if confirmedAt.IsZero() {
		return 0
	}
	return c.LastMessage().Arrival.Sub(confirmedAt)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}

// callListLine renders the one-line call summary used both as the
// CALL_LIST_LINE filter field and as a UI row.
func callListLine(c *Call, first *sip.Message) string {
	method := sip.MethodStr(first.Method)
	if first.IsResponse() {
		method = strconv.Itoa(first.StatusCode)
	}
	return fmt.Sprintf("%s %s -> %s %s %s msgs=%d",
		first.Arrival.Format("15:04:05"),
		first.Source, first.Destination,
		method, c.CallID, len(c.Messages))
}
