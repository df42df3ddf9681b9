package render

import (
	"strconv"

	"firestige.xyz/sipcore/internal/dialog"
	"firestige.xyz/sipcore/internal/sip"
)

// lineRenderer is the default Renderer: one-line-per-call and
// one-line-per-message summaries, suitable for a terminal UI panel.
type lineRenderer struct{}

func (lineRenderer) Name() string { return "line" }

func (lineRenderer) RenderCall(c *dialog.Call) string {
	return dialog.GetAttribute(c, dialog.AttrCallListLine)
}

func (lineRenderer) RenderMessage(m *sip.Message) string {
	return MsgHeader(m)
}

// MsgHeader renders an ngrep-style one-line message summary:
// `Timestamp Src -> Dst Method/Code CSeq Call-ID`.
func MsgHeader(m *sip.Message) string {
	methodOrCode := sip.MethodStr(m.Method)
	if m.IsResponse() {
		methodOrCode = strconv.Itoa(m.StatusCode)
	}
	return m.Arrival.Format("15:04:05.000") + " " +
		m.Source.String() + " -> " + m.Destination.String() + " " +
		methodOrCode + " " + m.CSeq + " " + m.CallID
}
