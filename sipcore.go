// Package sipcore is the SIP storage and dialog core: payload validation,
// header/media parsing, Call-ID/X-Call-ID correlation, capture policy,
// filtering, and indexed/sorted call views. The packet capture frontend,
// terminal UI, RTP decoder and CLI/config layer are external collaborators
// referenced only through the types this package exports.
package sipcore

import (
	"firestige.xyz/sipcore/internal/core"
	"firestige.xyz/sipcore/internal/dialog"
	"firestige.xyz/sipcore/internal/filter"
	"firestige.xyz/sipcore/internal/sip"
	"firestige.xyz/sipcore/pkg/render"
)

// Re-exported boundary and option types, so callers need only import this
// package to drive the whole init/ingest/query surface.
type (
	Packet      = core.Packet
	Endpoint    = core.Endpoint
	Transport   = core.Transport
	CaptureOpts = dialog.CaptureOpts
	MatchOpts   = dialog.MatchOpts
	SortOpts    = dialog.SortOpts
	AttrID      = dialog.AttrID
	Field       = filter.Field
	Call        = dialog.Call
	Message     = sip.Message
	Stats       = dialog.Stats
	Verdict     = dialog.Verdict
)

const (
	TransportUDP = core.TransportUDP
	TransportTCP = core.TransportTCP
	TransportTLS = core.TransportTLS
	TransportWS  = core.TransportWS

	VerdictUnknown = dialog.VerdictUnknown
	VerdictPass    = dialog.VerdictPass
	VerdictReject  = dialog.VerdictReject
)

// Core is an explicit registry instance threaded into every entry point.
// It owns the call registry and the filter engine together, since the
// two interact: a filter change invalidates cached verdicts on every
// call, and the filter engine needs the registry's calls to re-evaluate.
type Core struct {
	registry *dialog.Registry
	filters  *filter.Engine
}

// Init commits capture, match and sort options atomically, returning
// core.ErrInvalidPattern without mutating any prior state if the match
// pattern fails to compile.
func Init(capture CaptureOpts, match MatchOpts, sort SortOpts) (*Core, error) {
	reg, err := dialog.NewRegistry(capture, match, sort)
	if err != nil {
		return nil, err
	}
	return &Core{registry: reg, filters: filter.NewEngine()}, nil
}

// Ingest is the capture frontend's entry point: it validates pkt's
// payload, and for every SIP message found (a datagram yields at most
// one; a stream payload may yield several) runs it through the
// registry's admission check. It returns the calls those messages were
// appended to, in the same order as the messages were found; a dropped
// message is simply absent, not nil-padded.
func (c *Core) Ingest(pkt Packet) []*Call {
	var results []*Call
	remaining := pkt.Payload

	for len(remaining) > 0 {
		result, consumed := sip.Validate(remaining, pkt.Transport)
		switch result {
		case sip.NotSIP, sip.Partial:
			return results
		case sip.Complete, sip.Multiple:
			msgBytes := remaining[:consumed]
			frame := pkt
			frame.Payload = msgBytes
			msg := sip.NewMessage(msgBytes, frame)
			if call := c.registry.CheckPacket(msg); call != nil {
				results = append(results, call)
			}
			remaining = remaining[consumed:]
		}
		if result == sip.Complete {
			break
		}
	}
	return results
}

// SetFilter compiles pattern for field and invalidates every call's
// cached verdict on success. On core.ErrInvalidPattern the prior filter
// state is unchanged and no verdict is invalidated.
func (c *Core) SetFilter(field Field, pattern string, invert, caseInsensitive bool) error {
	if err := c.filters.SetFilter(field, pattern, invert, caseInsensitive); err != nil {
		return err
	}
	c.registry.InvalidateVerdicts()
	return nil
}

// ClearFilters removes every filter, making all calls pass.
func (c *Core) ClearFilters() {
	c.filters.Clear()
	c.registry.InvalidateVerdicts()
}

// Verdict evaluates (and caches) call's filter verdict.
func (c *Core) Verdict(call *Call) dialog.Verdict {
	return c.filters.Evaluate(call)
}

// CallsIterator returns the call sequence in the currently active sort
// order (creation order by default).
func (c *Core) CallsIterator() []*Call {
	return c.registry.Sorted()
}

// ActiveCallsIterator returns the calls currently in the active set.
func (c *Core) ActiveCallsIterator() []*Call {
	return c.registry.Active()
}

// FindByIndex looks up a call by its zero-based position in the
// creation-ordered call sequence (not by Call.Index).
func (c *Core) FindByIndex(i int) *Call {
	return c.registry.FindByIndex(i)
}

// FindByCallID looks up a call by its Call-ID.
func (c *Core) FindByCallID(callID string) *Call {
	return c.registry.FindByCallID(callID)
}

// Stats reports the total and currently-displayed (filter-passing) call
// counts.
func (c *Core) Stats() Stats {
	return c.registry.Stats()
}

// HasChanged reports and clears the registry's change flag.
func (c *Core) HasChanged() bool {
	return c.registry.HasChanged()
}

// SetSort changes the active sort key.
func (c *Core) SetSort(opts SortOpts) {
	c.registry.SetSort(opts)
}

// Remove destroys a call by Call-ID.
func (c *Core) Remove(callID string) {
	c.registry.Remove(callID)
}

// Clear destroys every call.
func (c *Core) Clear() {
	c.registry.Clear()
}

// SoftClear destroys every call whose current filter verdict is not
// pass, keeping the ones currently on display.
func (c *Core) SoftClear() {
	c.registry.SoftClear(func(call *Call) bool {
		return c.filters.Evaluate(call) == dialog.VerdictPass
	})
}

// Dropped returns the internal dropped-packet counter (messages with no
// Call-ID, parse errors, admission-policy and capacity-reached
// rejections).
func (c *Core) Dropped() uint64 {
	return c.registry.Dropped()
}

// GetAttribute reads a single derived attribute off a call.
func GetAttribute(call *Call, id AttrID) string {
	return dialog.GetAttribute(call, id)
}

// AttrIDFromName maps an attribute-id token to its AttrID.
func AttrIDFromName(name string) AttrID {
	return dialog.AttrIDFromName(name)
}

// FieldFromName maps a filter field-selector token to its Field.
func FieldFromName(name string) (Field, bool) {
	return filter.FieldFromName(name)
}

// GetMsgHeader renders an ngrep-style one-line message summary.
func GetMsgHeader(msg *Message) string {
	return render.MsgHeader(msg)
}

// defaultCore is the package-level default Core instance, offered for
// embedding simplicity. InitDefault sets it and Default returns it; there
// are no package-level wrappers over its methods, so callers use the
// returned *Core directly.
var defaultCore *Core

// InitDefault builds the package-level default Core instance.
func InitDefault(capture CaptureOpts, match MatchOpts, sort SortOpts) error {
	c, err := Init(capture, match, sort)
	if err != nil {
		return err
	}
	defaultCore = c
	return nil
}

// Default returns the package-level default Core instance, or nil if
// InitDefault has not been called.
func Default() *Core {
	return defaultCore
}
