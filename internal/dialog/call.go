// Package dialog implements the call registry: the Call-ID/X-Call-ID
// correlated call records, their dialog state and RTP stream set, and the
// Registry that owns admission, rotation and the active-call view.
package dialog

import (
	"firestige.xyz/sipcore/internal/sdp"
	"firestige.xyz/sipcore/internal/sip"
)

// Call is one correlated dialog: every message sharing a Call-ID, plus the
// RTP streams described by their SDP bodies. All fields are mutated only
// while the owning Registry holds its write lock; readers traverse a Call
// under the Registry's read lock, so Call itself carries no lock of its
// own.
type Call struct {
	CallID string
	Index  uint64

	Messages []*sip.Message
	Streams  []*Stream

	// pendingOffer holds the most recent request-side SDP descriptors,
	// set by setOfferDescriptors and consumed by pairMediaStreams once a
	// response carrying its own SDP body arrives.
	pendingOffer []sdp.Descriptor

	// XCallIDRef is the resolved back-reference when this call's X-Call-ID
	// names another call known to the registry; XCallIDLiteral holds the
	// raw header value when no such call exists (yet, or ever).
	XCallIDRef     *Call
	XCallIDLiteral string

	state DialogState

	// FilterVerdict is the cached result of the filter engine's evaluation
	// (internal/filter), reset to VerdictUnknown whenever a new message is
	// appended so the next access recomputes it.
	FilterVerdict Verdict

	// Locked exempts a call from rotation eviction.
	Locked bool
}

func newCall(callID string, index uint64) *Call {
	return &Call{
		CallID: callID,
		Index:  index,
		state:  newDialogState(),
	}
}

// appendMessage records msg against the call, advances the dialog state
// machine, and invalidates the cached filter verdict.
func (c *Call) appendMessage(msg *sip.Message) {
	c.Messages = append(c.Messages, msg)
	c.state = c.state.HandleMessage(msg)
	c.FilterVerdict = VerdictUnknown
}

// Terminated reports whether the call's dialog has reached a terminal
// state (a non-2xx final response before the dialog is confirmed, or a
// BYE/CANCEL in either direction).
func (c *Call) Terminated() bool {
	return c.state.IsTerminated()
}

// State returns the current dialog state's name, exposed for the
// attribute accessor's STATE attribute.
func (c *Call) State() string {
	return c.state.Name()
}

// FirstMessage returns the message that created the call, or nil for a
// call with no messages (never true for a call returned by the registry).
func (c *Call) FirstMessage() *sip.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[0]
}

// LastMessage returns the most recently appended message.
func (c *Call) LastMessage() *sip.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}
