package dialog

import "firestige.xyz/sipcore/internal/sip"

// DialogState is the dialog-level state machine gating the active-call
// set: a call leaves "active" either on idle timeout or once its dialog
// reaches a terminal state. It follows the Early/Confirmed/Terminated
// shape of a classic SIP dialog state machine, narrowed to this module's
// sip.Message.
type DialogState interface {
	Name() string
	IsTerminated() bool
	HandleMessage(msg *sip.Message) DialogState
}

type earlyState struct{}

func (s earlyState) Name() string       { return "early" }
func (s earlyState) IsTerminated() bool { return false }

func (s earlyState) HandleMessage(msg *sip.Message) DialogState {
	if msg.IsResponse() {
		switch {
		case msg.StatusCode < 200:
			return s
		case msg.StatusCode < 300:
			return confirmedState{}
		default:
			return terminatedState{}
		}
	}
	switch msg.Method {
	case sip.MethodBye, sip.MethodCancel:
		return terminatedState{}
	default:
		return s
	}
}

type confirmedState struct{}

func (s confirmedState) Name() string       { return "confirmed" }
func (s confirmedState) IsTerminated() bool { return false }

func (s confirmedState) HandleMessage(msg *sip.Message) DialogState {
	if !msg.IsResponse() {
		switch msg.Method {
		case sip.MethodBye, sip.MethodCancel:
			return terminatedState{}
		}
	}
	return s
}

type terminatedState struct{}

func (s terminatedState) Name() string       { return "terminated" }
func (s terminatedState) IsTerminated() bool { return true }

func (s terminatedState) HandleMessage(msg *sip.Message) DialogState {
	return s
}

// newDialogState returns the state machine's starting state. A dialog
// begins Early regardless of whether the founding message is a request or
// a response (an observer may first see either leg of a call).
func newDialogState() DialogState {
	return earlyState{}
}
