package filter

import (
	"strconv"
	"testing"
	"time"

	"firestige.xyz/sipcore/internal/core"
	"firestige.xyz/sipcore/internal/dialog"
	"firestige.xyz/sipcore/internal/sip"
)

func callWith(t *testing.T, raws ...string) *dialog.Call {
	t.Helper()
	r, err := dialog.NewRegistry(dialog.CaptureOpts{Limit: 10}, dialog.MatchOpts{}, dialog.SortOpts{})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	var call *dialog.Call
	for i, raw := range raws {
		msg := sip.NewMessage([]byte(raw), core.Packet{
			Transport: core.TransportUDP,
			Timestamp: time.Unix(int64(i), 0),
		})
		call = r.CheckPacket(msg)
	}
	return call
}

func TestFilterVerdictCache(t *testing.T) {
	e := NewEngine()
	if err := e.SetFilter(FieldFrom, "alice", false, false); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}

	alice := callWith(t, "INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: a\r\nFrom: <sip:alice@example.com>\r\nContent-Length: 0\r\n\r\n")
	bob := callWith(t, "INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: b\r\nFrom: <sip:bob@example.com>\r\nContent-Length: 0\r\n\r\n")

	if v := e.Evaluate(alice); v != dialog.VerdictPass {
		t.Errorf("alice verdict = %v, want Pass", v)
	}
	if v := e.Evaluate(bob); v != dialog.VerdictReject {
		t.Errorf("bob verdict = %v, want Reject", v)
	}

	// Cached: re-evaluating without a filter change returns the same verdict.
	if v := e.Evaluate(bob); v != dialog.VerdictReject {
		t.Errorf("bob verdict (cached) = %v, want Reject", v)
	}

	// Changing the filter must be followed by invalidating cached verdicts;
	// Evaluate only recomputes once the cache has been reset to unknown.
	if err := e.SetFilter(FieldFrom, "bob", false, false); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}
	alice.FilterVerdict = dialog.VerdictUnknown
	bob.FilterVerdict = dialog.VerdictUnknown

	if v := e.Evaluate(bob); v != dialog.VerdictPass {
		t.Errorf("bob verdict after refilter = %v, want Pass", v)
	}
	if v := e.Evaluate(alice); v != dialog.VerdictReject {
		t.Errorf("alice verdict after refilter = %v, want Reject", v)
	}
}

func TestFilterPayloadOrOverMessages(t *testing.T) {
	e := NewEngine()
	if err := e.SetFilter(FieldPayload, "goodbye", false, true); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}

	bodyA := "v=0\r\no=- 1 1 IN IP4 10.0.0.1\r\ns=goodbye\r\n"
	withMatch := callWith(t,
		"INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: c1\r\nContent-Length: 0\r\n\r\n",
		"SIP/2.0 200 OK\r\nCall-ID: c1\r\nContent-Length: 0\r\n\r\n",
		"BYE sip:bob@example.com SIP/2.0\r\nCall-ID: c1\r\nContent-Length: "+lenStr(bodyA)+"\r\n\r\n"+bodyA,
	)
	withoutMatch := callWith(t,
		"INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: c2\r\nContent-Length: 0\r\n\r\n",
		"SIP/2.0 200 OK\r\nCall-ID: c2\r\nContent-Length: 0\r\n\r\n",
	)

	if v := e.Evaluate(withMatch); v != dialog.VerdictPass {
		t.Errorf("withMatch verdict = %v, want Pass", v)
	}
	if v := e.Evaluate(withoutMatch); v != dialog.VerdictReject {
		t.Errorf("withoutMatch verdict = %v, want Reject", v)
	}
}

// TestFilterPayloadIgnoresEmptyBody pins the Open Question resolution: a
// message with no body never matches PAYLOAD, even when the pattern
// appears in its header block (e.g. the request-line method token).
func TestFilterPayloadIgnoresEmptyBody(t *testing.T) {
	e := NewEngine()
	if err := e.SetFilter(FieldPayload, "bye", false, true); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}

	call := callWith(t,
		"INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: c3\r\nContent-Length: 0\r\n\r\n",
		"BYE sip:bob@example.com SIP/2.0\r\nCall-ID: c3\r\nContent-Length: 0\r\n\r\n",
	)
	if v := e.Evaluate(call); v != dialog.VerdictReject {
		t.Errorf("verdict = %v, want Reject (empty-body messages never match PAYLOAD)", v)
	}
}

func lenStr(s string) string {
	return strconv.Itoa(len(s))
}

func TestSetFilterInvalidPatternPreservesState(t *testing.T) {
	e := NewEngine()
	if err := e.SetFilter(FieldFrom, "alice", false, false); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}
	if err := e.SetFilter(FieldFrom, "(", false, false); err == nil {
		t.Fatal("SetFilter(bad pattern) error = nil, want error")
	}

	alice := callWith(t, "INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: a\r\nFrom: <sip:alice@example.com>\r\nContent-Length: 0\r\n\r\n")
	if v := e.Evaluate(alice); v != dialog.VerdictPass {
		t.Errorf("verdict after bad SetFilter = %v, want Pass (prior filter preserved)", v)
	}
}

func TestFieldFromName(t *testing.T) {
	if f, ok := FieldFromName("from"); !ok || f != FieldFrom {
		t.Error("FieldFromName(from) mismatch")
	}
	if _, ok := FieldFromName("bogus"); ok {
		t.Error("FieldFromName(bogus) ok = true, want false")
	}
}
