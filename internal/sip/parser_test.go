package sip

import (
	"strconv"
	"testing"

	"firestige.xyz/sipcore/internal/core"
)

func TestQuickCallID(t *testing.T) {
	payload := []byte("INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: abc@host\r\nCSeq: 1 INVITE\r\n\r\n")
	if got := QuickCallID(payload); got != "abc@host" {
		t.Errorf("QuickCallID = %q, want abc@host", got)
	}
}

func TestQuickCallIDAbsent(t *testing.T) {
	payload := []byte("INVITE sip:bob@example.com SIP/2.0\r\nCSeq: 1 INVITE\r\n\r\n")
	if got := QuickCallID(payload); got != "" {
		t.Errorf("QuickCallID = %q, want empty", got)
	}
}

func TestParseRequest(t *testing.T) {
	payload := []byte(
		"INVITE sip:bob@example.com SIP/2.0\r\n" +
			"Call-ID: abc@host\r\n" +
			"X-Call-ID: linked@host\r\n" +
			"CSeq: 1 INVITE\r\n" +
			"From: \"Alice\" <sip:alice@example.com>;tag=111\r\n" +
			"To: \"Bob\" <sip:bob@example.com>\r\n" +
			"Content-Length: 0\r\n\r\n")
	msg := NewMessage(payload, core.Packet{})
	if err := msg.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if msg.Method != MethodInvite {
		t.Errorf("Method = %d, want MethodInvite", msg.Method)
	}
	if msg.CallID != "abc@host" {
		t.Errorf("CallID = %q", msg.CallID)
	}
	if msg.XCallID != "linked@host" {
		t.Errorf("XCallID = %q", msg.XCallID)
	}
	if msg.CSeq != "1 INVITE" {
		t.Errorf("CSeq = %q", msg.CSeq)
	}
	if msg.FromURI != "sip:alice@example.com" {
		t.Errorf("FromURI = %q", msg.FromURI)
	}
	if msg.ToURI != "sip:bob@example.com" {
		t.Errorf("ToURI = %q", msg.ToURI)
	}
	if msg.ToTag {
		t.Error("ToTag = true, want false (no tag on To)")
	}
	if msg.IsResponse() {
		t.Error("IsResponse() = true, want false")
	}
}

func TestParseResponseWithToTag(t *testing.T) {
	payload := []byte(
		"SIP/2.0 200 OK\r\n" +
			"Call-ID: abc@host\r\n" +
			"CSeq: 1 INVITE\r\n" +
			"To: <sip:bob@example.com>;tag=222\r\n" +
			"Content-Length: 0\r\n\r\n")
	msg := NewMessage(payload, core.Packet{})
	if err := msg.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !msg.IsResponse() || msg.StatusCode != 200 {
		t.Errorf("StatusCode = %d, IsResponse = %v", msg.StatusCode, msg.IsResponse())
	}
	if msg.ReasonPhrase != "OK" {
		t.Errorf("ReasonPhrase = %q, want OK", msg.ReasonPhrase)
	}
	if !msg.ToTag {
		t.Error("ToTag = false, want true")
	}
}

func TestParseIdempotent(t *testing.T) {
	payload := []byte("BYE sip:bob@example.com SIP/2.0\r\nCall-ID: x@h\r\nContent-Length: 0\r\n\r\n")
	msg := NewMessage(payload, core.Packet{})
	if err := msg.Parse(); err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	first := *msg
	if err := msg.Parse(); err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}
	if msg.CallID != first.CallID || msg.Method != first.Method {
		t.Error("Parse() is not idempotent")
	}
}

func TestParseWithBody(t *testing.T) {
	body := "v=0\r\no=- 1 1 IN IP4 1.2.3.4\r\n"
	payload := []byte("INVITE sip:bob@example.com SIP/2.0\r\nCall-ID: x@h\r\nContent-Length: " +
		strconv.Itoa(len(body)) + "\r\n\r\n" + body)
	msg := NewMessage(payload, core.Packet{})
	if err := msg.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(msg.Body) != body {
		t.Errorf("Body = %q, want %q", msg.Body, body)
	}
}

func TestParseWarningAndReason(t *testing.T) {
	payload := []byte("SIP/2.0 480 Temporarily Unavailable\r\n" +
		"Call-ID: x@h\r\n" +
		"Warning: 399 proxy \"rtp timeout\"\r\n" +
		"Reason: SIP ;cause=200 ;text=\"Call completed\"\r\n" +
		"Content-Length: 0\r\n\r\n")
	msg := NewMessage(payload, core.Packet{})
	if err := msg.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if msg.Warning != "399" {
		t.Errorf("Warning = %q, want 399", msg.Warning)
	}
	if want := "SIP ;cause=200 ;text=\"Call completed\""; msg.ReasonPhrase != want {
		t.Errorf("ReasonPhrase = %q, want %q (Reason header)", msg.ReasonPhrase, want)
	}
}
