package core

import (
	"errors"
	"net/netip"
	"testing"
	"time"
)

func TestTransportString(t *testing.T) {
	tests := []struct {
		in   Transport
		want string
	}{
		{TransportUDP, "UDP"},
		{TransportTCP, "TCP"},
		{TransportTLS, "TLS"},
		{TransportWS, "WS"},
		{TransportUnknown, "unknown"},
		{Transport(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Transport(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPacketZeroValue(t *testing.T) {
	var p Packet
	if p.Payload != nil {
		t.Errorf("expected nil Payload, got %v", p.Payload)
	}
	if p.Source.Addr.IsValid() {
		t.Error("expected invalid zero-value Source.Addr")
	}
}

func TestPacketConstruction(t *testing.T) {
	src := netip.MustParseAddr("192.168.1.10")
	dst := netip.MustParseAddr("192.168.1.20")
	p := Packet{
		Source:      Endpoint{Addr: src, Port: 5060},
		Destination: Endpoint{Addr: dst, Port: 5060},
		Transport:   TransportUDP,
		Timestamp:   time.Unix(1000, 0),
		Payload:     []byte("INVITE sip:bob@example.com SIP/2.0\r\n"),
	}
	if p.Source.Port != 5060 || p.Destination.Port != 5060 {
		t.Fatalf("unexpected ports: %+v", p)
	}
	if p.Transport.String() != "UDP" {
		t.Errorf("Transport = %s, want UDP", p.Transport)
	}
}

func TestSentinelErrors(t *testing.T) {
	if !errors.Is(errors.Join(ErrInvalidPattern, errors.New("ctx")), ErrInvalidPattern) {
		t.Error("errors.Is failed for wrapped ErrInvalidPattern")
	}
	for _, err := range []error{ErrInvalidPattern, ErrCapacityReached, ErrParse, ErrNotFound} {
		if err.Error() == "" {
			t.Errorf("sentinel error has empty message: %v", err)
		}
	}
}
