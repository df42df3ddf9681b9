// Package core defines the boundary types shared with the packet capture
// frontend (live pcap, offline file, TCP reassembly), a collaborator this
// module does not implement. Zero external dependencies: these are the
// types a capture frontend hands across the boundary, not the decoder
// itself.
package core

import (
	"net/netip"
	"time"
)

// Endpoint is one side of a transport flow.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

func (e Endpoint) String() string {
	if !e.Addr.IsValid() {
		return ""
	}
	return netip.AddrPortFrom(e.Addr, e.Port).String()
}

// Transport identifies the underlying transport a SIP payload arrived on.
type Transport uint8

const (
	TransportUnknown Transport = iota
	TransportUDP
	TransportTCP
	TransportTLS
	TransportWS
)

func (t Transport) String() string {
	switch t {
	case TransportUDP:
		return "UDP"
	case TransportTCP:
		return "TCP"
	case TransportTLS:
		return "TLS"
	case TransportWS:
		return "WS"
	default:
		return "unknown"
	}
}

// Packet is what the capture frontend delivers to sip_check_packet: a
// fully-assembled payload (TCP reassembly, if any, already applied) plus
// its transport envelope. This module never reads from a wire or a pcap
// file; it only consumes Packet values.
type Packet struct {
	Source      Endpoint
	Destination Endpoint
	Transport   Transport
	Timestamp   time.Time
	Payload     []byte
}
