package dialog

import (
	"time"

	"firestige.xyz/sipcore/internal/core"
	"firestige.xyz/sipcore/internal/sdp"
)

// Stream is a bidirectional RTP media flow correlated from a SIP
// offer/answer exchange: Source is the offering side's connection
// endpoint, Destination the answering side's. Two offer/answer pairs
// naming the same source, destination and media type coalesce into one
// Stream with an updated LastSeen and PacketCount, rather than appending
// a duplicate.
type Stream struct {
	Source      core.Endpoint
	Destination core.Endpoint
	MediaType   string
	Formats     []string
	FirstSeen   time.Time
	LastSeen    time.Time
	PacketCount uint64
}

func newStream(offer, answer sdp.Descriptor, at time.Time) *Stream {
	return &Stream{
		Source:      core.Endpoint{Addr: offer.Addr, Port: offer.Port},
		Destination: core.Endpoint{Addr: answer.Addr, Port: answer.Port},
		MediaType:   offer.MediaType,
		Formats:     offer.Formats,
		FirstSeen:   at,
		LastSeen:    at,
		PacketCount: 1,
	}
}

func (s *Stream) matches(offer, answer sdp.Descriptor) bool {
	return s.Source.Addr == offer.Addr && s.Source.Port == offer.Port &&
		s.Destination.Addr == answer.Addr && s.Destination.Port == answer.Port &&
		s.MediaType == offer.MediaType
}

// addOrCoalesceStream records one paired offer/answer media section,
// appending a new Stream unless an existing one already shares its
// source, destination and media type.
func (c *Call) addOrCoalesceStream(offer, answer sdp.Descriptor, at time.Time) {
	for _, s := range c.Streams {
		if s.matches(offer, answer) {
			s.LastSeen = at
			s.PacketCount++
			return
		}
	}
	c.Streams = append(c.Streams, newStream(offer, answer, at))
}

// pairMediaStreams correlates this call's pending offer descriptors
// against newly seen answer descriptors by m= line order: the Nth media
// section of the answer answers the Nth media section of the offer, the
// same assumption any SDP offer/answer implementation relies on.
// Surplus descriptors on either side (a rejected m= line, or an answer
// with fewer sections than the offer) are left unpaired. When no offer
// is pending, the capture missed the request, or this SDP arrived
// standalone, each descriptor is still recorded, as a one-sided stream
// with an unresolved Destination.
func (c *Call) pairMediaStreams(answer []sdp.Descriptor, at time.Time) {
	if len(c.pendingOffer) == 0 {
		for _, d := range answer {
			c.addOrCoalesceStream(d, sdp.Descriptor{}, at)
		}
		return
	}
	n := len(c.pendingOffer)
	if len(answer) < n {
		n = len(answer)
	}
	for i := 0; i < n; i++ {
		c.addOrCoalesceStream(c.pendingOffer[i], answer[i], at)
	}
	c.pendingOffer = nil
}

// setOfferDescriptors records this call's latest request-side SDP,
// awaiting a response to pair into bidirectional Streams. A later offer
// (e.g. a re-INVITE) replaces the prior one before it was answered.
func (c *Call) setOfferDescriptors(offer []sdp.Descriptor) {
	c.pendingOffer = offer
}
