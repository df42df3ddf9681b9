package dialog

import (
	"net/netip"
	"testing"
	"time"

	"firestige.xyz/sipcore/internal/sdp"
)

func TestAddOrCoalesceStream(t *testing.T) {
	c := newCall("x", 1)
	offer := sdp.Descriptor{Addr: netip.MustParseAddr("10.0.0.1"), MediaType: "audio", Port: 4000, Formats: []string{"0"}}
	answer := sdp.Descriptor{Addr: netip.MustParseAddr("10.0.0.2"), MediaType: "audio", Port: 4002, Formats: []string{"0"}}

	c.addOrCoalesceStream(offer, answer, time.Unix(1, 0))
	if len(c.Streams) != 1 {
		t.Fatalf("len(Streams) = %d, want 1", len(c.Streams))
	}
	if c.Streams[0].PacketCount != 1 {
		t.Fatalf("PacketCount = %d, want 1", c.Streams[0].PacketCount)
	}
	if c.Streams[0].Source.Addr != offer.Addr || c.Streams[0].Source.Port != offer.Port {
		t.Errorf("Source = %v:%d, want %v:%d", c.Streams[0].Source.Addr, c.Streams[0].Source.Port, offer.Addr, offer.Port)
	}
	if c.Streams[0].Destination.Addr != answer.Addr || c.Streams[0].Destination.Port != answer.Port {
		t.Errorf("Destination = %v:%d, want %v:%d", c.Streams[0].Destination.Addr, c.Streams[0].Destination.Port, answer.Addr, answer.Port)
	}

	c.addOrCoalesceStream(offer, answer, time.Unix(2, 0))
	if len(c.Streams) != 1 {
		t.Fatalf("after duplicate: len(Streams) = %d, want 1 (coalesced)", len(c.Streams))
	}
	if c.Streams[0].PacketCount != 2 {
		t.Errorf("PacketCount = %d, want 2", c.Streams[0].PacketCount)
	}
	if !c.Streams[0].LastSeen.Equal(time.Unix(2, 0)) {
		t.Errorf("LastSeen not updated")
	}

	otherOffer := sdp.Descriptor{Addr: netip.MustParseAddr("10.0.0.1"), MediaType: "video", Port: 5000, Formats: []string{"96"}}
	otherAnswer := sdp.Descriptor{Addr: netip.MustParseAddr("10.0.0.2"), MediaType: "video", Port: 5002, Formats: []string{"96"}}
	c.addOrCoalesceStream(otherOffer, otherAnswer, time.Unix(3, 0))
	if len(c.Streams) != 2 {
		t.Fatalf("after distinct descriptor: len(Streams) = %d, want 2", len(c.Streams))
	}
}

func TestPairMediaStreamsOfferAnswer(t *testing.T) {
	c := newCall("x", 1)
	offer := []sdp.Descriptor{
		{Addr: netip.MustParseAddr("192.168.1.10"), MediaType: "audio", Port: 10000, Formats: []string{"0"}},
		{Addr: netip.MustParseAddr("192.168.1.10"), MediaType: "video", Port: 10002, Formats: []string{"96"}},
	}
	answer := []sdp.Descriptor{
		{Addr: netip.MustParseAddr("192.168.1.20"), MediaType: "audio", Port: 20000, Formats: []string{"0"}},
		{Addr: netip.MustParseAddr("192.168.1.20"), MediaType: "video", Port: 20002, Formats: []string{"96"}},
	}

	c.setOfferDescriptors(offer)
	c.pairMediaStreams(answer, time.Unix(1, 0))

	if len(c.Streams) != 2 {
		t.Fatalf("len(Streams) = %d, want 2", len(c.Streams))
	}
	if c.Streams[0].Source.Addr != offer[0].Addr || c.Streams[0].Destination.Addr != answer[0].Addr {
		t.Errorf("audio stream not paired by offer/answer order: %+v", c.Streams[0])
	}
	if c.pendingOffer != nil {
		t.Errorf("pendingOffer not cleared after pairing")
	}
}

func TestPairMediaStreamsNoPendingOffer(t *testing.T) {
	c := newCall("x", 1)
	answer := []sdp.Descriptor{
		{Addr: netip.MustParseAddr("192.168.1.20"), MediaType: "audio", Port: 20000, Formats: []string{"0"}},
	}

	c.pairMediaStreams(answer, time.Unix(1, 0))

	if len(c.Streams) != 1 {
		t.Fatalf("len(Streams) = %d, want 1", len(c.Streams))
	}
	if c.Streams[0].Source.Addr != answer[0].Addr {
		t.Errorf("Source = %v, want %v (one-sided fallback)", c.Streams[0].Source.Addr, answer[0].Addr)
	}
	if c.Streams[0].Destination.Addr.IsValid() {
		t.Errorf("Destination = %v, want zero value (unresolved)", c.Streams[0].Destination.Addr)
	}
}
