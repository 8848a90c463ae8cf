package arq

import "time"

// Wire-level protocol constants. These are fixed by the packet format and
// must not change independently: the sequence space has to be at least twice
// the window size, or a retransmission from an old window instance becomes
// indistinguishable from a new packet.
const (
	SeqSpace    = 12
	WindowSize  = 6
	MaxSack     = 6
	PayloadSize = 20

	// NotInUse fills header fields that carry no information, such as the
	// acknum of a data packet.
	NotInUse = -1
)

// TimeUnit is the length of one simulated time unit. RTT is the
// retransmission timeout, a fixed estimate of the round-trip time.
const (
	TimeUnit = time.Second
	RTT      = 16 * TimeUnit
)

// Message is one opaque application-layer unit handed to the sender.
type Message struct {
	Data [PayloadSize]byte
}

// Packet is the only unit exchanged over the channel, in both directions.
// A packet is immutable once its checksum is sealed.
type Packet struct {
	Seqnum   int
	Acknum   int
	Checksum int
	Payload  [PayloadSize]byte
}

// ComputeChecksum sums the header fields and payload bytes. The checksum is
// intentionally weak (additive): compensating multi-byte errors can cancel
// out, which the protocol accepts.
func ComputeChecksum(p Packet) int {
	sum := p.Seqnum + p.Acknum
	for _, b := range p.Payload {
		sum += int(b)
	}
	return sum
}

// Corrupted reports whether the stored checksum disagrees with the packet
// contents.
func Corrupted(p Packet) bool {
	return p.Checksum != ComputeChecksum(p)
}

func newDataPacket(seq int, m Message) Packet {
	p := Packet{Seqnum: seq, Acknum: NotInUse, Payload: m.Data}
	p.Checksum = ComputeChecksum(p)
	return p
}
