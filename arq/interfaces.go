package arq

import "time"

// Channel accepts an outbound packet for eventual (possibly lossy,
// possibly corrupting, never reordering) delivery to the peer.
type Channel interface {
	Send(Packet)
}

// Application receives payloads released by the receiver, strictly in
// sequence order, each exactly once.
type Application interface {
	Deliver([PayloadSize]byte)
}

// Timer is the single logical retransmission timer of an entity. Start on
// an already-running timer and Stop on an idle one are the caller's bugs to
// avoid; the engines track an outstanding flag for exactly that reason.
type Timer interface {
	Start(time.Duration)
	Stop()
}

// Stats holds the trace counters. The engines only ever increment them;
// interpretation belongs to the driver.
type Stats struct {
	PacketsSent        int
	PacketsResent      int
	PacketsReceived    int // accepted in-window data packets, first copy only
	PacketsDelivered   int
	WindowFull         int // submissions deferred because the window was full
	Dropped            int // submissions lost because the overflow queue was also full
	TotalAcksReceived  int
	NewAcks            int
	DuplicateAcks      int
	AcksSent           int
	CorruptedDiscarded int
}
